// Package main provides a headless simulation tool for tuning lane allocation.
//
// It runs the danmaku animation loop without a window and reports how often
// captions in the same lane overlap, so clearance margin, probe limit and
// speed settings can be compared before running the overlay.
//
// Usage:
//
//	go run ./cmd/danmaku-sim [flags]
//
// Flags:
//
//	--dir <path>       Directory holding danmaku.txt and color.txt (default: built-in texts)
//	--config <path>    overlay.yaml to simulate (default: built-in defaults)
//	--ticks <n>        Number of ticks to simulate (default 3600)
//	--width/--height   Viewport size (default 1920x1080)
//	--seed <n>         Random seed (default 1)
//	--verbose          Enable verbose logging
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/gonewx/danmaku/pkg/components"
	"github.com/gonewx/danmaku/pkg/config"
	"github.com/gonewx/danmaku/pkg/game"
	"github.com/gonewx/danmaku/pkg/systems"
	"github.com/gonewx/danmaku/pkg/utils"
)

var (
	dirFlag     = flag.String("dir", "", "Directory holding danmaku.txt and color.txt")
	configFlag  = flag.String("config", "", "Path to overlay.yaml")
	ticksFlag   = flag.Int("ticks", 3600, "Number of ticks to simulate")
	widthFlag   = flag.Int("width", 1920, "Viewport width")
	heightFlag  = flag.Int("height", 1080, "Viewport height")
	seedFlag    = flag.Int64("seed", 1, "Random seed")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

// simStats 模拟结果
type simStats struct {
	ticks        int
	captionTicks int // 每帧在场字幕数之和
	overlapTicks int // 出现同轨重叠的帧数
	overlapPairs int // 同轨重叠的字幕对总数
}

func (s simStats) String() string {
	avg := 0.0
	ratio := 0.0
	if s.ticks > 0 {
		avg = float64(s.captionTicks) / float64(s.ticks)
		ratio = float64(s.overlapTicks) / float64(s.ticks) * 100
	}
	return fmt.Sprintf("ticks=%d avgOnScreen=%.1f overlapTicks=%d (%.1f%%) overlapPairs=%d",
		s.ticks, avg, s.overlapTicks, ratio, s.overlapPairs)
}

// countOverlaps 统计同一轨道（同一 Y）上水平范围相交的字幕对
func countOverlaps(captions []components.CaptionSnapshot, measure func(string) float64) int {
	pairs := 0
	for i := range captions {
		a := captions[i]
		aEnd := a.X + measure(a.Text)
		for j := i + 1; j < len(captions); j++ {
			b := captions[j]
			if a.Y != b.Y {
				continue
			}
			if a.X < b.X+measure(b.Text) && b.X < aEnd {
				pairs++
			}
		}
	}
	return pairs
}

func run(sys *systems.DanmakuSystem, measure func(string) float64, ticks int) simStats {
	var stats simStats
	for i := 0; i < ticks; i++ {
		sys.Update()
		snapshot := sys.Snapshot()

		stats.ticks++
		stats.captionTicks += len(snapshot)
		if pairs := countOverlaps(snapshot, measure); pairs > 0 {
			stats.overlapTicks++
			stats.overlapPairs += pairs
		}
	}
	return stats
}

func main() {
	flag.Parse()

	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultOverlayConfig()
	if *configFlag != "" {
		loaded, err := config.LoadOverlayConfig(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var content systems.ContentProvider
	if *dirFlag != "" {
		cm := game.NewContentManager(
			filepath.Join(*dirFlag, cfg.TextFile),
			filepath.Join(*dirFlag, cfg.ColorFile),
		)
		cm.RefreshAll()
		content = cm
	} else {
		content = game.NewContentManager("", "")
	}

	face, err := utils.LoadFontFace(cfg.FontPath, cfg.FontSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "font: %v\n", err)
		os.Exit(1)
	}
	measurer := utils.NewFaceMeasurer(face)

	sys := systems.NewDanmakuSystem(cfg, content, measurer, rand.New(rand.NewSource(*seedFlag)))
	sys.SetViewport(*widthFlag, *heightFlag)

	fmt.Printf("viewport=%dx%d lanes=%d maxOnScreen=%d clearance=%.0f probes=%d\n",
		*widthFlag, *heightFlag, sys.Lanes().LaneCount(), cfg.MaxOnScreen, cfg.ClearanceMargin, cfg.LaneProbeLimit)
	fmt.Println(run(sys, measurer.Measure, *ticksFlag))
	sys.Lanes().LogLaneState(*verboseFlag)
}
