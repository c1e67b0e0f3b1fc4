package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/gonewx/danmaku/pkg/app"
	"github.com/gonewx/danmaku/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	dirFlag       = flag.String("dir", "", "Directory holding danmaku.txt and color.txt (default: executable directory)")
	configFlag    = flag.String("config", "", "Path to overlay.yaml (default: <dir>/overlay.yaml)")
	verboseFlag   = flag.Bool("verbose", false, "Enable verbose logging (default off)")
	noHotkeysFlag = flag.Bool("no-hotkeys", false, "Do not register global hotkeys")
)

// defaultDir 可执行文件所在目录，获取失败时使用当前目录
func defaultDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func main() {
	flag.Parse()

	// 初始化嵌入资源（assetsFS 在 embed.go 中声明）
	embedded.Init(assetsFS)

	dir := *dirFlag
	if dir == "" {
		dir = defaultDir()
	}

	cfg := app.Config{
		Verbose:       *verboseFlag,
		Dir:           dir,
		ConfigPath:    *configFlag,
		GlobalHotkeys: registerGlobalHotkeys,
	}
	if *noHotkeysFlag {
		cfg.GlobalHotkeys = nil
	}

	overlay, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 覆盖整个主显示器的透明置顶窗口，鼠标事件穿透到下层窗口
	monitorWidth, monitorHeight := ebiten.Monitor().Size()
	ebiten.SetWindowTitle("Danmaku")
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowMousePassthrough(true)
	ebiten.SetWindowSize(monitorWidth, monitorHeight)
	ebiten.SetWindowPosition(0, 0)
	ebiten.SetTPS(overlay.TicksPerSecond())

	runErr := ebiten.RunGameWithOptions(overlay, &ebiten.RunGameOptions{
		ScreenTransparent: true,
	})

	if err := overlay.Close(); err != nil {
		log.Printf("[main] Warning: cleanup failed: %v", err)
	}

	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		log.Fatal(runErr)
	}
}
