package systems

import (
	"image/color"
	"log"
	"math"
	"math/rand"

	"github.com/gonewx/danmaku/pkg/colorutil"
	"github.com/gonewx/danmaku/pkg/components"
	"github.com/gonewx/danmaku/pkg/config"
)

// ContentProvider 提供当前的字幕文本池和颜色池
//
// 返回的切片只读，实现方需保证整体替换而不是原地修改
type ContentProvider interface {
	Texts() []string
	Colors() []color.RGBA
}

// TextMeasurer 测量单行文本在固定字号下的渲染宽度
type TextMeasurer interface {
	Measure(text string) float64
}

// DanmakuSystem 弹幕动画系统
//
// 独占持有所有在场字幕，每帧依次执行：移动 → 清除离场字幕 → 补足到同屏上限。
// 所有状态只在游戏循环协程中修改，无需加锁。
type DanmakuSystem struct {
	config   *config.OverlayConfig
	content  ContentProvider
	measurer TextMeasurer
	rng      *rand.Rand
	lanes    *LaneAllocator

	captions []components.Caption // 按入场顺序排列
	snapshot []components.CaptionSnapshot

	defaultColor   color.RGBA
	laneHeight     float64
	viewportWidth  float64
	viewportHeight float64

	starved bool // 文本池为空导致无法补充
}

// NewDanmakuSystem 创建新的弹幕动画系统
//
// 参数:
//   - cfg: 浮层配置（需已通过校验）
//   - content: 文本池和颜色池来源
//   - measurer: 文本宽度测量器
//   - rng: 随机数源
func NewDanmakuSystem(cfg *config.OverlayConfig, content ContentProvider, measurer TextMeasurer, rng *rand.Rand) *DanmakuSystem {
	defaultColor, err := colorutil.ParseHexColor(cfg.DefaultColor)
	if err != nil {
		log.Printf("[DanmakuSystem] Warning: %v, falling back to white", err)
		defaultColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}

	return &DanmakuSystem{
		config:       cfg,
		content:      content,
		measurer:     measurer,
		rng:          rng,
		lanes:        NewLaneAllocator(0, cfg.ClearanceMargin, cfg.LaneProbeLimit, rng),
		captions:     make([]components.Caption, 0, cfg.MaxOnScreen),
		snapshot:     make([]components.CaptionSnapshot, 0, cfg.MaxOnScreen),
		defaultColor: defaultColor,
		laneHeight:   cfg.LaneHeight(),
	}
}

// SetViewport 设置视口尺寸并重新计算轨道数量
//
// 轨道数 = floor(视口高度 / (字号 + 轨道间距))
func (s *DanmakuSystem) SetViewport(width, height int) {
	w, h := float64(width), float64(height)
	if w == s.viewportWidth && h == s.viewportHeight {
		return
	}
	s.viewportWidth = w
	s.viewportHeight = h

	laneCount := 0
	if s.laneHeight > 0 && h > 0 {
		laneCount = int(math.Floor(h / s.laneHeight))
	}
	s.lanes.Resize(laneCount)

	log.Printf("[DanmakuSystem] Viewport %dx%d, %d lanes", width, height, laneCount)
}

// Lanes 返回轨道分配器
func (s *DanmakuSystem) Lanes() *LaneAllocator {
	return s.lanes
}

// Count 返回在场字幕数量
func (s *DanmakuSystem) Count() int {
	return len(s.captions)
}

// Update 推进一帧
//
// 顺序不可调换：先移动，再清除离场字幕并释放轨道，最后补充新字幕，
// 这样同一帧内释放的轨道可以立即被新字幕使用。
func (s *DanmakuSystem) Update() {
	// 1. 移动
	for i := range s.captions {
		s.captions[i].X -= s.captions[i].Speed
	}

	// 2. 清除完全移出左侧的字幕（原地压缩，保持入场顺序）
	kept := s.captions[:0]
	for _, c := range s.captions {
		if c.Expired() {
			s.lanes.Clear(c.Lane)
			continue
		}
		kept = append(kept, c)
	}
	clear(s.captions[len(kept):])
	s.captions = kept

	// 3. 补足到同屏上限
	deficit := s.config.MaxOnScreen - len(s.captions)
	if deficit <= 0 {
		return
	}

	// 每帧只读取一次内容池，刷新协程的替换不会在本帧内混用新旧数据
	texts := s.content.Texts()
	colors := s.content.Colors()
	s.setStarved(len(texts) == 0)

	for i := 0; i < deficit; i++ {
		if !s.admit(texts, colors) {
			break
		}
	}
}

// admit 放入一条新字幕，文本池为空或没有轨道时返回 false
func (s *DanmakuSystem) admit(texts []string, colors []color.RGBA) bool {
	if len(texts) == 0 {
		return false
	}

	text := texts[s.rng.Intn(len(texts))]
	fill := s.defaultColor
	if len(colors) > 0 {
		fill = colors[s.rng.Intn(len(colors))]
	}

	lane, ok := s.lanes.PickLane(s.viewportWidth)
	if !ok {
		return false
	}

	// 出生在屏幕右侧外，随机错开
	x := s.viewportWidth
	if s.config.SpawnJitter > 0 {
		x += float64(s.rng.Intn(s.config.SpawnJitter))
	}

	// 宽度决定离场判定，必须在字幕可见之前算好
	width := s.measurer.Measure(text)
	speed := s.config.BaseSpeed + s.rng.Float64()*s.config.SpeedJitter

	s.captions = append(s.captions, components.Caption{
		Text:  text,
		Color: fill,
		X:     x,
		Y:     float64(lane) * s.laneHeight,
		Speed: speed,
		Width: width,
		Lane:  lane,
	})
	s.lanes.MarkSpawn(lane, x)
	return true
}

// Snapshot 返回当前所有字幕的渲染快照
//
// 返回的切片在下一次调用 Snapshot 之前有效，调用方不得修改
func (s *DanmakuSystem) Snapshot() []components.CaptionSnapshot {
	s.snapshot = s.snapshot[:0]
	for _, c := range s.captions {
		s.snapshot = append(s.snapshot, components.CaptionSnapshot{
			Text:  c.Text,
			Color: c.Color,
			X:     c.X,
			Y:     c.Y,
		})
	}
	return s.snapshot
}

func (s *DanmakuSystem) setStarved(starved bool) {
	if starved == s.starved {
		return
	}
	s.starved = starved
	if starved {
		log.Printf("[DanmakuSystem] Text pool is empty, admission suspended")
	} else {
		log.Printf("[DanmakuSystem] Text pool available, admission resumed")
	}
}
