package systems

import (
	"image/color"
	"log"

	"github.com/gonewx/danmaku/pkg/colorutil"
	"github.com/gonewx/danmaku/pkg/components"
	"github.com/gonewx/danmaku/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// outlineOffset 描边偏移方向
type outlineOffset struct{ dx, dy float64 }

// DanmakuRenderSystem 弹幕渲染系统
//
// 每条字幕画两遍：先在 8 个方向偏移绘制描边色，再在原位置绘制字幕颜色。
// 所有字幕先画到离屏图层，再按整体不透明度合成到屏幕。
type DanmakuRenderSystem struct {
	face         *text.GoTextFace
	outlineColor color.RGBA
	offsets      []outlineOffset
	opacity      float32

	layer *ebiten.Image
	op    text.DrawOptions

	// drawFn 绘制一次文字，测试中替换为记录调用
	drawFn func(dst *ebiten.Image, str string, x, y float64, clr color.Color)
}

// NewDanmakuRenderSystem 创建新的弹幕渲染系统
func NewDanmakuRenderSystem(face *text.GoTextFace, cfg *config.OverlayConfig) *DanmakuRenderSystem {
	outlineColor, err := colorutil.ParseHexColor(cfg.OutlineColor)
	if err != nil {
		log.Printf("[DanmakuRenderSystem] Warning: %v, falling back to black", err)
		outlineColor = color.RGBA{A: 0xff}
	}

	s := &DanmakuRenderSystem{
		face:         face,
		outlineColor: outlineColor,
		offsets:      outlineOffsets(cfg.OutlineWidth),
		opacity:      float32(cfg.Opacity),
	}
	s.drawFn = s.drawText
	return s
}

// outlineOffsets 返回 8 个方向的描边偏移，宽度为 0 时不描边
//
// width 是整条描边的粗细，字形每侧各占一半
func outlineOffsets(width float64) []outlineOffset {
	if width <= 0 {
		return nil
	}
	r := width / 2
	return []outlineOffset{
		{-r, -r}, // 左上
		{0, -r},  // 上
		{r, -r},  // 右上
		{-r, 0},  // 左
		{r, 0},   // 右
		{-r, r},  // 左下
		{0, r},   // 下
		{r, r},   // 右下
	}
}

// isOnScreen 判断字幕是否与视口水平范围相交
//
// 刚出生的字幕位于屏幕右侧外，不需要绘制
func isOnScreen(c components.CaptionSnapshot, viewportWidth float64) bool {
	return c.X < viewportWidth
}

// Draw 绘制一帧弹幕
//
// 只读取快照，不修改动画系统的任何状态
func (s *DanmakuRenderSystem) Draw(screen *ebiten.Image, captions []components.CaptionSnapshot) {
	if s.face == nil || len(captions) == 0 {
		return
	}

	layer := s.ensureLayer(screen.Bounds().Dx(), screen.Bounds().Dy())
	layer.Clear()

	viewportWidth := float64(screen.Bounds().Dx())
	for _, c := range captions {
		if !isOnScreen(c, viewportWidth) {
			continue
		}

		// 1. 描边
		for _, off := range s.offsets {
			s.drawFn(layer, c.Text, c.X+off.dx, c.Y+off.dy, s.outlineColor)
		}

		// 2. 填充（画在描边之上）
		s.drawFn(layer, c.Text, c.X, c.Y, c.Color)
	}

	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(s.opacity)
	screen.DrawImage(layer, op)
}

func (s *DanmakuRenderSystem) drawText(dst *ebiten.Image, str string, x, y float64, clr color.Color) {
	s.op.GeoM.Reset()
	s.op.GeoM.Translate(x, y)
	s.op.ColorScale.Reset()
	s.op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, str, s.face, &s.op)
}

// ensureLayer 返回与屏幕同尺寸的离屏图层，尺寸变化时重建
func (s *DanmakuRenderSystem) ensureLayer(width, height int) *ebiten.Image {
	if s.layer != nil {
		b := s.layer.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return s.layer
		}
		s.layer.Deallocate()
	}

	s.layer = ebiten.NewImage(width, height)
	log.Printf("[DanmakuRenderSystem] Allocated %dx%d layer", width, height)
	return s.layer
}

// Close 释放离屏图层
//
// 可重复调用
func (s *DanmakuRenderSystem) Close() {
	if s.layer == nil {
		return
	}
	s.layer.Deallocate()
	s.layer = nil
	log.Printf("[DanmakuRenderSystem] Layer released")
}
