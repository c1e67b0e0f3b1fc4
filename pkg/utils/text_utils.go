package utils

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// measureCacheLimit 宽度缓存的最大条目数，超过后整体清空
const measureCacheLimit = 4096

// LoadFontFace 加载字体并创建指定字号的字体面
//
// 参数:
//   - path: 字体文件路径，为空时使用内置的 M+ 1p 字体（覆盖常用中日文字符）
//   - size: 字号（像素）
func LoadFontFace(path string, size float64) (*text.GoTextFace, error) {
	fontData := fonts.MPlus1pRegular_ttf
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file %s: %w", path, err)
		}
		fontData = data
	}

	source, err := text.NewGoTextFaceSource(bytes.NewReader(fontData))
	if err != nil {
		return nil, fmt.Errorf("failed to create font source for %q: %w", path, err)
	}

	return &text.GoTextFace{
		Source:    source,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}, nil
}

// MeasureTextWidth 测量单行文本宽度
func MeasureTextWidth(textStr string, font *text.GoTextFace) float64 {
	if textStr == "" || font == nil {
		return 0
	}

	width, _ := text.Measure(textStr, font, 0)
	return width
}

// FaceMeasurer 按固定字体面测量单行文本宽度
//
// 文本池通常只有几十行，同一行会被反复抽中，因此按文本缓存结果。
// 非并发安全，只应在游戏循环协程中使用。
type FaceMeasurer struct {
	face  *text.GoTextFace
	cache map[string]float64
}

// NewFaceMeasurer 创建文本宽度测量器
func NewFaceMeasurer(face *text.GoTextFace) *FaceMeasurer {
	return &FaceMeasurer{
		face:  face,
		cache: make(map[string]float64),
	}
}

// Measure 返回文本宽度（像素）
func (m *FaceMeasurer) Measure(textStr string) float64 {
	if width, ok := m.cache[textStr]; ok {
		return width
	}

	if len(m.cache) >= measureCacheLimit {
		clear(m.cache)
	}

	width := MeasureTextWidth(textStr, m.face)
	m.cache[textStr] = width
	return width
}
