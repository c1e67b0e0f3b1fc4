// Package colorutil 解析配置和内容文件中的 #RRGGBB 颜色
//
// 不依赖图形库，配置与内容加载可以在没有图形环境时使用
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor 将 "#RRGGBB" 形式的字符串解析为不透明颜色
//
// 大小写不敏感，前后空白会被忽略；不接受缩写形式（#RGB）和带透明度的形式
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected #RRGGBB", s)
	}

	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// MustParseHexColor 与 ParseHexColor 相同，但解析失败时 panic（仅用于常量）
func MustParseHexColor(s string) color.RGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
