package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gonewx/danmaku/pkg/colorutil"
	"gopkg.in/yaml.v3"
)

// 默认文件名（与可执行文件位于同一目录）
const (
	DefaultConfigFileName = "overlay.yaml"
	DefaultTextFileName   = "danmaku.txt"
	DefaultColorFileName  = "color.txt"
)

// OverlayConfig 弹幕浮层配置
type OverlayConfig struct {
	// 密度与轨道
	MaxOnScreen     int     `yaml:"maxOnScreen"`     // 同屏最多字幕数
	FontSize        float64 `yaml:"fontSize"`        // 字号（像素）
	LanePadding     float64 `yaml:"lanePadding"`     // 轨道间距
	ClearanceMargin float64 `yaml:"clearanceMargin"` // 新字幕入轨所需的尾部间距
	LaneProbeLimit  int     `yaml:"laneProbeLimit"`  // 选轨随机探测次数上限

	// 运动
	SpawnJitter    int     `yaml:"spawnJitter"`    // 出生点右侧随机偏移 [0, spawnJitter)
	BaseSpeed      float64 `yaml:"baseSpeed"`      // 最低速度（像素/帧）
	SpeedJitter    float64 `yaml:"speedJitter"`    // 速度随机区间宽度
	TicksPerSecond int     `yaml:"ticksPerSecond"` // 每秒更新次数

	// 渲染
	FontPath     string  `yaml:"fontPath"`     // 字体文件路径，为空时使用内置字体
	OutlineWidth float64 `yaml:"outlineWidth"` // 描边粗细，每侧各占一半
	OutlineColor string  `yaml:"outlineColor"` // 描边颜色 #RRGGBB
	DefaultColor string  `yaml:"defaultColor"` // 颜色列表为空时使用的颜色
	Opacity      float64 `yaml:"opacity"`      // 整体不透明度 0.0 ~ 1.0

	// 内容文件
	TextFile  string `yaml:"textFile"`  // 字幕文件名（相对内容目录）
	ColorFile string `yaml:"colorFile"` // 颜色文件名（相对内容目录）
}

// DefaultOverlayConfig 返回默认配置
func DefaultOverlayConfig() *OverlayConfig {
	return &OverlayConfig{
		MaxOnScreen:     20,
		FontSize:        32,
		LanePadding:     10,
		ClearanceMargin: 100,
		LaneProbeLimit:  10,
		SpawnJitter:     300,
		BaseSpeed:       3,
		SpeedJitter:     2,
		TicksPerSecond:  60,
		FontPath:        "",
		OutlineWidth:    3,
		OutlineColor:    "#000000",
		DefaultColor:    "#FFFFFF",
		Opacity:         1.0,
		TextFile:        DefaultTextFileName,
		ColorFile:       DefaultColorFileName,
	}
}

// LoadOverlayConfig 从 YAML 文件加载浮层配置
//
// 文件中未出现的字段保留默认值；文件不存在时直接返回默认配置
func LoadOverlayConfig(filePath string) (*OverlayConfig, error) {
	config := DefaultOverlayConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read overlay config file: %w", err)
	}

	if err := ParseOverlayConfig(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseOverlayConfig 将 YAML 数据覆盖到已有配置上并校验
func ParseOverlayConfig(data []byte, config *OverlayConfig) error {
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse overlay config YAML: %w", err)
	}

	if err := validateOverlayConfig(config); err != nil {
		return fmt.Errorf("invalid overlay config: %w", err)
	}
	return nil
}

// LaneHeight 返回单条轨道的高度
func (c *OverlayConfig) LaneHeight() float64 {
	return c.FontSize + c.LanePadding
}

// validateOverlayConfig 验证配置的有效性
func validateOverlayConfig(config *OverlayConfig) error {
	if config.MaxOnScreen < 0 {
		return fmt.Errorf("maxOnScreen must be >= 0, got %d", config.MaxOnScreen)
	}
	if config.FontSize <= 0 {
		return fmt.Errorf("fontSize must be > 0, got %.1f", config.FontSize)
	}
	if config.LanePadding < 0 {
		return fmt.Errorf("lanePadding must be >= 0, got %.1f", config.LanePadding)
	}
	if config.ClearanceMargin < 0 {
		return fmt.Errorf("clearanceMargin must be >= 0, got %.1f", config.ClearanceMargin)
	}
	if config.LaneProbeLimit < 1 {
		return fmt.Errorf("laneProbeLimit must be >= 1, got %d", config.LaneProbeLimit)
	}
	if config.SpawnJitter < 0 {
		return fmt.Errorf("spawnJitter must be >= 0, got %d", config.SpawnJitter)
	}
	if config.BaseSpeed <= 0 {
		return fmt.Errorf("baseSpeed must be > 0, got %.2f", config.BaseSpeed)
	}
	if config.SpeedJitter < 0 {
		return fmt.Errorf("speedJitter must be >= 0, got %.2f", config.SpeedJitter)
	}
	if config.TicksPerSecond < 1 {
		return fmt.Errorf("ticksPerSecond must be >= 1, got %d", config.TicksPerSecond)
	}
	if config.OutlineWidth < 0 {
		return fmt.Errorf("outlineWidth must be >= 0, got %.1f", config.OutlineWidth)
	}
	if _, err := colorutil.ParseHexColor(config.OutlineColor); err != nil {
		return fmt.Errorf("outlineColor: %w", err)
	}
	if _, err := colorutil.ParseHexColor(config.DefaultColor); err != nil {
		return fmt.Errorf("defaultColor: %w", err)
	}
	if config.Opacity < 0 || config.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %.2f", config.Opacity)
	}
	if config.TextFile == "" {
		return fmt.Errorf("textFile cannot be empty")
	}
	if config.ColorFile == "" {
		return fmt.Errorf("colorFile cannot be empty")
	}
	if config.TextFile == config.ColorFile {
		return fmt.Errorf("textFile and colorFile must differ, both are %q", config.TextFile)
	}

	return nil
}
