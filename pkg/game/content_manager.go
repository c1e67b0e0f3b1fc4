package game

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gonewx/danmaku/pkg/colorutil"
)

// ContentKind 内容池类型
type ContentKind int

const (
	ContentText  ContentKind = iota // 字幕文本
	ContentColor                    // 字幕颜色
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentColor:
		return "color"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// DefaultTexts 内置字幕，首次运行时写入字幕文件，加载成功之前也用作文本池
var DefaultTexts = []string{
	"ctrl + alt + h 隱藏",
	"ctrl + alt + q 關閉",
	"加入字幕 danmaku.txt",
	"加入顏色 color.txt",
}

// DefaultColorHex 内置调色板
var DefaultColorHex = []string{
	"#FF4500", "#FF69B4", "#00CED1", "#1E90FF", "#FFD700",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ContentManager 字幕内容管理器
//
// 持有文本池和颜色池。刷新时整体构建新池，再通过原子指针替换发布，
// 读取方（游戏循环）无需加锁，也不会看到半更新的池。
// 读取失败时保留上一次成功加载的内容。
type ContentManager struct {
	textPath  string
	colorPath string

	texts  atomic.Pointer[[]string]
	colors atomic.Pointer[[]color.RGBA]

	refreshMu sync.Mutex // 串行化刷新，读取方不加锁
	readFile  func(name string) ([]byte, error)
}

// NewContentManager 创建内容管理器，初始发布内置默认内容
//
// 参数:
//   - textPath: 字幕文件路径（每行一条字幕）
//   - colorPath: 颜色文件路径（每行一个 #RRGGBB）
func NewContentManager(textPath, colorPath string) *ContentManager {
	cm := &ContentManager{
		textPath:  textPath,
		colorPath: colorPath,
		readFile:  os.ReadFile,
	}

	texts := slices.Clone(DefaultTexts)
	cm.texts.Store(&texts)

	colors := make([]color.RGBA, 0, len(DefaultColorHex))
	for _, hex := range DefaultColorHex {
		colors = append(colors, colorutil.MustParseHexColor(hex))
	}
	cm.colors.Store(&colors)

	return cm
}

// Texts 返回当前文本池（只读）
func (cm *ContentManager) Texts() []string {
	return *cm.texts.Load()
}

// Colors 返回当前颜色池（只读）
func (cm *ContentManager) Colors() []color.RGBA {
	return *cm.colors.Load()
}

// Path 返回指定内容池的文件路径
func (cm *ContentManager) Path(kind ContentKind) string {
	if kind == ContentColor {
		return cm.colorPath
	}
	return cm.textPath
}

// EnsureFiles 为不存在的内容文件写入默认内容
func (cm *ContentManager) EnsureFiles() error {
	return errors.Join(
		ensureFile(cm.textPath, DefaultTexts),
		ensureFile(cm.colorPath, DefaultColorHex),
	)
}

// ensureFile 文件不存在时创建并写入默认行
func ensureFile(path string, lines []string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	log.Printf("[ContentManager] Created %s with %d default lines", path, len(lines))
	return nil
}

// Refresh 重新加载指定内容池
//
// 文件不存在时先写入默认内容。读取失败（例如文件正在被编辑器写入）时保留原有内容，
// 返回的错误仅用于记录日志。内容与当前池相同时不做替换。
func (cm *ContentManager) Refresh(kind ContentKind) error {
	cm.refreshMu.Lock()
	defer cm.refreshMu.Unlock()

	path := cm.Path(kind)
	defaults := DefaultTexts
	if kind == ContentColor {
		defaults = DefaultColorHex
	}
	if err := ensureFile(path, defaults); err != nil {
		return err
	}

	data, err := cm.readFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s pool from %s (keeping previous): %w", kind, path, err)
	}

	switch kind {
	case ContentText:
		texts := ParseTextLines(data)
		if slices.Equal(texts, cm.Texts()) {
			return nil
		}
		cm.texts.Store(&texts)
		log.Printf("[ContentManager] Loaded %d captions from %s", len(texts), path)

	case ContentColor:
		colors, skipped := ParseColorLines(data)
		if skipped > 0 {
			log.Printf("[ContentManager] Warning: skipped %d invalid color lines in %s", skipped, path)
		}
		if slices.Equal(colors, cm.Colors()) {
			return nil
		}
		cm.colors.Store(&colors)
		log.Printf("[ContentManager] Loaded %d colors from %s", len(colors), path)

	default:
		return fmt.Errorf("unknown content kind %s", kind)
	}

	return nil
}

// RefreshAll 重新加载全部内容池，失败只记录日志
func (cm *ContentManager) RefreshAll() {
	for _, kind := range []ContentKind{ContentText, ContentColor} {
		if err := cm.Refresh(kind); err != nil {
			log.Printf("[ContentManager] Warning: %v", err)
		}
	}
}

// Watch 订阅内容文件的变化，文件改变时重新加载对应的池
func (cm *ContentManager) Watch(w *FileWatcher) error {
	for _, kind := range []ContentKind{ContentText, ContentColor} {
		kind := kind // go 1.21 的循环变量按循环共享，闭包需要本次迭代的副本
		err := w.Watch(cm.Path(kind), func() {
			if err := cm.Refresh(kind); err != nil {
				log.Printf("[ContentManager] Warning: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to watch %s file: %w", kind, err)
		}
	}
	return nil
}

// splitLines 按行切分，去掉 BOM、行尾 \r 和空行
func splitLines(data []byte) []string {
	data = bytes.TrimPrefix(data, utf8BOM)

	lines := make([]string, 0, bytes.Count(data, []byte{'\n'})+1)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseTextLines 解析字幕文件内容，每个非空行为一条字幕
func ParseTextLines(data []byte) []string {
	return splitLines(data)
}

// ParseColorLines 解析颜色文件内容
//
// 返回:
//   - 按文件顺序排列的颜色
//   - 被跳过的无效行数
func ParseColorLines(data []byte) ([]color.RGBA, int) {
	lines := splitLines(data)
	colors := make([]color.RGBA, 0, len(lines))
	skipped := 0
	for _, line := range lines {
		c, err := colorutil.ParseHexColor(line)
		if err != nil {
			skipped++
			continue
		}
		colors = append(colors, c)
	}
	return colors, skipped
}
