// Package app 提供弹幕浮层应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，main.go 只负责解析参数和窗口设置。
package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/gonewx/danmaku/pkg/config"
	"github.com/gonewx/danmaku/pkg/embedded"
	"github.com/gonewx/danmaku/pkg/game"
	"github.com/gonewx/danmaku/pkg/hotkeys"
	"github.com/gonewx/danmaku/pkg/systems"
	"github.com/gonewx/danmaku/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// gdataAppName 设置存储目录名
const gdataAppName = "danmaku_overlay"

// configTemplatePath 嵌入的配置模板
const configTemplatePath = "assets/config/overlay.yaml"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Dir 字幕文件和颜色文件所在目录
	Dir string
	// ConfigPath 配置文件路径，为空时使用 Dir 下的 overlay.yaml
	ConfigPath string
	// GlobalHotkeys 注册系统级全局快捷键，按下时向队列发送动作；
	// 为 nil 时只在窗口获得焦点时响应键盘
	GlobalHotkeys func(queue *hotkeys.Queue) (io.Closer, error)
}

// App 弹幕浮层应用，实现 ebiten.Game 接口
type App struct {
	config   *config.OverlayConfig
	content  *game.ContentManager
	watcher  *game.FileWatcher
	hotkeys  *hotkeys.Queue
	global   io.Closer // 全局快捷键，可为 nil
	settings *game.SettingsManager

	danmaku  *systems.DanmakuSystem
	renderer *systems.DanmakuRenderSystem

	verbose   bool
	closeOnce sync.Once
}

// NewApp 创建并初始化浮层应用
//
// 调用此函数前应先调用 embedded.Init()，否则首次运行时不会写出配置模板。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(cfg.Dir, config.DefaultConfigFileName)
	}
	if _, err := embedded.ExtractIfMissing(configTemplatePath, configPath); err != nil {
		log.Printf("[App] Warning: config template not written: %v", err)
	}

	overlayConfig, err := config.LoadOverlayConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}
	log.Printf("[Config] Loaded %s", configPath)

	// 内容池：先写出缺失的文件，再加载
	content := game.NewContentManager(
		resolvePath(cfg.Dir, overlayConfig.TextFile),
		resolvePath(cfg.Dir, overlayConfig.ColorFile),
	)
	if err := content.EnsureFiles(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
	content.RefreshAll()

	a := &App{
		config:  overlayConfig,
		content: content,
		verbose: cfg.Verbose,
	}

	// 文件监听失败不影响运行，只是不能热更新
	if watcher, err := game.NewFileWatcher(game.DefaultWatchDebounce); err != nil {
		log.Printf("[App] Warning: %v (hot reload disabled)", err)
	} else if err := content.Watch(watcher); err != nil {
		log.Printf("[App] Warning: %v (hot reload disabled)", err)
		watcher.Close()
	} else {
		watcher.Start()
		a.watcher = watcher
	}

	face, err := utils.LoadFontFace(overlayConfig.FontPath, overlayConfig.FontSize)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("字体加载失败: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	a.danmaku = systems.NewDanmakuSystem(overlayConfig, content, utils.NewFaceMeasurer(face), rng)
	a.renderer = systems.NewDanmakuRenderSystem(face, overlayConfig)

	// 运行期设置（显示/隐藏），gdata 不可用时降级为仅内存
	gdataManager, err := gdata.Open(gdata.Config{AppName: gdataAppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable: %v (settings will not persist)", err)
		gdataManager = nil
	}
	a.settings = game.NewSettingsManager(gdataManager)

	a.hotkeys = hotkeys.NewQueue()
	if cfg.GlobalHotkeys != nil {
		global, err := cfg.GlobalHotkeys(a.hotkeys)
		if err != nil {
			log.Printf("[App] Warning: %v (hotkeys only work while the overlay has focus)", err)
		}
		a.global = global
	}

	log.Printf("[App] Ready: %d texts, %d colors, visible=%v",
		len(content.Texts()), len(content.Colors()), a.settings.GetSettings().Visible)
	return a, nil
}

// resolvePath 相对路径相对于内容目录
func resolvePath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// Update 更新弹幕状态
// 每个 tick 调用一次（默认每秒 60 次）
func (a *App) Update() error {
	a.pollFocusedKeys()

	if err := a.handleActions(); err != nil {
		return err
	}

	a.danmaku.Update()
	return nil
}

// pollFocusedKeys 窗口获得焦点时，键盘组合键与全局快捷键等效
func (a *App) pollFocusedKeys() {
	if !ebiten.IsKeyPressed(ebiten.KeyControl) || !ebiten.IsKeyPressed(ebiten.KeyAlt) {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		a.hotkeys.Trigger(hotkeys.ActionToggleVisible)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		a.hotkeys.Trigger(hotkeys.ActionQuit)
	}
}

// handleActions 处理本帧所有待处理的快捷键动作
//
// 返回 ebiten.Termination 表示退出
func (a *App) handleActions() error {
	for {
		action, ok := a.hotkeys.Poll()
		if !ok {
			return nil
		}

		switch action {
		case hotkeys.ActionToggleVisible:
			visible := a.settings.ToggleVisible()
			log.Printf("[App] Overlay visible=%v, %d captions", visible, a.danmaku.Count())
			a.danmaku.Lanes().LogLaneState(a.verbose)
			if err := a.settings.Save(); err != nil {
				log.Printf("[App] Warning: %v", err)
			}
		case hotkeys.ActionQuit:
			log.Printf("[App] Quit requested")
			return ebiten.Termination
		}
	}
}

// Draw 绘制弹幕
// 隐藏时不绘制，但 Update 照常推进
func (a *App) Draw(screen *ebiten.Image) {
	if !a.settings.GetSettings().Visible {
		return
	}
	a.renderer.Draw(screen, a.danmaku.Snapshot())
}

// Layout 逻辑尺寸与窗口尺寸一致，视口变化时重新计算轨道
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.danmaku.SetViewport(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// TicksPerSecond 返回配置的逻辑帧率
func (a *App) TicksPerSecond() int {
	return a.config.TicksPerSecond
}

// Visible 返回弹幕当前是否显示
func (a *App) Visible() bool {
	return a.settings.GetSettings().Visible
}

// Close 释放所有资源，无论游戏循环如何退出都应调用
//
// 可重复调用
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		if a.watcher != nil {
			errs = append(errs, a.watcher.Close())
		}
		if a.global != nil {
			errs = append(errs, a.global.Close())
		}
		if a.settings != nil {
			errs = append(errs, a.settings.Save())
		}
		if a.renderer != nil {
			a.renderer.Close()
		}
		log.Printf("[App] Closed")
	})
	return errors.Join(errs...)
}
