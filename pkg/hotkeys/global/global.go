// Package global 注册系统级全局快捷键，按下时向 hotkeys.Queue 发送动作
//
// 在 Linux 上，底层库在包初始化时就要连接 X11 显示服务器，
// 没有显示服务器时会直接 panic。因此只有 main 包在默认构建下导入本包，
// 无显示环境请使用 -tags nohotkeys 构建。
package global

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gonewx/danmaku/pkg/hotkeys"
	"golang.design/x/hotkey"
)

// Binding 快捷键与动作的绑定
type Binding struct {
	Action hotkeys.Action
	Mods   []hotkey.Modifier
	Key    hotkey.Key
	Label  string // 日志中显示的按键组合
}

// DefaultBindings 返回默认绑定：Ctrl+Alt+H 隐藏，Ctrl+Alt+Q 退出
func DefaultBindings() []Binding {
	return []Binding{
		{Action: hotkeys.ActionToggleVisible, Mods: []hotkey.Modifier{hotkey.ModCtrl, modAlt}, Key: hotkey.KeyH, Label: "Ctrl+Alt+H"},
		{Action: hotkeys.ActionQuit, Mods: []hotkey.Modifier{hotkey.ModCtrl, modAlt}, Key: hotkey.KeyQ, Label: "Ctrl+Alt+Q"},
	}
}

// Manager 全局快捷键管理器
//
// 每个快捷键由一个协程等待按下事件，转成动作放入队列
type Manager struct {
	queue      *hotkeys.Queue
	registered []*hotkey.Hotkey

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 创建快捷键管理器（尚未注册任何快捷键）
func NewManager(queue *hotkeys.Queue) *Manager {
	return &Manager{
		queue:  queue,
		stopCh: make(chan struct{}),
	}
}

// Register 注册全部绑定
//
// 单个快捷键注册失败（例如已被其他程序占用）不影响其余绑定，
// 所有失败合并后返回。
func (m *Manager) Register(bindings []Binding) error {
	var errs []error
	for _, b := range bindings {
		hk := hotkey.New(b.Mods, b.Key)
		if err := hk.Register(); err != nil {
			log.Printf("[Hotkeys] Warning: failed to register %s: %v", b.Label, err)
			errs = append(errs, fmt.Errorf("register %s: %w", b.Label, err))
			continue
		}
		m.registered = append(m.registered, hk)

		m.wg.Add(1)
		go m.listen(hk, b.Action)
		log.Printf("[Hotkeys] Registered %s -> %s", b.Label, b.Action)
	}
	return errors.Join(errs...)
}

func (m *Manager) listen(hk *hotkey.Hotkey, action hotkeys.Action) {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			m.queue.Trigger(action)
		}
	}
}

// Close 注销全部快捷键，可重复调用
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
		for _, hk := range m.registered {
			if err := hk.Unregister(); err != nil {
				errs = append(errs, err)
			}
		}
		m.registered = nil
		log.Printf("[Hotkeys] Unregistered all hotkeys")
	})
	return errors.Join(errs...)
}
