//go:build !nohotkeys

package main

import (
	"io"

	"github.com/gonewx/danmaku/pkg/hotkeys"
	"github.com/gonewx/danmaku/pkg/hotkeys/global"
)

// registerGlobalHotkeys 注册 Ctrl+Alt+H / Ctrl+Alt+Q
//
// 部分绑定失败时仍返回管理器，已注册的快捷键照常工作
func registerGlobalHotkeys(queue *hotkeys.Queue) (io.Closer, error) {
	m := global.NewManager(queue)
	return m, m.Register(global.DefaultBindings())
}
