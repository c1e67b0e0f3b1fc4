//go:build nohotkeys

package main

import (
	"io"

	"github.com/gonewx/danmaku/pkg/hotkeys"
)

// registerGlobalHotkeys 无显示服务器的构建（-tags nohotkeys）不链接全局快捷键库，
// 快捷键只在窗口获得焦点时生效
var registerGlobalHotkeys func(queue *hotkeys.Queue) (io.Closer, error)
