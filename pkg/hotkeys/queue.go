// Package hotkeys 定义快捷键动作及其队列
//
// 本包不依赖任何平台库：全局快捷键（global 子包）和窗口获得焦点时的
// 键盘输入都只负责调用 Trigger，游戏循环在 Update 中调用 Poll 处理动作。
package hotkeys

import (
	"fmt"
	"log"
)

// Action 快捷键触发的动作
type Action int

const (
	ActionToggleVisible Action = iota // 显示/隐藏弹幕
	ActionQuit                        // 退出程序
)

func (a Action) String() string {
	switch a {
	case ActionToggleVisible:
		return "toggle-visible"
	case ActionQuit:
		return "quit"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// QueueSize 动作队列容量，游戏循环每帧取空，满时丢弃新动作
const QueueSize = 8

// Queue 快捷键动作队列，可在任意协程中 Trigger
type Queue struct {
	actions chan Action
}

// NewQueue 创建动作队列
func NewQueue() *Queue {
	return &Queue{actions: make(chan Action, QueueSize)}
}

// Trigger 将动作放入队列，队列满时丢弃
func (q *Queue) Trigger(action Action) {
	select {
	case q.actions <- action:
	default:
		log.Printf("[Hotkeys] Warning: action queue full, dropping %s", action)
	}
}

// Poll 取出一个待处理的动作，没有时返回 false
func (q *Queue) Poll() (Action, bool) {
	select {
	case action := <-q.actions:
		return action, true
	default:
		return 0, false
	}
}
