//go:build linux

package global

import "golang.design/x/hotkey"

// X11 下 Alt 对应 Mod1
const modAlt = hotkey.Mod1
