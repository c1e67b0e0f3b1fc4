//go:build windows

package global

import "golang.design/x/hotkey"

const modAlt = hotkey.ModAlt
