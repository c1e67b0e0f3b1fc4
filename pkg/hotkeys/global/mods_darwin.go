//go:build darwin

package global

import "golang.design/x/hotkey"

const modAlt = hotkey.ModOption
