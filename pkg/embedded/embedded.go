// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的资源。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	assetsFS    fs.FS
	initialized bool
)

var errNotInitialized = errors.New("embedded package not initialized, call Init() first")

// Init 初始化嵌入的资源文件系统
// 必须在 main() 开始时、任何资源加载之前调用
func Init(assets fs.FS) {
	assetsFS = assets
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 标准化路径并检查前缀
// 路径必须以 "assets/" 开头
func normalize(path string) (string, error) {
	if !initialized {
		return "", errNotInitialized
	}

	// embed.FS 使用正斜杠
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	if !strings.HasPrefix(path, "assets/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'assets/')", path)
	}
	return path, nil
}

// ReadFile 读取嵌入的文件内容
func ReadFile(path string) ([]byte, error) {
	path, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(assetsFS, path)
}

// Exists 检查文件是否存在于嵌入资源中
func Exists(path string) bool {
	path, err := normalize(path)
	if err != nil {
		return false
	}
	_, err = fs.Stat(assetsFS, path)
	return err == nil
}

// ExtractIfMissing 目标文件不存在时，将嵌入的文件写到磁盘
//
// 参数:
//   - path: 嵌入资源路径，以 "assets/" 开头
//   - dst: 磁盘上的目标路径
//
// 返回:
//   - bool: 是否写入了文件（已存在时为 false）
//   - error: 读取或写入失败
func ExtractIfMissing(path, dst string) (bool, error) {
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", dst, err)
	}

	data, err := ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read embedded %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", dst, err)
	}

	log.Printf("[embedded] Extracted %s -> %s", path, dst)
	return true, nil
}
