package game

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce 编辑器保存时通常连续产生多个写事件，合并为一次回调
const DefaultWatchDebounce = 100 * time.Millisecond

// FileWatcher 文件变化监听器
//
// 监听文件所在目录（编辑器常用“写临时文件再重命名”的方式保存），
// 目标文件被写入、创建或重命名时，在防抖时间后调用注册的回调。
// 回调在监听协程或定时器协程中执行，不在游戏循环中执行。
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	handlers map[string]func()      // 绝对路径 -> 回调
	timers   map[string]*time.Timer // 绝对路径 -> 防抖定时器
	dirs     map[string]bool        // 已添加的目录

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewFileWatcher 创建文件监听器
//
// 参数:
//   - debounce: 防抖时间，<= 0 时使用 DefaultWatchDebounce
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	return &FileWatcher{
		watcher:  watcher,
		debounce: debounce,
		handlers: make(map[string]func()),
		timers:   make(map[string]*time.Timer),
		dirs:     make(map[string]bool),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch 注册文件变化回调
//
// 同一路径重复注册时后者覆盖前者
func (w *FileWatcher) Watch(path string, onChange func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.handlers[absPath] = onChange

	log.Printf("[FileWatcher] Watching %s", absPath)
	return nil
}

// Start 启动监听协程
func (w *FileWatcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *FileWatcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule(filepath.Clean(event.Name))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[FileWatcher] Warning: %v", err)
		}
	}
}

// schedule 为路径安排一次防抖回调
func (w *FileWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	handler, ok := w.handlers[path]
	if !ok {
		return
	}

	if timer, exists := w.timers[path]; exists {
		timer.Reset(w.debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		log.Printf("[FileWatcher] %s changed", filepath.Base(path))
		handler()
	})
}

// Close 停止监听并释放资源，可重复调用
func (w *FileWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopCh)

		w.mu.Lock()
		for _, timer := range w.timers {
			timer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
		w.wg.Wait()
		log.Printf("[FileWatcher] Stopped")
	})
	return err
}
