package game

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestContentManager(t *testing.T) (*ContentManager, string, string) {
	t.Helper()
	dir := t.TempDir()
	textPath := filepath.Join(dir, "danmaku.txt")
	colorPath := filepath.Join(dir, "color.txt")
	return NewContentManager(textPath, colorPath), textPath, colorPath
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestContentManagerDefaults 尚未加载时使用内置默认内容
func TestContentManagerDefaults(t *testing.T) {
	cm, _, _ := newTestContentManager(t)

	if !reflect.DeepEqual(cm.Texts(), DefaultTexts) {
		t.Errorf("Expected default texts, got %v", cm.Texts())
	}
	if len(cm.Colors()) != len(DefaultColorHex) {
		t.Fatalf("Expected %d default colors, got %d", len(DefaultColorHex), len(cm.Colors()))
	}
	if cm.Colors()[0] != (color.RGBA{R: 0xFF, G: 0x45, B: 0x00, A: 0xFF}) {
		t.Errorf("Unexpected first default color %v", cm.Colors()[0])
	}
}

// TestEnsureFilesCreatesDefaults 文件不存在时写入默认内容，已存在时不覆盖
func TestEnsureFilesCreatesDefaults(t *testing.T) {
	cm, textPath, colorPath := newTestContentManager(t)
	writeFile(t, colorPath, "#123456\n")

	if err := cm.EnsureFiles(); err != nil {
		t.Fatalf("EnsureFiles() error: %v", err)
	}

	data, err := os.ReadFile(textPath)
	if err != nil {
		t.Fatalf("text file not created: %v", err)
	}
	if !reflect.DeepEqual(ParseTextLines(data), DefaultTexts) {
		t.Errorf("Created text file does not hold defaults: %q", data)
	}

	data, err = os.ReadFile(colorPath)
	if err != nil {
		t.Fatalf("failed to read color file: %v", err)
	}
	if string(data) != "#123456\n" {
		t.Errorf("Existing color file was overwritten: %q", data)
	}
}

func TestRefreshText(t *testing.T) {
	cm, textPath, _ := newTestContentManager(t)
	writeFile(t, textPath, "\xEF\xBB\xBFfirst\r\nsecond\n\n   \nthird")

	if err := cm.Refresh(ContentText); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	expected := []string{"first", "second", "third"}
	if !reflect.DeepEqual(cm.Texts(), expected) {
		t.Errorf("Expected %v, got %v", expected, cm.Texts())
	}
}

func TestRefreshColor(t *testing.T) {
	cm, _, colorPath := newTestContentManager(t)
	writeFile(t, colorPath, "#FF0000\nnot-a-color\n#00ff00\r\n#12345\n")

	if err := cm.Refresh(ContentColor); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	expected := []color.RGBA{
		{R: 0xFF, A: 0xFF},
		{G: 0xFF, A: 0xFF},
	}
	if !reflect.DeepEqual(cm.Colors(), expected) {
		t.Errorf("Expected %v, got %v", expected, cm.Colors())
	}
}

// TestRefreshIdempotent 相同内容重复刷新时池保持不变
func TestRefreshIdempotent(t *testing.T) {
	cm, textPath, _ := newTestContentManager(t)
	writeFile(t, textPath, "a\nb\nc\n")

	if err := cm.Refresh(ContentText); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	first := cm.texts.Load()
	snapshot := append([]string(nil), *first...)

	if err := cm.Refresh(ContentText); err != nil {
		t.Fatalf("second Refresh() error: %v", err)
	}
	if cm.texts.Load() != first {
		t.Errorf("Expected identical content to keep the published pool")
	}
	if !reflect.DeepEqual(cm.Texts(), snapshot) {
		t.Errorf("Pool changed after idempotent refresh: %v -> %v", snapshot, cm.Texts())
	}
}

// TestRefreshReadFailureKeepsPool 读取失败时保留原有内容
func TestRefreshReadFailureKeepsPool(t *testing.T) {
	cm, textPath, colorPath := newTestContentManager(t)
	writeFile(t, textPath, "keep me\n")
	writeFile(t, colorPath, "#ABCDEF\n")
	cm.RefreshAll()

	errLocked := errors.New("file is locked")
	cm.readFile = func(string) ([]byte, error) { return nil, errLocked }

	if err := cm.Refresh(ContentText); !errors.Is(err, errLocked) {
		t.Errorf("Expected wrapped read error, got %v", err)
	}
	if err := cm.Refresh(ContentColor); !errors.Is(err, errLocked) {
		t.Errorf("Expected wrapped read error, got %v", err)
	}

	if !reflect.DeepEqual(cm.Texts(), []string{"keep me"}) {
		t.Errorf("Text pool changed after read failure: %v", cm.Texts())
	}
	if !reflect.DeepEqual(cm.Colors(), []color.RGBA{{R: 0xAB, G: 0xCD, B: 0xEF, A: 0xFF}}) {
		t.Errorf("Color pool changed after read failure: %v", cm.Colors())
	}
}

// TestRefreshEmptyFile 文件被清空后文本池为空（停止补充字幕）
func TestRefreshEmptyFile(t *testing.T) {
	cm, textPath, _ := newTestContentManager(t)
	writeFile(t, textPath, "hello\n")
	if err := cm.Refresh(ContentText); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	writeFile(t, textPath, "")
	if err := cm.Refresh(ContentText); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if len(cm.Texts()) != 0 {
		t.Errorf("Expected empty text pool, got %v", cm.Texts())
	}
}

// TestRefreshRecreatesMissingFile 文件被删除后刷新会重新写入默认内容
func TestRefreshRecreatesMissingFile(t *testing.T) {
	cm, textPath, _ := newTestContentManager(t)

	if err := cm.Refresh(ContentText); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if _, err := os.Stat(textPath); err != nil {
		t.Errorf("Expected text file to be created: %v", err)
	}
	if !reflect.DeepEqual(cm.Texts(), DefaultTexts) {
		t.Errorf("Expected default texts, got %v", cm.Texts())
	}
}

func TestContentKindString(t *testing.T) {
	if ContentText.String() != "text" || ContentColor.String() != "color" {
		t.Errorf("Unexpected kind names: %s, %s", ContentText, ContentColor)
	}
	if ContentKind(7).String() != "ContentKind(7)" {
		t.Errorf("Unexpected unknown kind name: %s", ContentKind(7))
	}
}
