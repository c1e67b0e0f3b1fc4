package game

import (
	"testing"

	"github.com/quasilyte/gdata/v2"
)

func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("APPDATA", t.TempDir())

	gdataManager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	if settings == nil {
		t.Fatal("DefaultSettings() returned nil")
	}
	if !settings.Visible {
		t.Error("Visible: got false, want true")
	}
}

// TestNewSettingsManagerNilGdata gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil)
	if !sm.GetSettings().Visible {
		t.Error("Degraded mode Visible: got false, want true")
	}

	// 降级模式下 Save() 不报错
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should return nil, got: %v", err)
	}

	// 降级模式下 Load() 恢复默认值
	sm.SetVisible(false)
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should return nil, got: %v", err)
	}
	if !sm.GetSettings().Visible {
		t.Error("After Load() in degraded mode, Visible: got false, want true")
	}
}

func TestSettingsLoadSave(t *testing.T) {
	gdataManager := openTestGdata(t, "test_danmaku_settings")

	sm1 := NewSettingsManager(gdataManager)
	if !sm1.GetSettings().Visible {
		t.Fatal("Fresh store should start visible")
	}

	sm1.SetVisible(false)
	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2 := NewSettingsManager(gdataManager)
	if sm2.GetSettings().Visible {
		t.Error("Loaded Visible: got true, want false")
	}
}

// TestSettingsLoadCorrupted 数据损坏时回退到默认设置
func TestSettingsLoadCorrupted(t *testing.T) {
	gdataManager := openTestGdata(t, "test_danmaku_settings_corrupted")
	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("visible: [oops")); err != nil {
		t.Fatalf("failed to seed corrupted settings: %v", err)
	}

	sm := NewSettingsManager(gdataManager)
	if !sm.GetSettings().Visible {
		t.Error("Corrupted settings should fall back to visible")
	}
	if err := sm.Load(); err == nil {
		t.Error("Expected Load() to report the unmarshal error")
	}
}

func TestToggleVisible(t *testing.T) {
	sm := NewSettingsManager(nil)

	tests := []bool{false, true, false}
	for i, expected := range tests {
		if got := sm.ToggleVisible(); got != expected {
			t.Errorf("ToggleVisible() #%d = %v, want %v", i, got, expected)
		}
		if sm.GetSettings().Visible != expected {
			t.Errorf("Visible after toggle #%d = %v, want %v", i, sm.GetSettings().Visible, expected)
		}
	}
}
