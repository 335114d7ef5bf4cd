package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rupor-github/gencfg"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Document.Fonts.Names["宋体"] != "SimSun" {
		t.Errorf("font name for 宋体 = %q, want SimSun", cfg.Document.Fonts.Names["宋体"])
	}
	if cfg.Document.Fonts.Names["仿宋_GB2312"] != "仿宋_GB2312" {
		t.Errorf("font name for 仿宋_GB2312 = %q", cfg.Document.Fonts.Names["仿宋_GB2312"])
	}
	if cfg.Document.Images.DefaultWidth != 200 || cfg.Document.Images.DefaultHeight != 150 {
		t.Errorf("default image size = %vx%v, want 200x150", cfg.Document.Images.DefaultWidth, cfg.Document.Images.DefaultHeight)
	}
	if cfg.Document.Images.AutoFallbackHeight != 300 {
		t.Errorf("AutoFallbackHeight = %v, want 300", cfg.Document.Images.AutoFallbackHeight)
	}
	if cfg.Document.Images.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", cfg.Document.Images.FetchTimeout)
	}
	if cfg.AI.MaxTokens < 1 || cfg.AI.MaxTokens > 8192 {
		t.Errorf("AI.MaxTokens = %d, out of range", cfg.AI.MaxTokens)
	}
	if cfg.AI.Temperature != 0.7 {
		t.Errorf("AI.Temperature = %v, want 0.7", cfg.AI.Temperature)
	}
	if cfg.Import.Grouping != "merge-same-style" {
		t.Errorf("Import.Grouping = %q", cfg.Import.Grouping)
	}
	// must survive template processing untouched
	if !strings.Contains(cfg.Import.AIPromptTemplate, "{{ .Title }}") {
		t.Errorf("AIPromptTemplate was expanded: %q", cfg.Import.AIPromptTemplate)
	}
	if cfg.Storage.Path == "" {
		t.Error("Storage.Path should have default value")
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  fix_zip: true
  output_name_template: "{{ .Name }}-{{ .Date }}"
  images:
    jpeq_quality_level: 70
    fetch_remote: false
import:
  grouping: until-next
  heading_pattern: "^第.+[章节]"
ai:
  model: qwen-plus
  max_tokens: 1000
logging:
  console:
    level: debug
  file:
    level: debug
    destination: ` + filepath.Join(tmpDir, "test.log") + `
    mode: append
storage:
  path: ` + filepath.Join(tmpDir, "lib", "templates.db") + `
reporting:
  destination: ` + filepath.Join(tmpDir, "report.zip") + `
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if !cfg.Document.FixZip {
		t.Error("Expected FixZip to be true")
	}
	if cfg.Document.OutputNameTemplate != "{{ .Name }}-{{ .Date }}" {
		t.Errorf("OutputNameTemplate = %q", cfg.Document.OutputNameTemplate)
	}
	if cfg.Document.Images.JPEGQuality != 70 {
		t.Errorf("JPEGQuality = %d, want 70", cfg.Document.Images.JPEGQuality)
	}
	if cfg.Document.Images.FetchRemote {
		t.Error("Expected FetchRemote to be false")
	}
	// untouched values keep defaults
	if cfg.Document.Images.DefaultWidth != 200 {
		t.Errorf("DefaultWidth = %v, want 200", cfg.Document.Images.DefaultWidth)
	}
	if cfg.Import.Grouping != "until-next" || cfg.Import.HeadingPattern != "^第.+[章节]" {
		t.Errorf("Import = %+v", cfg.Import)
	}
	if cfg.AI.Model != "qwen-plus" || cfg.AI.MaxTokens != 1000 {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("FileLogger.Mode = %q", cfg.Logging.FileLogger.Mode)
	}
	// sanitizer must create directory for the library file
	if _, err := os.Stat(filepath.Join(tmpDir, "lib")); err != nil {
		t.Errorf("storage directory was not created: %v", err)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ndocument:\n  fix_zip: true\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"bad version", "version: 2\n"},
		{"bad grouping", "version: 1\nimport:\n  grouping: everything\n"},
		{"max tokens out of range", "version: 1\nai:\n  max_tokens: 100000\n"},
		{"jpeg quality out of range", "version: 1\ndocument:\n  images:\n    jpeq_quality_level: 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump_HidesSecrets(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.AI.APIKey = "sk-very-secret"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if strings.Contains(string(data), "sk-very-secret") {
		t.Error("Dump() leaked api key")
	}
	if !strings.Contains(string(data), SecretStringValue) {
		t.Error("Dump() should contain secret placeholder")
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.AI.Timeout != cfg.AI.Timeout {
		t.Errorf("Timeout mismatch after dump/load: got %v, want %v", cfg2.AI.Timeout, cfg.AI.Timeout)
	}
}
