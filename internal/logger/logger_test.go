package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := parseLogLevel(tt.input); result != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("nonexistent.yaml")
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}

	if config.Level != "INFO" {
		t.Errorf("Default level = %q, want %q", config.Level, "INFO")
	}
	if !config.ConsoleEnabled {
		t.Error("Default ConsoleEnabled = false, want true")
	}
	if config.FileEnabled {
		t.Error("Default FileEnabled = true, want false")
	}
	if config.FilePath != "logs/roadgen.log" {
		t.Errorf("Default FilePath = %q, want %q", config.FilePath, "logs/roadgen.log")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	yamlContent := `logging:
  level: DEBUG
  console_format: json
  file_enabled: true
  file_path: test.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "DEBUG" {
		t.Errorf("Level = %q, want %q", config.Level, "DEBUG")
	}
	if !config.ConsoleEnabled {
		t.Error("ConsoleEnabled = false, want true when the key is absent")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want %q", config.ConsoleFormat, "json")
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true")
	}
	if config.FilePath != "test.log" {
		t.Errorf("FilePath = %q, want %q", config.FilePath, "test.log")
	}
	if config.FileMaxSizeMB != 20 {
		t.Errorf("FileMaxSizeMB = %d, want %d", config.FileMaxSizeMB, 20)
	}
	if config.FileMaxBackups != 5 {
		t.Errorf("FileMaxBackups = %d, want default %d", config.FileMaxBackups, 5)
	}
}

func TestEnvVarOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_CONSOLE_FORMAT", "json")
	t.Setenv("LOG_FILE_ENABLED", "true")
	t.Setenv("LOG_FILE_PATH", "/custom/path.log")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "ERROR" {
		t.Errorf("Level = %q, want %q (from env var)", config.Level, "ERROR")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want %q (from env var)", config.ConsoleFormat, "json")
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true (from env var)")
	}
	if config.FilePath != "/custom/path.log" {
		t.Errorf("FilePath = %q, want %q (from env var)", config.FilePath, "/custom/path.log")
	}
}

func TestSetOutputText(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", "INFO")

	Info("Test message", "key", "value")
	Debug("This should not appear")

	output := buf.String()
	if !strings.Contains(output, "Test message") {
		t.Errorf("Output missing INFO message: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Output missing structured field: %s", output)
	}
	if strings.Contains(output, "This should not appear") {
		t.Errorf("Output contains DEBUG message when level is INFO: %s", output)
	}
}

func TestSetOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "json", "INFO")

	Info("JSON test", "field1", "value1", "field2", 42)

	output := buf.String()
	if !strings.Contains(output, `"msg":"JSON test"`) {
		t.Errorf("Output missing JSON message field: %s", output)
	}
	if !strings.Contains(output, `"field2":42`) {
		t.Errorf("Output missing numeric JSON field: %s", output)
	}
}

func TestAlwaysBypassesLogLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", "ERROR")

	Info("Info message")
	Warning("Warning")
	Error("Error message")
	Always("Always message")

	output := buf.String()
	if strings.Contains(output, "Info message") || strings.Contains(output, "Warning") {
		t.Errorf("Messages below ERROR leaked: %s", output)
	}
	if !strings.Contains(output, "Error message") {
		t.Error("ERROR message missing from output")
	}
	if !strings.Contains(output, "level=ALWAYS") {
		t.Errorf("ALWAYS level not formatted correctly: %s", output)
	}
}

func TestFormattedLogging(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", "DEBUG")

	Debugf("Debug: %d + %d = %d", 1, 2, 3)
	Infof("Info: %s", "test")
	Warningf("Warning: %.2f%%", 99.95)
	Errorf("Error: %v", "failed")

	output := buf.String()
	for _, want := range []string{"Debug: 1 + 2 = 3", "Info: test", "Warning: 99.95%", "Error: failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestMultiHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer

	handler1 := slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler2 := slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger = slog.New(newMultiHandler(handler1, handler2)).With("run", "r1")

	Info("only first")
	Warning("both")

	if !strings.Contains(buf1.String(), "only first") || !strings.Contains(buf1.String(), "both") {
		t.Errorf("first handler output = %q", buf1.String())
	}
	if strings.Contains(buf2.String(), "only first") || !strings.Contains(buf2.String(), "both") {
		t.Errorf("second handler output = %q", buf2.String())
	}
	if !strings.Contains(buf2.String(), "run=r1") {
		t.Error("WithAttrs not propagated to second handler")
	}
}

func TestInitializeFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	cfg := DefaultConfig()
	cfg.ConsoleEnabled = false
	cfg.FileEnabled = true
	cfg.FilePath = path

	if err := Initialize(cfg); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	Info("to file", "n", 1)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing message: %s", data)
	}
}

func TestNilLogger(t *testing.T) {
	logger = nil

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logging with nil logger caused panic: %v", r)
		}
	}()

	Debug("debug")
	Info("info")
	Warning("warning")
	Error("error")
	Always("always")
	if Logger() == nil {
		t.Error("Logger() returned nil")
	}
}
