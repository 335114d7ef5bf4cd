package config

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "报告模板", "报告模板"},
		{"spaces trimmed", "  周报  ", "周报"},
		{"empty", "", "_bad_file_name_"},
		{"only separators", "/", "_bad_file_name_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateName(t *testing.T) {
	long := strings.Repeat("模", 200) // 600 bytes
	got := truncateName(long)
	if len(got) > maxNameBytes {
		t.Errorf("len = %d, want <= %d", len(got), maxNameBytes)
	}
	if !utf8.ValidString(got) {
		t.Error("truncated name is not valid UTF-8")
	}
	if truncateName("short") != "short" {
		t.Error("short names must not change")
	}
}
