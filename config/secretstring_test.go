package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSecretString_Marshal(t *testing.T) {
	tests := []struct {
		name     string
		secret   SecretString
		wantJSON string
		wantYAML string
	}{
		{"empty", "", "null", "null\n"},
		{"short", "k", `"<secret>"`, "<secret>\n"},
		{"api key", "sk-1234567890abcdef", `"<secret>"`, "<secret>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.secret)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			if string(got) != tt.wantJSON {
				t.Errorf("json = %s, want %s", got, tt.wantJSON)
			}
			got, err = yaml.Marshal(tt.secret)
			if err != nil {
				t.Fatalf("yaml.Marshal() error = %v", err)
			}
			if string(got) != tt.wantYAML {
				t.Errorf("yaml = %q, want %q", got, tt.wantYAML)
			}
		})
	}
}

func TestSecretString_AIConfigNoLeakage(t *testing.T) {
	const key = "sk-very-secret-maxkb-key"
	cfg := AIConfig{BaseURL: "http://localhost:8080/v1", APIKey: key, Model: "qwen-plus"}

	j, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	y, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for name, out := range map[string]string{
		"json":   string(j),
		"yaml":   string(y),
		"fmt %v": fmt.Sprintf("%v", cfg.APIKey),
		"fmt %s": fmt.Sprintf("key=%s", cfg.APIKey),
	} {
		if strings.Contains(out, key) {
			t.Errorf("%s leaks api key: %s", name, out)
		}
		if !strings.Contains(out, SecretStringValue) {
			t.Errorf("%s has no placeholder: %s", name, out)
		}
	}
	if !strings.Contains(string(j), "qwen-plus") {
		t.Errorf("plain fields must stay visible: %s", j)
	}
	if cfg.APIKey.Reveal() != key {
		t.Errorf("Reveal() = %q", cfg.APIKey.Reveal())
	}
}

func TestSecretString_Unmarshal(t *testing.T) {
	var cfg AIConfig
	if err := yaml.Unmarshal([]byte("api_key: token-from-file\n"), &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if cfg.APIKey.Reveal() != "token-from-file" {
		t.Errorf("APIKey = %q", cfg.APIKey.Reveal())
	}
	if cfg.APIKey.String() != SecretStringValue || SecretString("").String() != "" {
		t.Error("String() must hide non empty values only")
	}
}
