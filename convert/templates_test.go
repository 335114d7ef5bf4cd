package convert

import (
	"testing"

	"wtpl/config"
)

func TestExpandTemplate(t *testing.T) {
	tpl := setupTestTemplateForPath()
	tests := []struct {
		name    string
		field   string
		want    string
		wantErr bool
	}{
		{"name", "{{ .Name }}", "年度 报告", false},
		{"counts", "{{ .Blocks }}/{{ .AIBlocks }}", "2/1", false},
		{"context", "{{ .Context }}", string(config.OutputNameTemplateFieldName), false},
		{"date", "{{ .Date }}", "2024-03-05", false},
		{"source", "{{ .SourceFile }}.{{ .Format }}", "report.docx", false},
		{"sprig", `{{ .Name | replace " " "_" }}`, "年度_报告", false},
		{"parse error", "{{ .Name", "", true},
		{"exec error", "{{ .Name.Missing }}", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(tpl, "dir/report.json", config.OutputNameTemplateFieldName, tt.field, "docx")
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandTemplate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}
