package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"wtpl/config"
	"wtpl/model"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context     string
	Name        string
	ID          string
	Description string
	Blocks      int
	AIBlocks    int
	Date        string
	Format      string
	SourceFile  string
}

func countBlocks(t *model.Template, bt model.BlockType) int {
	n := 0
	for _, b := range t.Content {
		if b.Type == bt {
			n++
		}
	}
	return n
}

func expandTemplate(t *model.Template, src string, name config.TemplateFieldName, field, format string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:     string(name),
		Name:        t.Name,
		ID:          t.ID,
		Description: t.Description,
		Blocks:      len(t.Content),
		AIBlocks:    countBlocks(t, model.BlockAI),
		Format:      format,
		SourceFile:  strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
	}
	if !t.UpdatedAt.IsZero() {
		values.Date = t.UpdatedAt.Format("2006-01-02")
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
