package model

import (
	"fmt"
	"math"
	"strings"
)

// Validation is result of template validation, it never fails.
type Validation struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateTemplate collects user facing problems. Block numbers in messages
// are 1-based ordinals among blocks of the same type.
func ValidateTemplate(t *Template) Validation {
	errs := []string{}

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "模板名称不能为空")
	}
	if len(t.Content) == 0 {
		errs = append(errs, "模板至少需要包含一个内容块")
	}

	ai := 0
	for _, b := range t.Content {
		if b.Type != BlockAI {
			continue
		}
		ai++
		if strings.TrimSpace(b.AIPrompt) == "" {
			errs = append(errs, fmt.Sprintf("第%d个AI内容块缺少提示词", ai))
		}
	}

	img := 0
	for _, b := range t.Content {
		if b.Type != BlockImage {
			continue
		}
		img++
		c, ok := b.Content.(ImageContent)
		if !ok {
			continue
		}
		if c.Src == "" {
			errs = append(errs, fmt.Sprintf("第%d个图片块缺少图片源", img))
		}
		if outside(c.Width, 10, 1000) {
			errs = append(errs, fmt.Sprintf("第%d个图片块宽度应在10-1000之间", img))
		}
		if outside(c.Height, 10, 1000) {
			errs = append(errs, fmt.Sprintf("第%d个图片块高度应在10-1000之间", img))
		}
	}

	if size := t.Format.Font.Size; size < 8 || size > 72 {
		errs = append(errs, "字体大小应在8-72之间")
	}
	if lh := t.Format.Paragraph.LineHeight; lh < 0.5 || lh > 3 {
		errs = append(errs, "行间距应在0.5-3之间")
	}

	return Validation{IsValid: len(errs) == 0, Errors: errs}
}

// unset or zero values are not checked
func outside(v *float64, lo, hi float64) bool {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return false
	}
	return *v < lo || *v > hi
}

// AISettingsIndependent reports false when two AI blocks share the same
// settings object.
func AISettingsIndependent(t *Template) bool {
	seen := make(map[*AISettings]struct{})
	for _, b := range t.Content {
		if b.Type != BlockAI || b.AISettings == nil {
			continue
		}
		if _, ok := seen[b.AISettings]; ok {
			return false
		}
		seen[b.AISettings] = struct{}{}
	}
	return true
}
