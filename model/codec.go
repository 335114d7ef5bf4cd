package model

import (
	"encoding/json"
	"fmt"
)

// Decode parses template JSON. Format fields missing from input keep their
// defaults so decoded template always has fully populated format.
func Decode(data []byte) (*Template, error) {
	t := &Template{Format: DefaultFormat()}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("unable to decode template: %w", err)
	}
	if t.Content == nil {
		t.Content = []*Block{}
	}
	for i, b := range t.Content {
		if b == nil {
			return nil, fmt.Errorf("unable to decode template: block %d is null", i)
		}
	}
	return t, nil
}

// Encode produces indented template JSON.
func Encode(t *Template) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unable to encode template: %w", err)
	}
	return data, nil
}

// Clone returns deep copy of the template.
func (t *Template) Clone() (*Template, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("unable to clone template: %w", err)
	}
	return Decode(data)
}
