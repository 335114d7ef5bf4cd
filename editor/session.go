// Package editor keeps state of a template editing session: the template
// being edited, UI expansion state and session wide AI defaults. All
// mutations are synchronous and applied in call order.
package editor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"wtpl/model"
)

// DefaultPreviewWidth is width of preview panel in pixels.
const DefaultPreviewWidth = 500

// ErrNoTemplate is returned by mutations when session has no template.
var ErrNoTemplate = errors.New("no template in session")

// Session is explicit editor state. Fields are safe to read, use methods
// to change them. Zero value is usable, NewSession adds defaults and
// logging.
type Session struct {
	Template       *model.Template
	ExpandedBlocks map[string]bool
	SelectedBlock  string
	PreviewMode    bool
	// session default for newly added AI blocks
	AISettings   *model.AISettings
	PreviewWidth int

	log *zap.Logger
}

// NewSession returns empty session with default settings.
func NewSession(log *zap.Logger) *Session {
	return &Session{
		ExpandedBlocks: map[string]bool{},
		AISettings:     model.DefaultAISettings(),
		PreviewWidth:   DefaultPreviewWidth,
		log:            log.Named("editor"),
	}
}

// SetTemplate makes t current. Saved expansion state is restored when
// template has one, otherwise blocks of new (never saved) templates are
// expanded and blocks of saved templates are collapsed.
func (s *Session) SetTemplate(t *model.Template) {
	s.Template = t
	switch {
	case t == nil:
	case t.ExpandedBlocks != nil:
		s.ExpandedBlocks = make(map[string]bool, len(t.ExpandedBlocks))
		for id, v := range t.ExpandedBlocks {
			s.ExpandedBlocks[id] = v
		}
	case len(t.Content) > 0:
		isNew := model.IsShortID(t.ID)
		s.ExpandedBlocks = make(map[string]bool, len(t.Content))
		for _, b := range t.Content {
			s.ExpandedBlocks[b.ID] = isNew
		}
	}
}

func (s *Session) SetSelectedBlock(id string) {
	s.SelectedBlock = id
}

func (s *Session) SetPreviewMode(on bool) {
	s.PreviewMode = on
}

func (s *Session) SetPreviewWidth(width int) {
	s.PreviewWidth = width
}

func (s *Session) SetBlockExpanded(id string, expanded bool) {
	if s.ExpandedBlocks == nil {
		s.ExpandedBlocks = map[string]bool{}
	}
	s.ExpandedBlocks[id] = expanded
}

// ToggleAll collapses every block when all of them are expanded and
// expands every block otherwise.
func (s *Session) ToggleAll() {
	if s.Template == nil {
		return
	}
	all := true
	for _, b := range s.Template.Content {
		if !s.ExpandedBlocks[b.ID] {
			all = false
			break
		}
	}
	s.ExpandedBlocks = make(map[string]bool, len(s.Template.Content))
	for _, b := range s.Template.Content {
		s.ExpandedBlocks[b.ID] = !all
	}
}

// AISettingsUpdate changes some fields of session AI defaults.
type AISettingsUpdate struct {
	Provider     *model.Provider
	MaxKBBaseURL *string
	MaxKBAPIKey  *string
	MaxKBModel   *string
	SystemPrompt *string
}

func (s *Session) SetAISettings(u AISettingsUpdate) {
	next := s.AISettings.Clone()
	if next == nil {
		next = model.DefaultAISettings()
	}
	if u.Provider != nil {
		next.Provider = *u.Provider
	}
	if u.MaxKBBaseURL != nil {
		next.MaxKBBaseURL = *u.MaxKBBaseURL
	}
	if u.MaxKBAPIKey != nil {
		next.MaxKBAPIKey = *u.MaxKBAPIKey
	}
	if u.MaxKBModel != nil {
		next.MaxKBModel = *u.MaxKBModel
	}
	if u.SystemPrompt != nil {
		next.SystemPrompt = *u.SystemPrompt
	}
	s.AISettings = next
}

// Reset drops current template and UI state. AI defaults and preview
// width survive.
func (s *Session) Reset() {
	s.Template = nil
	s.SelectedBlock = ""
	s.PreviewMode = false
	s.ExpandedBlocks = map[string]bool{}
}

// Add inserts block. With insertAt every block at or after that position
// moves one position down and block takes its place, otherwise block is
// appended. AI blocks always get their own copy of settings.
func (s *Session) Add(block *model.Block, insertAt *int) error {
	if s.Template == nil {
		return ErrNoTemplate
	}
	if !model.ContentMatches(block.Type, block.Content) {
		return fmt.Errorf("block %s of type %s: %w", block.ID, block.Type, model.ErrContentMismatch)
	}

	if block.Type == model.BlockAI {
		if block.AISettings != nil {
			block.AISettings = block.AISettings.Clone()
		} else {
			block.AISettings = s.AISettings.Clone()
		}
	}

	content := s.Template.Content
	if insertAt != nil {
		for _, b := range content {
			if b.Position >= *insertAt {
				b.Position++
			}
		}
		block.Position = *insertAt
	} else {
		block.Position = len(content)
	}
	content = append(content, block)
	model.SortByPosition(content)
	s.Template.Content = content
	s.SetBlockExpanded(block.ID, true)

	if s.log != nil {
		s.log.Debug("Block added", zap.String("id", block.ID), zap.String("type", string(block.Type)), zap.Int("position", block.Position))
	}
	return nil
}

// BlockUpdate changes some fields of a block. Content replacement must
// keep matching block type.
type BlockUpdate struct {
	Type       *model.BlockType
	Content    model.Content
	Format     *model.BlockFormat
	Position   *int
	Title      *string
	AIPrompt   *string
	AISettings *model.AISettings
}

// Update applies partial update to the block with given id. Unknown id is
// ignored. AI settings are copied, never shared with the caller.
func (s *Session) Update(id string, u BlockUpdate) error {
	if s.Template == nil {
		return ErrNoTemplate
	}
	b := s.Template.Block(id)
	if b == nil {
		return nil
	}

	typ, content := b.Type, b.Content
	if u.Type != nil {
		typ = *u.Type
	}
	if u.Content != nil {
		content = u.Content
	}
	if !model.ContentMatches(typ, content) {
		return fmt.Errorf("block %s of type %s: %w", id, typ, model.ErrContentMismatch)
	}
	b.Type, b.Content = typ, content

	if u.Format != nil {
		b.Format = *u.Format
	}
	if u.Position != nil {
		b.Position = *u.Position
	}
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.AIPrompt != nil {
		b.AIPrompt = *u.AIPrompt
	}
	if u.AISettings != nil {
		b.AISettings = u.AISettings.Clone()
	}
	return nil
}

// Remove deletes block and its expansion state.
func (s *Session) Remove(id string) {
	if s.Template == nil {
		return
	}
	content := s.Template.Content[:0]
	for _, b := range s.Template.Content {
		if b.ID != id {
			content = append(content, b)
		}
	}
	clear(s.Template.Content[len(content):])
	s.Template.Content = content
	delete(s.ExpandedBlocks, id)
}

// Reorder moves block at index from to index to and renumbers positions
// of all blocks to match their indexes.
func (s *Session) Reorder(from, to int) {
	if s.Template == nil {
		return
	}
	content := s.Template.Content
	if from < 0 || from >= len(content) || to < 0 || to >= len(content) {
		return
	}
	moved := content[from]
	content = append(content[:from], content[from+1:]...)
	content = append(content[:to], append([]*model.Block{moved}, content[to:]...)...)
	for i, b := range content {
		b.Position = i
	}
	s.Template.Content = content
}
