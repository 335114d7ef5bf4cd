package editor

import "wtpl/model"

// PersistKey names persisted session state in template library.
const PersistKey = "editor-ai-settings-storage"

// Persisted is part of session state which survives between sessions.
type Persisted struct {
	AISettings   *model.AISettings `json:"aiSettings"`
	PreviewWidth int               `json:"previewWidth"`
}

// Snapshot returns copy of persisted state.
func (s *Session) Snapshot() Persisted {
	return Persisted{
		AISettings:   s.AISettings.Clone(),
		PreviewWidth: s.PreviewWidth,
	}
}

// Restore applies previously saved state, missing values keep defaults.
func (s *Session) Restore(p Persisted) {
	if p.AISettings != nil {
		s.AISettings = p.AISettings.Clone()
	}
	if p.PreviewWidth > 0 {
		s.PreviewWidth = p.PreviewWidth
	}
}
