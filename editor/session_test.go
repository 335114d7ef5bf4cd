package editor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"wtpl/model"
)

func newSession(t *testing.T, n int) *Session {
	t.Helper()
	s := NewSession(zaptest.NewLogger(t))
	tpl := model.NewTemplate(time.Now())
	for i := range n {
		b := model.NewBlock(model.BlockText, i)
		b.ID = fmt.Sprintf("b%d", i)
		tpl.Content = append(tpl.Content, b)
	}
	s.SetTemplate(tpl)
	return s
}

func positions(s *Session) map[string]int {
	res := make(map[string]int)
	for _, b := range s.Template.Content {
		res[b.ID] = b.Position
	}
	return res
}

func ids(s *Session) []string {
	var res []string
	for _, b := range s.Template.Content {
		res = append(res, b.ID)
	}
	return res
}

func TestAdd_InsertPosition(t *testing.T) {
	s := newSession(t, 3)
	nb := model.NewBlock(model.BlockText, 0)
	nb.ID = "new"
	k := 1
	if err := s.Add(nb, &k); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	want := map[string]int{"b0": 0, "new": 1, "b1": 2, "b2": 3}
	got := positions(s)
	for id, p := range want {
		if got[id] != p {
			t.Errorf("position of %s = %d, want %d", id, got[id], p)
		}
	}
	seen := map[int]bool{}
	for _, b := range s.Template.Content {
		if seen[b.Position] {
			t.Errorf("duplicate position %d", b.Position)
		}
		seen[b.Position] = true
	}
	if fmt.Sprint(ids(s)) != "[b0 new b1 b2]" {
		t.Errorf("order = %v", ids(s))
	}
	if !s.ExpandedBlocks["new"] {
		t.Error("new block is not expanded")
	}
}

func TestAdd_Append(t *testing.T) {
	s := newSession(t, 3)
	// position of the new block does not matter, appended block goes last
	nb := model.NewBlock(model.BlockTable, 0)
	nb.ID = "tail"
	if err := s.Add(nb, nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if fmt.Sprint(ids(s)) != "[b0 b1 b2 tail]" {
		t.Errorf("order = %v", ids(s))
	}
	if got := positions(s); got["tail"] != 3 || got["b0"] != 0 {
		t.Errorf("positions = %v", got)
	}
}

func TestAdd_ZeroSession(t *testing.T) {
	s := &Session{Template: model.NewTemplate(time.Now())}
	for range 2 {
		if err := s.Add(model.NewBlock(model.BlockText, 0), nil); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if len(s.Template.Content) != 2 || s.Template.Content[1].Position != 1 {
		t.Errorf("unexpected content %v", positions(s))
	}
	if len(s.ExpandedBlocks) != 2 {
		t.Errorf("expanded = %v", s.ExpandedBlocks)
	}
}

func TestAdd_Errors(t *testing.T) {
	s := NewSession(zaptest.NewLogger(t))
	if err := s.Add(model.NewBlock(model.BlockText, 0), nil); !errors.Is(err, ErrNoTemplate) {
		t.Errorf("Add() without template error = %v", err)
	}

	s = newSession(t, 0)
	b := model.NewBlock(model.BlockText, 0)
	b.Content = model.ImageContent{}
	if err := s.Add(b, nil); !errors.Is(err, model.ErrContentMismatch) {
		t.Errorf("Add() mismatched error = %v", err)
	}
	if len(s.Template.Content) != 0 {
		t.Error("mismatched block added")
	}
}

func TestAdd_AISettingsCloned(t *testing.T) {
	s := newSession(t, 0)
	a := model.NewBlock(model.BlockAI, 0)
	b := model.NewBlock(model.BlockAI, 1)
	if err := s.Add(a, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(b, nil); err != nil {
		t.Fatal(err)
	}
	if a.AISettings == nil || a.AISettings == s.AISettings || a.AISettings == b.AISettings {
		t.Fatal("AI settings are shared")
	}
	if *a.AISettings != *s.AISettings {
		t.Errorf("AI settings = %+v, want session defaults", a.AISettings)
	}
	if !model.AISettingsIndependent(s.Template) {
		t.Error("template reports shared settings")
	}

	own := &model.AISettings{Provider: model.ProviderMaxKB, MaxKBModel: "m"}
	c := model.NewBlock(model.BlockAI, 2)
	c.AISettings = own
	if err := s.Add(c, nil); err != nil {
		t.Fatal(err)
	}
	if c.AISettings == own || c.AISettings.MaxKBModel != "m" {
		t.Error("own settings not cloned")
	}
}

func TestUpdate(t *testing.T) {
	s := newSession(t, 2)
	a := model.NewBlock(model.BlockAI, 2)
	b := model.NewBlock(model.BlockAI, 3)
	for _, blk := range []*model.Block{a, b} {
		if err := s.Add(blk, nil); err != nil {
			t.Fatal(err)
		}
	}

	shared := &model.AISettings{Provider: model.ProviderMaxKB, SystemPrompt: "p"}
	for _, id := range []string{a.ID, b.ID} {
		if err := s.Update(id, BlockUpdate{AISettings: shared}); err != nil {
			t.Fatal(err)
		}
	}
	if a.AISettings == b.AISettings || a.AISettings == shared {
		t.Error("update shares AI settings")
	}
	if *a.AISettings != *b.AISettings {
		t.Error("settings values differ")
	}

	if err := s.Update("b0", BlockUpdate{Title: model.Ptr("新标题"), Content: model.TextContent("<p>x</p>")}); err != nil {
		t.Fatal(err)
	}
	blk := s.Template.Block("b0")
	if blk.Title != "新标题" || blk.Content != model.TextContent("<p>x</p>") {
		t.Errorf("block = %+v", blk)
	}

	if err := s.Update("b0", BlockUpdate{Content: model.TwoColumnContent{}}); !errors.Is(err, model.ErrContentMismatch) {
		t.Errorf("Update() mismatched error = %v", err)
	}
	if err := s.Update("b0", BlockUpdate{Type: model.Ptr(model.BlockTwoColumn), Content: model.TwoColumnContent{Left: "l"}}); err != nil {
		t.Errorf("Update() with type change error = %v", err)
	}
	if err := s.Update("missing", BlockUpdate{Title: model.Ptr("x")}); err != nil {
		t.Errorf("Update() unknown id error = %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := newSession(t, 3)
	s.Remove("b1")
	if fmt.Sprint(ids(s)) != "[b0 b2]" {
		t.Errorf("order = %v", ids(s))
	}
	if _, ok := s.ExpandedBlocks["b1"]; ok {
		t.Error("expansion state kept")
	}
	s.Remove("missing")
	if len(s.Template.Content) != 2 {
		t.Error("unknown id removed something")
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 2, "[b1 b2 b0 b3]"},
		{3, 0, "[b3 b0 b1 b2]"},
		{1, 1, "[b0 b1 b2 b3]"},
		{5, 0, "[b0 b1 b2 b3]"},
		{-1, 0, "[b0 b1 b2 b3]"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%d", tt.from, tt.to), func(t *testing.T) {
			s := newSession(t, 4)
			s.Reorder(tt.from, tt.to)
			if got := fmt.Sprint(ids(s)); got != tt.want {
				t.Errorf("order = %s, want %s", got, tt.want)
			}
			for i, b := range s.Template.Content {
				if b.Position != i {
					t.Errorf("block %s position = %d, want %d", b.ID, b.Position, i)
				}
			}
		})
	}
}

func TestSetTemplate_Expansion(t *testing.T) {
	s := newSession(t, 2)
	if !s.ExpandedBlocks["b0"] || !s.ExpandedBlocks["b1"] {
		t.Error("blocks of new template are collapsed")
	}

	saved := model.NewTemplate(time.Now())
	saved.ID = "0b7f1e2a-3c4d-4e5f-8a9b-0c1d2e3f4a5b"
	saved.Content = []*model.Block{{ID: "x", Type: model.BlockText, Content: model.TextContent("")}}
	s.SetTemplate(saved)
	if s.ExpandedBlocks["x"] {
		t.Error("block of saved template is expanded")
	}

	saved.ExpandedBlocks = map[string]bool{"x": true}
	s.SetTemplate(saved)
	if !s.ExpandedBlocks["x"] {
		t.Error("saved expansion state not restored")
	}
	s.SetBlockExpanded("x", false)
	if !saved.ExpandedBlocks["x"] {
		t.Error("session shares expansion map with template")
	}
}

func TestToggleAll(t *testing.T) {
	s := newSession(t, 2)
	s.ToggleAll()
	if s.ExpandedBlocks["b0"] || s.ExpandedBlocks["b1"] {
		t.Error("blocks not collapsed")
	}
	s.SetBlockExpanded("b0", true)
	s.ToggleAll()
	if !s.ExpandedBlocks["b0"] || !s.ExpandedBlocks["b1"] {
		t.Error("blocks not expanded")
	}
}

func TestUpdateFormat(t *testing.T) {
	s := newSession(t, 0)
	s.UpdateFormat(FormatUpdate{
		Font: &model.FontOverride{Bold: model.Ptr(true)},
		Paragraph: &model.ParagraphOverride{
			Indent: &model.IndentOverride{FirstLine: model.Ptr(2.0)},
		},
		Page: &PageUpdate{
			Orientation: model.Ptr(model.Landscape),
			Margins:     &MarginsUpdate{Left: model.Ptr(36.0)},
		},
	})

	f := s.Template.Format
	def := model.DefaultFormat()
	if !f.Font.Bold || f.Font.Family != def.Font.Family || f.Font.Size != def.Font.Size {
		t.Errorf("font = %+v", f.Font)
	}
	if f.Paragraph.Indent.FirstLine != 2 || f.Paragraph.Indent.FirstLineUnit != def.Paragraph.Indent.FirstLineUnit {
		t.Errorf("indent = %+v", f.Paragraph.Indent)
	}
	if f.Paragraph.LineHeight != def.Paragraph.LineHeight {
		t.Errorf("line height = %v", f.Paragraph.LineHeight)
	}
	if f.Page.Orientation != model.Landscape || f.Page.Margins.Left != 36 || f.Page.Margins.Top != def.Page.Margins.Top {
		t.Errorf("page = %+v", f.Page)
	}
}

func TestAISettingsAndPersisted(t *testing.T) {
	s := newSession(t, 0)
	s.SetAISettings(AISettingsUpdate{Provider: model.Ptr(model.ProviderMaxKB), MaxKBAPIKey: model.Ptr("k")})
	if s.AISettings.Provider != model.ProviderMaxKB || s.AISettings.SystemPrompt != model.DefaultSystemPrompt {
		t.Errorf("settings = %+v", s.AISettings)
	}
	s.SetPreviewWidth(720)

	p := s.Snapshot()
	if p.AISettings == s.AISettings {
		t.Error("snapshot shares settings")
	}

	other := NewSession(zaptest.NewLogger(t))
	if other.PreviewWidth != DefaultPreviewWidth {
		t.Errorf("default width = %d", other.PreviewWidth)
	}
	other.Restore(p)
	if other.PreviewWidth != 720 || other.AISettings.MaxKBAPIKey != "k" {
		t.Errorf("restored = %+v %d", other.AISettings, other.PreviewWidth)
	}
	other.Restore(Persisted{})
	if other.PreviewWidth != 720 || other.AISettings == nil {
		t.Error("empty state overwrote values")
	}
}

func TestReset(t *testing.T) {
	s := newSession(t, 2)
	s.SetSelectedBlock("b0")
	s.SetPreviewMode(true)
	s.SetPreviewWidth(640)
	s.Reset()
	if s.Template != nil || s.SelectedBlock != "" || s.PreviewMode || len(s.ExpandedBlocks) != 0 {
		t.Errorf("session not reset: %+v", s)
	}
	if s.PreviewWidth != 640 {
		t.Error("preview width reset")
	}
	s.Remove("b0")
	s.Reorder(0, 1)
	s.ToggleAll()
	s.UpdateFormat(FormatUpdate{})
}
