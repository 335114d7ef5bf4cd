package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wtpl/editor"
	"wtpl/model"
	"wtpl/state"
)

// withSession loads template named by first argument into editor session,
// runs fn and stores template back.
func withSession(name string, fn func(s *editor.Session, cmd *cli.Command) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		env := state.EnvFromContext(ctx)
		log := env.Log.Named("edit").With(zap.String("command", name))

		src := cmd.Args().Get(0)
		if src == "" {
			return errors.New("no input source has been specified")
		}
		t, from, err := loadTemplate(ctx, src, env, log)
		if err != nil {
			return err
		}
		s := editor.NewSession(log)
		restoreSession(ctx, s, env, log)
		s.SetTemplate(t)

		if err := fn(s, cmd); err != nil {
			return err
		}
		warnInvalid(s.Template, log)
		if err := storeTemplate(ctx, s.Template, from, env, log); err != nil {
			return fmt.Errorf("unable to store template: %w", err)
		}
		log.Info("Template updated", zap.Stringer("source", from), zap.Int("blocks", len(s.Template.Content)))
		return nil
	}
}

func intArg(cmd *cli.Command, n int, what string) (int, error) {
	v, err := strconv.Atoi(cmd.Args().Get(n))
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", what, err)
	}
	return v, nil
}

func addBlock(s *editor.Session, cmd *cli.Command) error {
	bt := model.BlockType(cmd.Args().Get(1))
	if !bt.Valid() {
		return fmt.Errorf("unknown block type %q", bt)
	}
	b := model.NewBlock(bt, 0)
	if v := cmd.String("title"); v != "" {
		b.Title = v
	}
	if v := cmd.String("content"); v != "" {
		switch bt {
		case model.BlockText, model.BlockAI:
			b.Content = model.TextContent(v)
		default:
			return fmt.Errorf("content can only be set for text blocks, not %s", bt)
		}
	}
	if v := cmd.String("prompt"); v != "" {
		b.AIPrompt = v
	}
	var at *int
	if cmd.IsSet("at") {
		at = model.Ptr(int(cmd.Int("at")))
	}
	if err := s.Add(b, at); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, b.ID)
	return nil
}

func updateBlock(s *editor.Session, cmd *cli.Command) error {
	id := cmd.Args().Get(1)
	if s.Template.Block(id) == nil {
		return fmt.Errorf("block %q not found", id)
	}
	var u editor.BlockUpdate
	if cmd.IsSet("title") {
		u.Title = model.Ptr(cmd.String("title"))
	}
	if cmd.IsSet("content") {
		u.Content = model.TextContent(cmd.String("content"))
	}
	if cmd.IsSet("prompt") {
		u.AIPrompt = model.Ptr(cmd.String("prompt"))
	}
	return s.Update(id, u)
}

func removeBlock(s *editor.Session, cmd *cli.Command) error {
	id := cmd.Args().Get(1)
	if s.Template.Block(id) == nil {
		return fmt.Errorf("block %q not found", id)
	}
	s.Remove(id)
	return nil
}

func moveBlock(s *editor.Session, cmd *cli.Command) error {
	from, err := intArg(cmd, 1, "source index")
	if err != nil {
		return err
	}
	to, err := intArg(cmd, 2, "target index")
	if err != nil {
		return err
	}
	s.Reorder(from, to)
	return nil
}

func updateFormat(s *editor.Session, cmd *cli.Command) error {
	var u editor.FormatUpdate
	font := &model.FontOverride{}
	if cmd.IsSet("font-family") {
		font.Family = model.Ptr(cmd.String("font-family"))
	}
	if cmd.IsSet("font-size") {
		font.Size = model.Ptr(cmd.Float("font-size"))
	}
	if cmd.IsSet("color") {
		font.Color = model.Ptr(cmd.String("color"))
	}
	if *font != (model.FontOverride{}) {
		u.Font = font
	}
	if cmd.IsSet("line-height") {
		u.Paragraph = &model.ParagraphOverride{LineHeight: model.Ptr(cmd.Float("line-height"))}
	}
	page := &editor.PageUpdate{}
	if cmd.IsSet("orientation") {
		o := model.Orientation(cmd.String("orientation"))
		if o != model.Portrait && o != model.Landscape {
			return fmt.Errorf("unknown orientation %q", o)
		}
		page.Orientation = &o
	}
	if cmd.IsSet("margin") {
		m := cmd.Float("margin")
		page.Margins = &editor.MarginsUpdate{Top: &m, Bottom: &m, Left: &m, Right: &m}
	}
	if *page != (editor.PageUpdate{}) {
		u.Page = page
	}
	s.UpdateFormat(u)
	return nil
}

// EditCommands returns subcommands of "edit".
func EditCommands() []*cli.Command {
	textFlags := []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "block `TITLE`"},
		&cli.StringFlag{Name: "content", Usage: "block `HTML` content (text blocks only)"},
		&cli.StringFlag{Name: "prompt", Usage: "AI generation `PROMPT`"},
	}
	return []*cli.Command{
		{
			Name:      "add",
			Usage:     "Adds block of given type",
			ArgsUsage: "SOURCE TYPE",
			Flags: append([]cli.Flag{
				&cli.IntFlag{Name: "at", Usage: "insert at `POSITION` instead of appending"},
			}, textFlags...),
			Action: withSession("add", addBlock),
		},
		{
			Name:      "update",
			Usage:     "Changes title, content or prompt of a block",
			ArgsUsage: "SOURCE ID",
			Flags:     textFlags,
			Action:    withSession("update", updateBlock),
		},
		{
			Name:      "remove",
			Usage:     "Removes block",
			ArgsUsage: "SOURCE ID",
			Action:    withSession("remove", removeBlock),
		},
		{
			Name:      "move",
			Usage:     "Moves block from one index to another",
			ArgsUsage: "SOURCE FROM TO",
			Action:    withSession("move", moveBlock),
		},
		{
			Name:      "format",
			Usage:     "Changes document format",
			ArgsUsage: "SOURCE",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "font-family", Usage: "document font `NAME`"},
				&cli.FloatFlag{Name: "font-size", Usage: "document font `SIZE` in points"},
				&cli.StringFlag{Name: "color", Usage: "text `COLOR` (#rrggbb)"},
				&cli.FloatFlag{Name: "line-height", Usage: "line height `MULTIPLE`"},
				&cli.StringFlag{Name: "orientation", Usage: "page `ORIENTATION` (portrait, landscape)"},
				&cli.FloatFlag{Name: "margin", Usage: "all page margins in `POINTS`"},
			},
			Action: withSession("format", updateFormat),
		},
	}
}

// Settings shows and changes persisted editor state: default AI settings
// and preview width.
func Settings(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("settings")
	if env.Library() == "" {
		return errors.New("template library location is not configured")
	}

	s := editor.NewSession(log)
	restoreSession(ctx, s, env, log)

	var (
		u       editor.AISettingsUpdate
		changed bool
	)
	str := func(name string) *string {
		if !cmd.IsSet(name) {
			return nil
		}
		changed = true
		return model.Ptr(cmd.String(name))
	}
	if p := str("provider"); p != nil {
		provider := model.Provider(*p)
		if provider != model.ProviderQianwen && provider != model.ProviderMaxKB {
			return fmt.Errorf("unknown provider %q", provider)
		}
		u.Provider = &provider
	}
	u.MaxKBBaseURL = str("maxkb-url")
	u.MaxKBAPIKey = str("maxkb-key")
	u.MaxKBModel = str("maxkb-model")
	u.SystemPrompt = str("system-prompt")
	s.SetAISettings(u)
	if cmd.IsSet("width") {
		s.SetPreviewWidth(int(cmd.Int("width")))
		changed = true
	}
	if changed {
		persistSession(ctx, s, env, log)
	}

	snap := s.Snapshot()
	if snap.AISettings != nil && snap.AISettings.MaxKBAPIKey != "" {
		// we do not want any of your secrets!
		snap.AISettings.MaxKBAPIKey = "***"
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
