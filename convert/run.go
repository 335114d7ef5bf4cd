// Package convert implements program commands: template export to Word
// and HTML, Word import, AI generation and library maintenance.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wtpl/docx"
	"wtpl/editor"
	"wtpl/model"
	"wtpl/preview"
	"wtpl/state"
)

// Export converts template to Word document.
func Export(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")
	env.Overwrite = cmd.Bool("overwrite")

	src, dst, err := arguments(cmd, log)
	if err != nil {
		return err
	}
	t, from, err := loadTemplate(ctx, src, env, log)
	if err != nil {
		return err
	}
	warnInvalid(t, log)

	out := buildOutputPath(t, src, dst, ".docx", env)
	if err := checkDestination(out, env.Overwrite); err != nil {
		return err
	}

	log.Info("Processing starting", zap.Stringer("source", from), zap.String("destination", out))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	cfg := env.Cfg.Document
	opts := docx.Options{
		Config: &cfg,
		Images: docx.NewImageLoader(&cfg.Images, nil, log),
	}
	doc, err := docx.Build(ctx, t, opts, log)
	if err != nil {
		return fmt.Errorf("unable to build document: %w", err)
	}
	if env.Rpt != nil {
		if data, err := docx.DocumentXML(doc).WriteToBytes(); err == nil {
			env.Rpt.StoreData("document.xml", data)
		}
		env.Rpt.StoreData("document.txt", []byte(doc.String()))
	}
	return docx.WriteFile(ctx, doc, out, cfg.FixZip, log)
}

// Preview renders template as standalone HTML page.
func Preview(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("preview")
	env.Overwrite = cmd.Bool("overwrite")

	src, dst, err := arguments(cmd, log)
	if err != nil {
		return err
	}
	t, _, err := loadTemplate(ctx, src, env, log)
	if err != nil {
		return err
	}

	session := editor.NewSession(log)
	restoreSession(ctx, session, env, log)
	session.SetTemplate(t)
	session.SetPreviewMode(true)
	if cmd.IsSet("width") {
		session.SetPreviewWidth(int(cmd.Int("width")))
		persistSession(ctx, session, env, log)
	}

	data, err := preview.Render(session.Template, preview.Options{Width: session.PreviewWidth}, log)
	if err != nil {
		return fmt.Errorf("unable to render preview: %w", err)
	}

	out := buildOutputPath(t, src, dst, ".html", env)
	if err := checkDestination(out, env.Overwrite); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("unable to write preview: %w", err)
	}
	if env.Rpt != nil {
		env.Rpt.Store("preview.html", out)
	}
	log.Info("Preview written", zap.String("file", out), zap.Int("width", session.PreviewWidth))
	return nil
}

func warnInvalid(t *model.Template, log *zap.Logger) {
	if v := model.ValidateTemplate(t); !v.IsValid {
		log.Warn("Template has problems", zap.Strings("errors", v.Errors))
	}
}

// restoreSession loads persisted editor state, missing library is not an
// error.
func restoreSession(ctx context.Context, s *editor.Session, env *state.LocalEnv, log *zap.Logger) {
	lib, err := openLibrary(ctx, env, log)
	if err != nil {
		log.Debug("Editor state not restored", zap.Error(err))
		return
	}
	defer lib.Close()

	var p editor.Persisted
	if ok, err := lib.LoadSettings(ctx, editor.PersistKey, &p); err != nil {
		log.Warn("Unable to load editor state", zap.Error(err))
	} else if ok {
		s.Restore(p)
	}
}

func persistSession(ctx context.Context, s *editor.Session, env *state.LocalEnv, log *zap.Logger) {
	lib, err := openLibrary(ctx, env, log)
	if err != nil {
		log.Debug("Editor state not saved", zap.Error(err))
		return
	}
	defer lib.Close()
	if err := lib.SaveSettings(ctx, editor.PersistKey, s.Snapshot()); err != nil {
		log.Warn("Unable to save editor state", zap.Error(err))
	}
}
