package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wtpl/importer"
	"wtpl/state"
)

// Import builds template from Word document, result is written as JSON or
// saved to library.
func Import(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("import")
	env.Overwrite = cmd.Bool("overwrite")

	src, dst, err := arguments(cmd, log)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read document: %w", err)
	}

	cfg := env.Cfg.Import
	if cmd.IsSet("grouping") {
		cfg.Grouping = cmd.String("grouping")
	}
	if cmd.IsSet("no-ai") {
		cfg.AutoConvertToAI = !cmd.Bool("no-ai")
	}

	name := cmd.String("name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	t, err := importer.Import(ctx, data, name, &cfg, log)
	if err != nil {
		return fmt.Errorf("unable to import '%s': %w", src, err)
	}
	warnInvalid(t, log)

	if cmd.Bool("save") {
		lib, err := openLibrary(ctx, env, log)
		if err != nil {
			return err
		}
		defer lib.Close()
		saved, err := lib.Save(ctx, t)
		if err != nil {
			return fmt.Errorf("unable to save template: %w", err)
		}
		log.Info("Template saved to library", zap.String("id", saved.ID), zap.String("name", saved.Name))
		return nil
	}
	return writeTemplate(t, buildOutputPath(t, src, dst, ".json", env), env.Overwrite, log)
}
