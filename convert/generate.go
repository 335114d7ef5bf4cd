package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wtpl/aigen"
	"wtpl/state"
)

// Generate fills ai-generated blocks of template. Result goes to
// DESTINATION when given, otherwise back to the source.
func Generate(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("generate")
	env.Overwrite = cmd.Bool("overwrite")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	t, from, err := loadTemplate(ctx, src, env, log)
	if err != nil {
		return err
	}

	cfg := env.Cfg.AI
	results, err := aigen.FillTemplate(ctx, t, aigen.NewClient(&cfg, log), aigen.Options{
		SystemPrompt: cfg.SystemPrompt,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Only:         cmd.StringSlice("block"),
	}, log)
	if err != nil {
		return err
	}
	failed := aigen.Errors(results)
	if failed != nil {
		log.Warn("Some blocks were not generated", zap.Error(failed))
	}
	log.Info("Generation completed", zap.Int("blocks", len(results)))

	if dst := cmd.Args().Get(1); dst != "" {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
		if err := writeTemplate(t, buildOutputPath(t, src, dst, ".json", env), env.Overwrite, log); err != nil {
			return err
		}
	} else if err := storeTemplate(ctx, t, from, env, log); err != nil {
		return fmt.Errorf("unable to store template: %w", err)
	}

	if failed != nil && allFailed(results) {
		return errors.New("no block content was generated")
	}
	return nil
}

func allFailed(results []aigen.Result) bool {
	for _, r := range results {
		if r.Err == nil {
			return false
		}
	}
	return true
}
