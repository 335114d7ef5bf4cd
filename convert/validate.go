package convert

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wtpl/model"
	"wtpl/state"
)

var errInvalid = errors.New("template is not valid")

// Validate prints template problems, one per line.
func Validate(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("validate")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	t, from, err := loadTemplate(ctx, src, env, log)
	if err != nil {
		return err
	}

	v := model.ValidateTemplate(t)
	for _, e := range v.Errors {
		fmt.Fprintln(os.Stdout, e)
	}
	if !v.IsValid {
		log.Info("Validation failed", zap.Stringer("source", from), zap.Int("problems", len(v.Errors)))
		return errInvalid
	}
	log.Info("Template is valid", zap.Stringer("source", from))
	return nil
}
