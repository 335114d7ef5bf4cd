package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wtpl/model"
	"wtpl/state"
	"wtpl/storage"
)

// source is where template came from: either JSON file or library entry.
type source struct {
	path string // empty for library templates
	id   string
}

func (s source) String() string {
	if s.path != "" {
		return s.path
	}
	return "library:" + s.id
}

// arguments returns SOURCE and DESTINATION from command line, destination
// defaults to working directory.
func arguments(cmd *cli.Command, log *zap.Logger) (string, string, error) {
	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		var err error
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	dst, err := filepath.Abs(dst)
	if err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	return src, dst, nil
}

func openLibrary(ctx context.Context, env *state.LocalEnv, log *zap.Logger) (*storage.Library, error) {
	path := env.Library()
	if path == "" {
		return nil, errors.New("template library location is not configured")
	}
	return storage.Open(ctx, path, log)
}

// loadTemplate reads template from JSON file. When there is no such file
// src is treated as library id.
func loadTemplate(ctx context.Context, src string, env *state.LocalEnv, log *zap.Logger) (*model.Template, source, error) {
	if fi, err := os.Stat(src); err == nil && fi.Mode().IsRegular() {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, source{}, fmt.Errorf("unable to read template: %w", err)
		}
		t, err := model.Decode(data)
		if err != nil {
			return nil, source{}, fmt.Errorf("unable to decode template '%s': %w", src, err)
		}
		if err := env.Rpt.StoreCopy("source.json", src); err != nil {
			log.Debug("Source not stored in report", zap.Error(err))
		}
		log.Debug("Template loaded", zap.String("file", src), zap.Int("blocks", len(t.Content)))
		return t, source{path: src}, nil
	}

	lib, err := openLibrary(ctx, env, log)
	if err != nil {
		return nil, source{}, fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	defer lib.Close()

	t, err := lib.Get(ctx, src)
	if err != nil {
		return nil, source{}, fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if env.Rpt != nil {
		if data, err := model.Encode(t); err == nil {
			env.Rpt.StoreData("source.json", data)
		}
	}
	log.Debug("Template loaded", zap.String("id", src), zap.Int("blocks", len(t.Content)))
	return t, source{id: t.ID}, nil
}

// storeTemplate writes template back where it came from.
func storeTemplate(ctx context.Context, t *model.Template, src source, env *state.LocalEnv, log *zap.Logger) error {
	if src.path != "" {
		return writeTemplate(t, src.path, true, log)
	}
	lib, err := openLibrary(ctx, env, log)
	if err != nil {
		return err
	}
	defer lib.Close()
	_, err = lib.Save(ctx, t)
	return err
}

// writeTemplate saves template as JSON file.
func writeTemplate(t *model.Template, path string, overwrite bool, log *zap.Logger) error {
	if err := checkDestination(path, overwrite); err != nil {
		return err
	}
	data, err := model.Encode(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write template: %w", err)
	}
	log.Info("Template written", zap.String("file", path), zap.Int("blocks", len(t.Content)))
	return nil
}

func checkDestination(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("output file already exists: %s", path)
	}
	return nil
}
