package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wtpl/model"
	"wtpl/state"
	"wtpl/storage"
)

// withLibrary runs fn with opened library.
func withLibrary(name string, fn func(ctx context.Context, lib *storage.Library, cmd *cli.Command, log *zap.Logger) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		env := state.EnvFromContext(ctx)
		log := env.Log.Named("library")

		lib, err := openLibrary(ctx, env, log)
		if err != nil {
			return err
		}
		defer lib.Close()
		return fn(ctx, lib, cmd, log.With(zap.String("command", name)))
	}
}

func requireArg(cmd *cli.Command, what string) (string, error) {
	v := cmd.Args().Get(0)
	if v == "" {
		return "", fmt.Errorf("no %s has been specified", what)
	}
	return v, nil
}

// LibraryCommands returns subcommands of "library".
func LibraryCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "list",
			Usage: "Lists templates, most recently updated first",
			Action: withLibrary("list", func(ctx context.Context, lib *storage.Library, cmd *cli.Command, _ *zap.Logger) error {
				list, err := lib.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tBLOCKS\tUPDATED")
				for _, s := range list {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Blocks, s.UpdatedAt.Local().Format(time.DateTime))
				}
				return w.Flush()
			}),
		},
		{
			Name:      "save",
			Usage:     "Saves template file to library",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "new", Usage: "always create new entry with fresh identifier"},
			},
			Action: withLibrary("save", func(ctx context.Context, lib *storage.Library, cmd *cli.Command, log *zap.Logger) error {
				file, err := requireArg(cmd, "template file")
				if err != nil {
					return err
				}
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("unable to read template: %w", err)
				}
				var t *model.Template
				if cmd.Bool("new") {
					t, err = lib.Import(ctx, data)
				} else {
					if t, err = model.Decode(data); err == nil {
						t, err = lib.Save(ctx, t)
					}
				}
				if err != nil {
					return fmt.Errorf("unable to save template: %w", err)
				}
				log.Info("Template saved", zap.String("id", t.ID), zap.String("name", t.Name))
				fmt.Fprintln(os.Stdout, t.ID)
				return nil
			}),
		},
		{
			Name:      "get",
			Usage:     "Writes library template as JSON",
			ArgsUsage: "ID [DESTINATION]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite existing destination"},
			},
			Action: withLibrary("get", func(ctx context.Context, lib *storage.Library, cmd *cli.Command, log *zap.Logger) error {
				id, err := requireArg(cmd, "template id")
				if err != nil {
					return err
				}
				data, err := lib.Export(ctx, id)
				if err != nil {
					return err
				}
				dst := cmd.Args().Get(1)
				if dst == "" {
					_, err = os.Stdout.Write(data)
					return err
				}
				if err := checkDestination(dst, cmd.Bool("overwrite")); err != nil {
					return err
				}
				if err := os.WriteFile(dst, data, 0644); err != nil {
					return fmt.Errorf("unable to write template: %w", err)
				}
				log.Info("Template exported", zap.String("id", id), zap.String("file", dst))
				return nil
			}),
		},
		{
			Name:      "delete",
			Usage:     "Removes template from library",
			ArgsUsage: "ID",
			Action: withLibrary("delete", func(ctx context.Context, lib *storage.Library, cmd *cli.Command, log *zap.Logger) error {
				id, err := requireArg(cmd, "template id")
				if err != nil {
					return err
				}
				if err := lib.Delete(ctx, id); err != nil {
					if errors.Is(err, storage.ErrNotFound) {
						log.Warn("Nothing to delete", zap.String("id", id))
						return nil
					}
					return err
				}
				log.Info("Template deleted", zap.String("id", id))
				return nil
			}),
		},
		{
			Name:      "duplicate",
			Usage:     "Copies template under new identifier",
			ArgsUsage: "ID",
			Action: withLibrary("duplicate", func(ctx context.Context, lib *storage.Library, cmd *cli.Command, log *zap.Logger) error {
				id, err := requireArg(cmd, "template id")
				if err != nil {
					return err
				}
				dup, err := lib.Duplicate(ctx, id)
				if err != nil {
					return err
				}
				log.Info("Template duplicated", zap.String("id", dup.ID), zap.String("name", dup.Name))
				fmt.Fprintln(os.Stdout, dup.ID)
				return nil
			}),
		},
	}
}
