// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wtpl/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by export, preview and import subcommands
	Overwrite bool
	// used by library subcommands and when template source is a library id
	LibraryPath string

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Library returns location of template library, command line takes
// precedence over configuration.
func (e *LocalEnv) Library() string {
	if len(e.LibraryPath) > 0 {
		return e.LibraryPath
	}
	if e.Cfg != nil {
		return e.Cfg.Storage.Path
	}
	return ""
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
