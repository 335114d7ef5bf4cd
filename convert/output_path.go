package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"wtpl/config"
	"wtpl/model"
	"wtpl/state"
)

// buildOutputPath returns constructed output file path/name. When dst
// already names a file with requested extension it is used as is, otherwise
// dst is a directory and file name comes either from default naming scheme
// or user-defined template. Path is cleaned up and if requested
// transliterated.
func buildOutputPath(t *model.Template, src, dst, ext string, env *state.LocalEnv) string {
	if strings.EqualFold(filepath.Ext(dst), ext) {
		return dst
	}
	defaultFile := buildDefaultFileName(t, src, env) + ext

	if env.Cfg.Document.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}

	expandedName := expandOutputNameTemplate(t, src, ext, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(dst, defaultFile)
	}

	return assemblePathWithSubdirs(dst, expandedName, ext, env)
}

// buildDefaultFileName uses template name, source base name when template
// has none.
func buildDefaultFileName(t *model.Template, src string, env *state.LocalEnv) string {
	baseName := strings.TrimSpace(t.Name)
	if baseName == "" {
		baseName = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	if env.Cfg.Document.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName)
}

func expandOutputNameTemplate(t *model.Template, src, ext string, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(t, src, config.OutputNameTemplateFieldName, env.Cfg.Document.OutputNameTemplate, strings.TrimPrefix(ext, "."))
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName, outExt string, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)

	if len(pathSegments) == 0 {
		return outDir
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + outExt
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}

	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
