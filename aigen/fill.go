package aigen

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/russross/blackfriday/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wtpl/model"
)

var reference = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Result is outcome of generation for a single block.
type Result struct {
	BlockID string
	Title   string
	Err     error
}

// Options for FillTemplate.
type Options struct {
	// used when block has no AI settings of its own
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	// limits generation to listed blocks, empty means all
	Only []string
}

// ResolveReferences replaces {{blockId}} in prompt with content of the
// referenced text block. Unknown references are left as is.
func ResolveReferences(prompt string, t *model.Template) string {
	return reference.ReplaceAllStringFunc(prompt, func(ref string) string {
		id := reference.FindStringSubmatch(ref)[1]
		if b := t.Block(strings.TrimSpace(id)); b != nil {
			if text, ok := b.Text(); ok {
				return text
			}
		}
		return ref
	})
}

// Context joins content of text blocks placed before position.
func Context(t *model.Template, position int) string {
	var parts []string
	for _, b := range t.SortedBlocks() {
		if b.Position >= position {
			break
		}
		if text, ok := b.Text(); ok && text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// Messages builds conversation for AI block.
func Messages(b *model.Block, t *model.Template, systemPrompt string) []*schema.Message {
	if b.AISettings != nil && b.AISettings.SystemPrompt != "" {
		systemPrompt = b.AISettings.SystemPrompt
	}
	if systemPrompt == "" {
		systemPrompt = model.DefaultSystemPrompt
	}
	msgs := []*schema.Message{schema.SystemMessage(systemPrompt)}
	if ctx := Context(t, b.Position); ctx != "" {
		msgs = append(msgs, schema.SystemMessage("参考上下文："+ctx))
	}
	return append(msgs, schema.UserMessage(ResolveReferences(b.AIPrompt, t)))
}

// MarkdownToHTML converts generated markdown into block HTML.
func MarkdownToHTML(md string) string {
	out := blackfriday.Run([]byte(md), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return strings.TrimSpace(string(out))
}

// FillTemplate generates content of ai-generated blocks in position order.
// Failure of a block does not stop processing, it is recorded in results.
// Blocks generated earlier become reference context of later ones. Only
// context cancellation makes it return an error.
func FillTemplate(ctx context.Context, t *model.Template, gen Generator, opts Options, log *zap.Logger) ([]Result, error) {
	only := make(map[string]bool, len(opts.Only))
	for _, id := range opts.Only {
		only[id] = true
	}

	var results []Result
	for _, b := range t.SortedBlocks() {
		if b.Type != model.BlockAI || (len(only) > 0 && !only[b.ID]) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := Result{BlockID: b.ID, Title: b.Title}
		res.Err = fill(ctx, b, t, gen, opts)
		if res.Err != nil {
			log.Warn("Unable to generate block content", zap.String("id", b.ID), zap.String("title", b.Title), zap.Error(res.Err))
		} else {
			log.Info("Block content generated", zap.String("id", b.ID), zap.String("title", b.Title))
		}
		results = append(results, res)
	}
	return results, nil
}

func fill(ctx context.Context, b *model.Block, t *model.Template, gen Generator, opts Options) error {
	if strings.TrimSpace(b.AIPrompt) == "" {
		return errors.New("block has no prompt")
	}
	req, err := RequestFor(b.AISettings)
	if err != nil {
		return err
	}
	req.Messages = Messages(b, t, opts.SystemPrompt)
	req.Temperature = opts.Temperature
	req.MaxTokens = opts.MaxTokens

	resp := gen.Generate(ctx, req)
	if !resp.Success {
		if resp.Error == "" {
			resp.Error = "generation failed"
		}
		return errors.New(resp.Error)
	}
	b.Content = model.TextContent(MarkdownToHTML(resp.Content))
	return nil
}

// Errors combines errors of failed blocks.
func Errors(results []Result) error {
	var err error
	for _, r := range results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("block %s (%s): %w", r.BlockID, r.Title, r.Err))
		}
	}
	return err
}
