package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"wtpl/config"
	"wtpl/model"
)

type RuleKind string

const (
	RuleHeading        RuleKind = "heading"
	RuleHeadingPattern RuleKind = "heading-pattern"
	RuleParagraph      RuleKind = "paragraph"
	RuleCustom         RuleKind = "custom"
)

// Rule recognizes elements which take part in grouping. Elements no rule
// recognizes become blocks of their own.
type Rule struct {
	Name string
	Kind RuleKind
	// heading: accepted levels, empty means any
	Levels []int
	// heading-pattern and custom
	Pattern     *regexp.Regexp
	Level       int
	RequireBold bool
	// paragraph: minimal text length in runes
	MinLength int
}

func (r *Rule) match(e *Element) bool {
	switch r.Kind {
	case RuleHeading:
		if e.Kind != KindHeading {
			return false
		}
		if len(r.Levels) == 0 {
			return true
		}
		for _, l := range r.Levels {
			if l == e.Level {
				return true
			}
		}
	case RuleHeadingPattern:
		return e.Kind == KindParagraph && r.Pattern != nil && r.Pattern.MatchString(e.Text) &&
			(!r.RequireBold || e.Style.Bold)
	case RuleParagraph:
		return e.Kind == KindParagraph && len([]rune(e.Text)) >= r.MinLength
	case RuleCustom:
		return r.Pattern != nil && r.Pattern.MatchString(e.Text)
	}
	return false
}

// DefaultRules builds recognition rules from import configuration.
func DefaultRules(cfg *config.ImportConfig) ([]Rule, error) {
	rules := []Rule{
		{Name: "标题", Kind: RuleHeading, Levels: []int{1, 2, 3, 4, 5, 6}},
		{Name: "段落", Kind: RuleParagraph, MinLength: 1},
	}
	if cfg.HeadingPattern != "" {
		re, err := regexp.Compile(cfg.HeadingPattern)
		if err != nil {
			return nil, fmt.Errorf("bad heading pattern: %w", err)
		}
		rules = append([]Rule{{
			Name:        "标题模式",
			Kind:        RuleHeadingPattern,
			Pattern:     re,
			Level:       min(max(cfg.HeadingLevel, 1), 6),
			RequireBold: cfg.RequireBold,
		}}, rules...)
	}
	return rules, nil
}

// Group is set of consecutive elements which becomes single block.
type Group struct {
	Elements  []*Element
	Title     string
	Suggested model.BlockType
}

const (
	defaultMaxParagraphs = 10
	contentTitle         = "内容"
)

type grouper struct {
	cfg   *config.ImportConfig
	rules []Rule
}

// Segment splits document elements into groups according to configured
// grouping mode.
func Segment(elements []*Element, cfg *config.ImportConfig, rules []Rule) []*Group {
	g := &grouper{cfg: cfg, rules: rules}

	var els []*Element
	for _, e := range elements {
		if e.Kind == KindImage && !cfg.KeepImages {
			continue
		}
		g.promote(e)
		els = append(els, e)
	}

	var res []*Group
	for i := 0; i < len(els); {
		n := g.next(els[i:])
		res = append(res, g.group(els[i:i+n]))
		i += n
	}
	return res
}

// promote turns paragraphs matching heading pattern into headings.
func (g *grouper) promote(e *Element) {
	for i := range g.rules {
		r := &g.rules[i]
		if r.Kind != RuleHeadingPattern || !r.match(e) {
			continue
		}
		e.Kind, e.Level = KindHeading, r.Level
		tag := "h" + strconv.Itoa(r.Level)
		inner := strings.TrimSuffix(strings.TrimPrefix(e.HTML, "<p>"), "</p>")
		e.HTML = "<" + tag + ">" + inner + "</" + tag + ">"
		return
	}
}

func (g *grouper) recognized(e *Element) bool {
	for i := range g.rules {
		if g.rules[i].match(e) {
			return true
		}
	}
	return false
}

// next returns number of elements starting the slice which belong together.
func (g *grouper) next(els []*Element) int {
	first := els[0]
	if first.Kind == KindPageBreak {
		n := 1
		for n < len(els) && els[n].Kind == KindPageBreak {
			n++
		}
		return n
	}
	if first.structural() || !g.recognized(first) {
		return 1
	}

	// continues reports whether element may join group
	var continues func(e *Element, size int) bool
	switch g.cfg.Grouping {
	case "single":
		return 1
	case "with-content":
		limit := g.cfg.MaxParagraphs
		if limit <= 0 {
			limit = defaultMaxParagraphs
		}
		if first.Kind == KindHeading {
			limit++
		}
		continues = func(e *Element, size int) bool {
			return e.Kind != KindHeading && size < limit
		}
	case "until-next":
		continues = func(e *Element, _ int) bool {
			if e.Kind != KindHeading {
				return true
			}
			return first.Kind == KindHeading && e.Level > first.Level
		}
	case "heading-then-content":
		if first.Kind == KindHeading {
			return 1
		}
		continues = func(e *Element, _ int) bool {
			return e.Kind != KindHeading
		}
	default: // merge-same-style
		if first.Kind == KindHeading {
			return 1
		}
		continues = func(e *Element, _ int) bool {
			return e.Kind != KindHeading && sameStyle(first.Style, e.Style)
		}
	}

	n := 1
	for n < len(els) {
		e := els[n]
		if e.structural() || !g.recognized(e) || !continues(e, n) {
			break
		}
		n++
	}
	return n
}

func (g *grouper) group(els []*Element) *Group {
	grp := &Group{Elements: els, Title: groupTitle(els)}
	if g.cfg.Grouping == "heading-then-content" && els[0].Kind != KindHeading && !els[0].structural() {
		grp.Title = contentTitle
	}
	grp.Suggested = g.suggest(els)
	return grp
}

func groupTitle(els []*Element) string {
	for _, e := range els {
		if e.Kind == KindHeading {
			return e.Title()
		}
	}
	switch els[0].Kind {
	case KindTable:
		return "表格"
	case KindImage:
		if els[0].Image.Alt != "" {
			return shorten(els[0].Image.Alt, titleLength)
		}
		return "图片"
	case KindPageBreak:
		return "换页"
	}
	return els[0].Title()
}

func (g *grouper) suggest(els []*Element) model.BlockType {
	switch {
	case els[0].Kind == KindPageBreak:
		return model.BlockPageBreak
	case len(els) == 1 && els[0].Kind == KindImage:
		return model.BlockImage
	case len(els) == 1 && els[0].Kind == KindTable:
		return model.BlockTable
	}
	images, table := true, false
	var text strings.Builder
	for _, e := range els {
		images = images && e.Kind == KindImage
		table = table || e.Kind == KindTable
		text.WriteString(e.Text)
		text.WriteByte('\n')
	}
	if images || table || !g.cfg.AutoConvertToAI {
		return model.BlockText
	}
	if placeholder(text.String(), g.cfg.Placeholders) {
		return model.BlockAI
	}
	return model.BlockText
}

func placeholder(text string, placeholders []string) bool {
	for _, p := range placeholders {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}

const (
	defaultImportFont = "宋体"
	styleEpsilon      = 0.01
)

// sameStyle compares formatting of two elements, unset properties are
// replaced with Word defaults.
func sameStyle(a, b Style) bool {
	orF := func(v, def float64) float64 {
		if v == 0 {
			return def
		}
		return v
	}
	orS := func(v, def string) string {
		if v == "" {
			return def
		}
		return strings.ToLower(v)
	}
	if orF(a.FontSize, model.DefaultFontSize) != orF(b.FontSize, model.DefaultFontSize) ||
		orS(a.FontFamily, defaultImportFont) != orS(b.FontFamily, defaultImportFont) ||
		orS(a.Color, model.DefaultColor) != orS(b.Color, model.DefaultColor) ||
		alignmentOf(a) != alignmentOf(b) {
		return false
	}
	switch {
	case a.LineHeight == 0 && b.LineHeight == 0:
	case a.LineHeight == 0 || b.LineHeight == 0:
		return false
	case math.Abs(a.LineHeight-b.LineHeight) > styleEpsilon:
		return false
	}
	return a.TextIndent == b.TextIndent && a.LeftIndent == b.LeftIndent &&
		a.RightIndent == b.RightIndent && a.SpaceBefore == b.SpaceBefore &&
		a.SpaceAfter == b.SpaceAfter
}
