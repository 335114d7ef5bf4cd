// Package css handles inline CSS declarations: parsing values of HTML style
// attributes and rendering them back.
package css

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/text/width"
)

// ParseInline parses value of HTML style attribute. Full width characters
// (common in CJK input) are folded first, unknown constructs are skipped.
func ParseInline(style string) Declarations {
	style = width.Fold.String(style)
	if strings.TrimSpace(style) == "" {
		return nil
	}

	input := parse.NewInput(bytes.NewReader([]byte(style)))
	parser := css.NewParser(input, true)

	var decls Declarations
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			// end of input or unrecoverable error, keep what we have
			return decls
		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) > 0 {
				decls = append(decls, Declaration{
					Property: strings.ToLower(string(data)),
					Value:    parsePropertyValue(values),
				})
			}
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	if len(tokens) == 0 {
		return Value{}
	}

	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "!important"))

	val := Value{Raw: raw}

	if len(tokens) == 1 || (len(tokens) == 2 && tokens[1].TokenType == css.WhitespaceToken) {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		case css.HashToken:
			val.Keyword = string(t.Data)
		}
		return val
	}

	// functions (rgb(), rgba()) and multi-value properties keep raw text
	val.Keyword = raw
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// FirstFamily returns first family name of font-family value without quotes.
func FirstFamily(v Value) string {
	first, _, _ := strings.Cut(v.Raw, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}
