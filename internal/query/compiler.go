// Package query compiles search-expression trees into RediSearch query strings.
package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/corpusd/internal/domain/search"
)

// ContentField is the indexed text field every compiled query matches against.
const ContentField = "__content"

// Compile translates a search node tree into an FT.SEARCH query string.
// Keyword terms match all tokens on the content field, phrase terms match
// exactly; AND children must all match, OR children at least one; Invert
// wraps the compiled sub-query in a negation. Pure transformation, no depth
// limit beyond available stack (Go stacks grow on demand).
func Compile(node search.Node) (string, error) {
	switch n := node.(type) {
	case search.Term:
		return compileTerm(n)
	case search.Compound:
		return compileCompound(n)
	default:
		return "", fmt.Errorf("unknown search node type %T", node)
	}
}

func compileTerm(t search.Term) (string, error) {
	tokens := strings.Fields(t.Text)
	if len(tokens) == 0 {
		return "", fmt.Errorf("term text is empty")
	}

	var q string
	if t.Phrase {
		escaped := make([]string, len(tokens))
		for i, tok := range tokens {
			escaped[i] = escapeToken(tok)
		}
		q = fmt.Sprintf("@%s:\"%s\"", ContentField, strings.Join(escaped, " "))
	} else {
		escaped := make([]string, len(tokens))
		for i, tok := range tokens {
			escaped[i] = escapeToken(tok)
		}
		q = fmt.Sprintf("@%s:(%s)", ContentField, strings.Join(escaped, " "))
	}

	return invert(q, t.Invert), nil
}

func compileCompound(c search.Compound) (string, error) {
	if len(c.Children) == 0 {
		return "", fmt.Errorf("compound node has no children")
	}

	parts := make([]string, 0, len(c.Children))
	for i, child := range c.Children {
		sub, err := Compile(child)
		if err != nil {
			return "", fmt.Errorf("child %d: %w", i, err)
		}
		parts = append(parts, sub)
	}

	var joined string
	switch c.Op {
	case search.And:
		joined = strings.Join(parts, " ")
	case search.Or:
		joined = strings.Join(parts, " | ")
	default:
		return "", fmt.Errorf("unsupported operator %q", c.Op)
	}

	return invert("("+joined+")", c.Invert), nil
}

func invert(q string, inverted bool) string {
	if inverted {
		return "-(" + q + ")"
	}
	return q
}

func escapeToken(s string) string {
	return tokenEscaper.Replace(s)
}

var tokenEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
)
