package qif

import (
	"regexp"
	"strings"
)

var bracketPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// SplitCategory is the decoded form of one S-field value. The mini grammar
// allows a category, a bracketed account reference, a slash-separated class,
// and a pipe separating category from an account override. Extraction order is
// bracket, then pipe, then first slash; the remainder is the category.
type SplitCategory struct {
	Markup   string
	Category string
	Account  string
	Class    string
	HasPipe  bool
	HasSlash bool
}

// ParseSplitCategory decodes a raw S-field value.
func ParseSplitCategory(markup string) SplitCategory {
	sc := SplitCategory{
		Markup:   markup,
		HasPipe:  strings.Contains(markup, "|"),
		HasSlash: strings.Contains(markup, "/"),
	}

	rest := markup
	if m := bracketPattern.FindStringSubmatch(rest); m != nil {
		sc.Account = m[1]
		rest = strings.Replace(rest, "["+sc.Account+"]", "", 1)
	}
	if sc.HasPipe {
		rest = strings.ReplaceAll(rest, "|", "")
	}
	if sc.HasSlash {
		if before, after, found := strings.Cut(rest, "/"); found {
			sc.Class = after
			rest = before
		}
	}
	sc.Category = rest
	return sc
}
