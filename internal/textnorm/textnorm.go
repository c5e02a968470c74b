// Package textnorm turns stored rich-text catalog fields into plain search text.
package textnorm

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	// closedTag matches a complete <...> span. A '<' outside such a span is text.
	closedTag = regexp.MustCompile(`<[^>]*>`)

	// unescape reverts the escaping bluemonday applies to the text it keeps.
	unescape = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&#34;", `"`,
		"&#39;", "'",
		"&#13;", "\r",
	)
)

// policy returns a singleton bluemonday policy that strips every element,
// drops script and style bodies, and leaves a space where a tag was removed.
func policy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)
	})
	return strictPolicy
}

// Normalize removes markup, decodes HTML entities, collapses whitespace and
// trims the result. It is total and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	// A pass never grows the text, so the loop stops at a fixpoint.
	s := raw
	for {
		next := unescape.Replace(policy().Sanitize(escapeUnclosed(s)))
		if len(next) >= len(s) {
			break
		}
		s = next
	}

	return strings.Join(strings.Fields(s), " ")
}

// escapeUnclosed entity-encodes every '<' that does not open a closed <...>
// span, so the HTML tokenizer keeps it as text instead of swallowing the rest
// of the field.
func escapeUnclosed(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var b strings.Builder
	last := 0
	for _, span := range closedTag.FindAllStringIndex(s, -1) {
		b.WriteString(strings.ReplaceAll(s[last:span[0]], "<", "&lt;"))
		b.WriteString(s[span[0]:span[1]])
		last = span[1]
	}
	b.WriteString(strings.ReplaceAll(s[last:], "<", "&lt;"))
	return b.String()
}

// SplitList normalizes raw and splits it into list entries on commas,
// semicolons and periods. Empty entries are dropped.
func SplitList(raw string) []string {
	text := Normalize(raw)
	if text == "" {
		return nil
	}

	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '.'
	})

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
