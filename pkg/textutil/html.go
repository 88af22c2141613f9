// Package textutil turns the rich markup stored in journal entries into plain
// text for previews, word counts and indexing.
//
// Every function here is total: malformed markup degrades to whatever text the
// tokenizer can recover and never produces an error.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	// PreviewLength is the number of characters kept in an entry preview.
	PreviewLength = 300
	// Ellipsis is appended to text cut by Truncate.
	Ellipsis = "…"
)

// elements whose content is never text the author wrote.
var skipElements = map[string]bool{
	"script": true,
	"style":  true,
}

// StripToPlainText removes script and style elements with their content,
// replaces every other tag with a single space, decodes entities, collapses
// runs of two or more whitespace characters into one space and trims the result.
func StripToPlainText(markup string) string {
	if markup == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	var sb strings.Builder
	skipDepth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if skipElements[string(name)] {
				skipDepth++
			}
			sb.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipElements[string(name)] && skipDepth > 0 {
				skipDepth--
			}
			sb.WriteByte(' ')
		default:
			// self-closing tags, comments, doctypes
			sb.WriteByte(' ')
		}
	}

	return strings.TrimSpace(collapseWhitespace(sb.String()))
}

// collapseWhitespace replaces every run of two or more whitespace runes with a
// single space. A lone whitespace rune is kept as is.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	runStart := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			writeRun(&sb, s[runStart:i])
			runStart = -1
		}
		sb.WriteRune(r)
	}
	if runStart >= 0 {
		writeRun(&sb, s[runStart:])
	}
	return sb.String()
}

func writeRun(sb *strings.Builder, run string) {
	if utf8.RuneCountInString(run) > 1 {
		sb.WriteByte(' ')
		return
	}
	sb.WriteString(run)
}

func isWordSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// WordCount returns the number of whitespace separated words in the plain text of markup.
func WordCount(markup string) int {
	plain := StripToPlainText(markup)
	if plain == "" {
		return 0
	}
	return len(strings.FieldsFunc(plain, isWordSeparator))
}

// Truncate returns the plain text of markup, cut to maxChars characters with
// Ellipsis appended when it is longer.
func Truncate(markup string, maxChars int) string {
	plain := StripToPlainText(markup)
	if maxChars < 0 {
		maxChars = 0
	}
	if utf8.RuneCountInString(plain) <= maxChars {
		return plain
	}
	runes := []rune(plain)
	return string(runes[:maxChars]) + Ellipsis
}

// Preview is Truncate with PreviewLength.
func Preview(markup string) string {
	return Truncate(markup, PreviewLength)
}
