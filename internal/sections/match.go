// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import "github.com/pdiddy/section-combiner/internal/jsondoc"

// DefaultPreviewLength is the number of characters kept in a match preview.
const DefaultPreviewLength = 100

// Match describes one mergeable pair found without merging it.
type Match struct {
	// Index is the position of the text section.
	Index int `json:"index" yaml:"index"`

	// Title is the title both sections share.
	Title string `json:"title" yaml:"title"`

	// Kind is the merge form that would apply.
	Kind PairKind `json:"kind" yaml:"kind"`

	// TextPreview is the start of the text section's content.
	TextPreview string `json:"text_preview" yaml:"text_preview"`

	// CodePreview is the start of the code section's content. Empty for
	// code-tabs sections, which carry tabs instead.
	CodePreview string `json:"code_preview" yaml:"code_preview"`
}

// FindMatches reports the pairs Merge would combine, in the same order and
// with the same non-overlapping scan. previewLen <= 0 selects
// DefaultPreviewLength.
func FindMatches(list []any, previewLen int) []Match {
	if previewLen <= 0 {
		previewLen = DefaultPreviewLength
	}

	var matches []Match
	for i := 0; i+1 < len(list); {
		kind := Eligible(list[i], list[i+1])
		if kind == PairNone {
			i++
			continue
		}
		text := list[i].(*jsondoc.Object)
		code := list[i+1].(*jsondoc.Object)
		title, _ := text.String(FieldTitle)
		textContent, _ := text.String(FieldContent)
		codeContent, _ := code.String(FieldContent)

		matches = append(matches, Match{
			Index:       i,
			Title:       title,
			Kind:        kind,
			TextPreview: Preview(textContent, previewLen),
			CodePreview: Preview(codeContent, previewLen),
		})
		i += 2
	}
	return matches
}

// Preview returns the first n characters of s, followed by "..." when s was
// cut.
func Preview(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
