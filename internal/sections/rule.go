// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sections merges a text section into the code section that follows
// it when both carry the same title, and reports such pairs without merging.
//
// A section is a *jsondoc.Object. Only its type, title, content and tabs
// fields are interpreted; every other field is carried through untouched.
package sections

import "github.com/pdiddy/section-combiner/internal/jsondoc"

// Section type tags.
const (
	TypeText     = "text"
	TypeCode     = "code"
	TypeCodeTabs = "code-tabs"
)

// Section field names.
const (
	FieldType        = "type"
	FieldTitle       = "title"
	FieldContent     = "content"
	FieldTabs        = "tabs"
	FieldDescription = "description"
)

// PairKind identifies which merge form applies to two adjacent sections.
type PairKind int

const (
	// PairNone means the sections are not mergeable.
	PairNone PairKind = iota
	// PairTextCode is a text section followed by a code section.
	PairTextCode
	// PairTextCodeTabs is a text section followed by a code-tabs section.
	PairTextCodeTabs
)

// MarshalText encodes the kind by name in reports.
func (k PairKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k PairKind) String() string {
	switch k {
	case PairTextCode:
		return "text+code"
	case PairTextCodeTabs:
		return "text+code-tabs"
	default:
		return "none"
	}
}

// Eligible reports whether current and next form a mergeable pair.
// current must be a text section with a non-empty title; next must be a
// code or code-tabs section with exactly the same title.
func Eligible(current, next any) PairKind {
	cur, ok := current.(*jsondoc.Object)
	if !ok {
		return PairNone
	}
	nxt, ok := next.(*jsondoc.Object)
	if !ok {
		return PairNone
	}

	if t, _ := cur.String(FieldType); t != TypeText {
		return PairNone
	}
	title, _ := cur.String(FieldTitle)
	if title == "" {
		return PairNone
	}
	nextTitle, ok := nxt.String(FieldTitle)
	if !ok || nextTitle != title {
		return PairNone
	}

	switch t, _ := nxt.String(FieldType); t {
	case TypeCode:
		return PairTextCode
	case TypeCodeTabs:
		return PairTextCodeTabs
	}
	return PairNone
}
