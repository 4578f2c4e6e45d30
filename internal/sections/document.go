// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import "github.com/pdiddy/section-combiner/internal/jsondoc"

// FieldSections is the document field that holds the section list.
const FieldSections = "sections"

// List returns the section list of doc. ok is false when doc is not an
// object or has no sections array; such documents are never modified.
func List(doc any) (list []any, ok bool) {
	obj, isObj := doc.(*jsondoc.Object)
	if !isObj {
		return nil, false
	}
	v, present := obj.Get(FieldSections)
	if !present {
		return nil, false
	}
	list, ok = v.([]any)
	return list, ok
}

// MergeDocument merges eligible pairs in doc's section list. The list is
// replaced only when at least one merge happened; no other field is touched.
// It returns the merge count and whether doc has a section list at all.
func MergeDocument(doc any) (int, bool) {
	list, ok := List(doc)
	if !ok {
		return 0, false
	}
	merged, count := Merge(list)
	if count > 0 {
		doc.(*jsondoc.Object).Set(FieldSections, merged)
	}
	return count, true
}

// FindDocumentMatches runs FindMatches over doc's section list.
func FindDocumentMatches(doc any, previewLen int) []Match {
	list, ok := List(doc)
	if !ok {
		return nil
	}
	return FindMatches(list, previewLen)
}
