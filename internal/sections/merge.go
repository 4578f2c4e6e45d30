// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import "github.com/pdiddy/section-combiner/internal/jsondoc"

// Fields of the code section that are not copied into a merged section
// because the merge already placed them.
var (
	codeSkipFields     = fieldSet(FieldType, FieldTitle, FieldContent)
	codeTabsSkipFields = fieldSet(FieldType, FieldTitle, FieldTabs, FieldContent, FieldDescription)
)

func fieldSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Merge scans list left to right and replaces every eligible pair with one
// merged section. A merged section is emitted immediately and never compared
// with the element after it. It returns the new list and the number of
// merges. list itself is not modified.
func Merge(list []any) ([]any, int) {
	out := make([]any, 0, len(list))
	count := 0

	for i := 0; i < len(list); {
		if i+1 < len(list) {
			if kind := Eligible(list[i], list[i+1]); kind != PairNone {
				out = append(out, combine(kind, list[i].(*jsondoc.Object), list[i+1].(*jsondoc.Object)))
				count++
				i += 2
				continue
			}
		}
		out = append(out, list[i])
		i++
	}
	return out, count
}

// combine builds the merged section for an eligible pair.
func combine(kind PairKind, text, code *jsondoc.Object) *jsondoc.Object {
	title, _ := text.String(FieldTitle)

	merged := jsondoc.NewObject()
	skip := codeSkipFields
	if kind == PairTextCodeTabs {
		merged.Set(FieldType, TypeCodeTabs)
		merged.Set(FieldTitle, title)
		merged.Set(FieldDescription, valueOr(text, FieldContent, ""))
		merged.Set(FieldTabs, valueOr(code, FieldTabs, []any{}))
		skip = codeTabsSkipFields
	} else {
		merged.Set(FieldType, TypeCode)
		merged.Set(FieldTitle, title)
		merged.Set(FieldDescription, valueOr(text, FieldContent, ""))
		merged.Set(FieldContent, valueOr(code, FieldContent, ""))
	}

	code.Each(func(key string, value any) bool {
		if !skip[key] {
			merged.Set(key, value)
		}
		return true
	})
	return merged
}

func valueOr(obj *jsondoc.Object, key string, fallback any) any {
	if v, ok := obj.Get(key); ok {
		return v
	}
	return fallback
}
