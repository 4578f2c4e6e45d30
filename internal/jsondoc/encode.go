// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const indentUnit = "  "

// Encode writes v as JSON indented by two spaces per level. Non-ASCII text
// is written literally; only quotes, backslashes and control characters are
// escaped.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal is Encode followed by a single newline, the on-disk format.
func Marshal(v any) ([]byte, error) {
	data, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func encodeValue(buf *bytes.Buffer, v any, depth int) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		writeString(buf, t)
	case json.Number:
		buf.WriteString(t.String())
	case int:
		buf.WriteString(strconv.Itoa(t))
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return fmt.Errorf("unsupported float value %v", t)
		}
		buf.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case *Object:
		return encodeObject(buf, t, depth)
	case []any:
		return encodeArray(buf, t, depth)
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func encodeObject(buf *bytes.Buffer, obj *Object, depth int) error {
	if obj.Len() == 0 {
		buf.WriteString("{}")
		return nil
	}
	inner := strings.Repeat(indentUnit, depth+1)
	buf.WriteString("{\n")
	for i, k := range obj.keys {
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString(inner)
		writeString(buf, k)
		buf.WriteString(": ")
		if err := encodeValue(buf, obj.values[k], depth+1); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteByte('}')
	return nil
}

func encodeArray(buf *bytes.Buffer, arr []any, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}
	inner := strings.Repeat(indentUnit, depth+1)
	buf.WriteString("[\n")
	for i, v := range arr {
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString(inner)
		if err := encodeValue(buf, v, depth+1); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteByte(']')
	return nil
}

const hexDigits = "0123456789abcdef"

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[r>>4])
				buf.WriteByte(hexDigits[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
