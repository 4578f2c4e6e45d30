// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrTrailingData is returned when input continues after the first value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// ErrInvalidUTF8 is returned when the input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// ErrLoneSurrogate is returned for a \u escape naming half of a surrogate
// pair without its other half.
var ErrLoneSurrogate = errors.New("unpaired surrogate escape in string")

// Decode parses a single JSON value from data. Input that encoding/json
// would silently repair (invalid UTF-8, unpaired surrogate escapes) is
// rejected, so a decoded document always re-encodes to the same text.
func Decode(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}
	if err := checkSurrogates(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not string", keyTok)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", rune(delim))
}

// checkSurrogates scans the string literals in data for \u escapes in the
// range D800-DFFF. A high surrogate must be followed directly by an escaped
// low surrogate; anything else is an error. Malformed escapes are left for
// the decoder to report.
func checkSurrogates(data []byte) error {
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			continue
		}
		switch c {
		case '"':
			inString = false
		case '\\':
			if i+1 >= len(data) {
				return nil
			}
			if data[i+1] != 'u' {
				i++
				continue
			}
			r, ok := hex4(data, i+2)
			if !ok {
				return nil
			}
			i += 5
			switch {
			case r >= 0xDC00 && r <= 0xDFFF:
				return fmt.Errorf("%w: \\u%04x", ErrLoneSurrogate, r)
			case r >= 0xD800 && r <= 0xDBFF:
				if i+2 >= len(data) || data[i+1] != '\\' || data[i+2] != 'u' {
					return fmt.Errorf("%w: \\u%04x", ErrLoneSurrogate, r)
				}
				low, ok := hex4(data, i+3)
				if !ok || low < 0xDC00 || low > 0xDFFF {
					return fmt.Errorf("%w: \\u%04x", ErrLoneSurrogate, r)
				}
				i += 6
			}
		}
	}
	return nil
}

// hex4 reads four hex digits starting at data[at].
func hex4(data []byte, at int) (rune, bool) {
	if at+4 > len(data) {
		return 0, false
	}
	var r rune
	for _, c := range data[at : at+4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}
