// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/section-combiner/internal/jsondoc"
)

// LoadDocument reads and decodes the JSON document at path. Failures are
// returned as *DocumentError with KindRead or KindParse.
func LoadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentError{Path: path, Kind: KindRead, Err: err}
	}
	doc, err := jsondoc.Decode(data)
	if err != nil {
		return nil, &DocumentError{Path: path, Kind: KindParse, Err: err}
	}
	return doc, nil
}

// WriteDocument encodes doc and replaces the file at path. The new content
// goes to a temporary file in the same directory which is then renamed over
// path, so a failed write leaves the original intact. The original file mode
// is kept. Failures are returned as *DocumentError with KindWrite.
func WriteDocument(path string, doc any) error {
	data, err := jsondoc.Marshal(doc)
	if err != nil {
		return &DocumentError{Path: path, Kind: KindWrite, Err: fmt.Errorf("encoding: %w", err)}
	}
	if err := writeFile(path, data); err != nil {
		return &DocumentError{Path: path, Kind: KindWrite, Err: err}
	}
	return nil
}

// writeFile is replaced in tests to simulate write failures.
var writeFile = writeFileAtomic

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
