// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/section-combiner/pkg/types"
)

// --- test helpers ---

const mergeableDoc = `{
  "id": "drive",
  "sections": [
    {
      "type": "text",
      "title": "Setup",
      "content": "Configure the motor."
    },
    {
      "type": "code",
      "title": "Setup",
      "content": "motor.set(0.5)",
      "language": "java"
    },
    {
      "type": "text",
      "title": "Notes",
      "content": "Nothing to pair."
    }
  ]
}
`

const mergedDoc = `{
  "id": "drive",
  "sections": [
    {
      "type": "code",
      "title": "Setup",
      "description": "Configure the motor.",
      "content": "motor.set(0.5)",
      "language": "java"
    },
    {
      "type": "text",
      "title": "Notes",
      "content": "Nothing to pair."
    }
  ]
}
`

const tabsDoc = `{
  "sections": [
    {"type": "text", "title": "Auto", "content": "Autonomous routine."},
    {"type": "code-tabs", "title": "Auto", "tabs": [{"label": "Java"}, {"label": "C++"}]}
  ]
}`

func writeDoc(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readDoc(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// --- discovery ---

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b.json", "{}")
	writeDoc(t, dir, "a/z.json", "{}")
	writeDoc(t, dir, "a/notes.txt", "x")
	writeDoc(t, dir, "node_modules/pkg.json", "{}")
	writeDoc(t, dir, "a/deep/c.json", "{}")

	paths, err := Discover(dir, "", []string{"node_modules"})
	require.NoError(t, err)

	var rel []string
	for _, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"a/deep/c.json", "a/z.json", "b.json"}, rel)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), ".json", nil)
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestDiscover_RootIsFile(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "doc.json", "{}")
	_, err := Discover(path, ".json", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRootNotFound)
}

// --- single documents ---

func TestMergeFile_RewritesModifiedDocument(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "drive.json", mergeableDoc)

	res := MergeFile(path, false)

	require.Nil(t, res.Err)
	assert.True(t, res.Modified)
	assert.Equal(t, 1, res.Merges)
	assert.Equal(t, mergedDoc, readDoc(t, path))
}

func TestMergeFile_CodeTabs(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "auto.json", tabsDoc)

	res := MergeFile(path, false)

	require.Nil(t, res.Err)
	assert.Equal(t, 1, res.Merges)
	want := `{
  "sections": [
    {
      "type": "code-tabs",
      "title": "Auto",
      "description": "Autonomous routine.",
      "tabs": [
        {
          "label": "Java"
        },
        {
          "label": "C++"
        }
      ]
    }
  ]
}
`
	assert.Equal(t, want, readDoc(t, path))
}

func TestMergeFile_KeepsFileMode(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "drive.json", mergeableDoc)
	require.NoError(t, os.Chmod(path, 0o600))

	res := MergeFile(path, false)
	require.Nil(t, res.Err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMergeFile_Idempotent(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "drive.json", mergeableDoc)

	first := MergeFile(path, false)
	second := MergeFile(path, false)

	assert.True(t, first.Modified)
	assert.False(t, second.Modified)
	assert.Zero(t, second.Merges)
	assert.Equal(t, mergedDoc, readDoc(t, path))
}

func TestMergeFile_UnmodifiedFilesAreByteIdentical(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no sections field", content: "{\"title\":   \"compact\"}"},
		{name: "sections is an object", content: "{\"sections\": {\"type\": \"text\"}}\n"},
		{name: "nothing mergeable", content: "{\"sections\": [{\"type\": \"text\", \"title\": \"A\"}, {\"type\": \"code\", \"title\": \"B\"}]}"},
		{name: "empty titles", content: "{\"sections\": [{\"type\": \"text\", \"title\": \"\"}, {\"type\": \"code\", \"title\": \"\"}]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, t.TempDir(), "doc.json", tt.content)
			before, err := os.Stat(path)
			require.NoError(t, err)

			res := MergeFile(path, false)

			assert.Nil(t, res.Err)
			assert.False(t, res.Modified)
			assert.Zero(t, res.Merges)
			assert.Equal(t, tt.content, readDoc(t, path))
			after, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, before.ModTime(), after.ModTime())
		})
	}
}

func TestMergeFile_DryRunLeavesFile(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "drive.json", mergeableDoc)

	res := MergeFile(path, true)

	require.Nil(t, res.Err)
	assert.True(t, res.Modified)
	assert.Equal(t, 1, res.Merges)
	assert.Equal(t, mergeableDoc, readDoc(t, path))
}

func TestMergeFile_ParseError(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "bad.json", `{"sections": [`)

	res := MergeFile(path, false)

	require.NotNil(t, res.Err)
	assert.Equal(t, KindParse, res.Err.Kind)
	assert.Equal(t, path, res.Err.Path)
	assert.False(t, res.Modified)
}

func TestMergeFile_InvalidUTF8IsParseError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "latin-1 byte outside sections",
			content: "{\"note\": \"latin1 caf\xe9\", \"sections\": [{\"type\": \"text\", \"title\": \"A\"}, {\"type\": \"code\", \"title\": \"A\"}]}",
		},
		{
			name:    "lone surrogate escape",
			content: `{"note": "emoji half \ud83d end", "sections": [{"type": "text", "title": "A"}, {"type": "code", "title": "A"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, t.TempDir(), "doc.json", tt.content)

			res := MergeFile(path, false)

			require.NotNil(t, res.Err)
			assert.Equal(t, KindParse, res.Err.Kind)
			assert.False(t, res.Modified)
			assert.Zero(t, res.Merges)
			assert.Equal(t, tt.content, readDoc(t, path))
		})
	}
}

func TestMergeFile_ReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.json")

	res := MergeFile(path, false)

	require.NotNil(t, res.Err)
	assert.Equal(t, KindRead, res.Err.Kind)
	assert.ErrorIs(t, res.Err, os.ErrNotExist)
}

func TestMergeFile_WriteErrorKeepsOriginal(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "drive.json", mergeableDoc)

	orig := writeFile
	writeFile = func(string, []byte) error { return errors.New("disk full") }
	t.Cleanup(func() { writeFile = orig })

	res := MergeFile(path, false)

	require.NotNil(t, res.Err)
	assert.Equal(t, KindWrite, res.Err.Kind)
	assert.Contains(t, res.Err.Error(), "disk full")
	assert.False(t, res.Modified)
	assert.Zero(t, res.Merges)
	assert.Equal(t, mergeableDoc, readDoc(t, path))
}

func TestWriteFileAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.json", "{}")

	require.NoError(t, writeFileAtomic(path, []byte("{\n  \"a\": 1\n}\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json", entries[0].Name())
}

func TestAuditFile(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "drive.json", mergeableDoc)

	res := AuditFile(path, 9)

	require.Nil(t, res.Err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 0, res.Matches[0].Index)
	assert.Equal(t, "Setup", res.Matches[0].Title)
	assert.Equal(t, "Configure...", res.Matches[0].TextPreview)
	assert.Equal(t, "motor.set...", res.Matches[0].CodePreview)
	assert.False(t, res.Modified)
	assert.Equal(t, mergeableDoc, readDoc(t, path))
}

// --- batch runs ---

func TestRunner_BatchIsolation(t *testing.T) {
	dir := t.TempDir()
	first := writeDoc(t, dir, "1-first.json", mergeableDoc)
	bad := writeDoc(t, dir, "2-broken.json", `{"sections": [ not json`)
	third := writeDoc(t, dir, "3-third.json", tabsDoc)

	runner, err := NewRunner(types.CombineConfig{Root: dir, Mode: types.ModeMerge})
	require.NoError(t, err)

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Documents)
	assert.Equal(t, 2, summary.Modified)
	assert.Equal(t, 2, summary.Merges)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, bad, summary.Errors[0].Path)
	assert.Equal(t, KindParse, summary.Errors[0].Kind)

	assert.Equal(t, mergedDoc, readDoc(t, first))
	assert.NotContains(t, readDoc(t, third), `"type": "text"`)
	assert.Equal(t, `{"sections": [ not json`, readDoc(t, bad))

	log := out.String()
	assert.Contains(t, log, "Found 3 JSON files to process...")
	assert.Contains(t, log, "1-first.json - Combined 1 pair(s)")
	assert.Contains(t, log, "3-third.json - Combined 1 pair(s)")
	assert.Contains(t, log, "Files modified: 2")
	assert.Contains(t, log, "Total pairs combined: 2")
	assert.Contains(t, log, "Errors (1):")
	assert.Contains(t, log, "2-broken.json: parse error:")
}

func TestRunner_ParallelMatchesSequential(t *testing.T) {
	build := func(t *testing.T) string {
		dir := t.TempDir()
		for i := range 12 {
			content := mergeableDoc
			if i%3 == 0 {
				content = `{"sections": []}`
			}
			if i%5 == 0 {
				content = "not json"
			}
			writeDoc(t, dir, fmt.Sprintf("doc-%02d.json", i), content)
		}
		return dir
	}

	run := func(t *testing.T, workers int) *Summary {
		runner, err := NewRunner(types.CombineConfig{Root: build(t), Workers: workers})
		require.NoError(t, err)
		summary, err := runner.Run(context.Background(), &bytes.Buffer{})
		require.NoError(t, err)
		return summary
	}

	seq := run(t, 1)
	par := run(t, 4)

	assert.Equal(t, seq.Documents, par.Documents)
	assert.Equal(t, seq.Modified, par.Modified)
	assert.Equal(t, seq.Merges, par.Merges)
	assert.Equal(t, len(seq.Errors), len(par.Errors))
	assert.Equal(t, 12, par.Documents)
	assert.Equal(t, 3, len(par.Errors))
}

func TestRunner_Audit(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "drive.json", mergeableDoc)
	writeDoc(t, dir, "auto.json", tabsDoc)
	writeDoc(t, dir, "plain.json", `{"sections": []}`)

	runner, err := NewRunner(types.CombineConfig{Root: dir, Mode: types.ModeAudit})
	require.NoError(t, err)

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Documents)
	assert.Equal(t, 2, summary.FilesWithMatches)
	assert.Equal(t, 2, summary.Matches)
	assert.Zero(t, summary.Modified)
	assert.Equal(t, mergeableDoc, readDoc(t, path))
	assert.Contains(t, out.String(), "  - Index 0: 'Setup' (text+code)")
	assert.Contains(t, out.String(), "  - Index 0: 'Auto' (text+code-tabs)")
	assert.Contains(t, out.String(), "Total matches: 2")
}

func TestRunner_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "drive.json", mergeableDoc)

	runner, err := NewRunner(types.CombineConfig{Root: dir, DryRun: true})
	require.NoError(t, err)

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Merges)
	assert.Equal(t, mergeableDoc, readDoc(t, path))
	assert.Contains(t, out.String(), "Would combine 1 pair(s)")
	assert.Contains(t, out.String(), "Total pairs that would be combined: 1")
}

func TestRunner_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data", "frc")
	runner, err := NewRunner(types.CombineConfig{Root: root})
	require.NoError(t, err)

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)

	require.NoError(t, err)
	assert.True(t, summary.RootMissing)
	assert.Equal(t, "Data directory not found: "+root+"\n", out.String())
}

func TestRunner_EmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "readme.md", "# nothing")

	runner, err := NewRunner(types.CombineConfig{Root: dir})
	require.NoError(t, err)

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)

	require.NoError(t, err)
	assert.Zero(t, summary.Documents)
	assert.Contains(t, out.String(), "No JSON files found. Exiting.")
	assert.NotContains(t, out.String(), "Summary:")
}

func TestRunner_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "drive.json", mergeableDoc)

	runner, err := NewRunner(types.CombineConfig{Root: dir})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := runner.Run(ctx, &bytes.Buffer{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Documents)
	assert.Equal(t, mergeableDoc, readDoc(t, path))
}

func TestNewRunner_Defaults(t *testing.T) {
	runner, err := NewRunner(types.CombineConfig{})
	require.NoError(t, err)

	cfg := runner.Config()
	assert.Equal(t, DefaultRoot, cfg.Root)
	assert.Equal(t, types.ModeMerge, cfg.Mode)
	assert.Equal(t, ".json", cfg.Extension)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 100, cfg.PreviewLength)
	assert.Equal(t, DefaultMaxErrors, cfg.MaxErrors)

	_, err = NewRunner(types.CombineConfig{Mode: "rewrite"})
	assert.Error(t, err)
}

// --- summary ---

func TestSummaryPrint_CapsErrors(t *testing.T) {
	s := &Summary{Mode: types.ModeMerge}
	for i := range 13 {
		s.add(FileResult{
			Path: fmt.Sprintf("doc-%02d.json", i),
			Err:  &DocumentError{Path: fmt.Sprintf("doc-%02d.json", i), Kind: KindParse, Err: errors.New("bad")},
		})
	}

	var out bytes.Buffer
	s.Print(&out, 10)

	log := out.String()
	assert.Contains(t, log, "Errors (13):")
	assert.Contains(t, log, "doc-09.json: parse error: bad")
	assert.NotContains(t, log, "doc-10.json")
	assert.Contains(t, log, "  ... and 3 more errors")
	assert.Equal(t, 10, strings.Count(log, "parse error"))
}

func TestDocumentError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	var err error = &DocumentError{Path: "x.json", Kind: KindWrite, Err: cause}

	assert.ErrorIs(t, err, cause)
	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindWrite, de.Kind)
	assert.Equal(t, "x.json: write error: boom", err.Error())
}
