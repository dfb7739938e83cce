package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		styleFormat = formatText
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "slides dev")
}

func TestStyleCommand(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, _, err := execute(t, "style", "Revenue **up** and [[churn]] down")
		require.NoError(t, err)
		assert.Equal(t, "Revenue up and churn down\nbold      8-10 \"up\"\nimportant 15-20 \"churn\"\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "style", "--format", "json", "**右ボックス**")
		require.NoError(t, err)

		var got styledText
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, styledText{
			Text:   "右ボックス",
			Ranges: []styleRange{{Start: 0, End: 5, Kind: "bold", Text: "右ボックス"}},
		}, got)
	})

	t.Run("stdin without markup", func(t *testing.T) {
		rootCmd.SetIn(bytes.NewBufferString("plain\n"))
		defer rootCmd.SetIn(nil)

		out, errOut, err := execute(t, "style")
		require.NoError(t, err)
		assert.Equal(t, "plain\n", out)
		assert.Contains(t, errOut, "no markup found")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, "style", "--format", "xml", "x")
		assert.Error(t, err)
	})
}

func TestStyleOfEmptyMarker(t *testing.T) {
	got := styleOf("a****b")
	assert.Equal(t, "ab", got.Text)
	assert.Equal(t, []styleRange{{Start: 1, End: 1, Kind: "bold", Text: ""}}, got.Ranges)

	assert.Equal(t, []styleRange{}, styleOf("nothing").Ranges)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("- type: closing\n"), 0o644))
}

func TestRecordFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"q3/a.yaml", "q3/b.json", "q4/deep/c.yaml", "notes.txt"} {
		touch(t, filepath.Join(dir, name))
	}

	files, err := recordFiles([]string{
		filepath.Join(dir, "**", "*.yaml"),
		filepath.Join(dir, "q3", "*"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "q3", "a.yaml"),
		filepath.Join(dir, "q3", "b.json"),
		filepath.Join(dir, "q4", "deep", "c.yaml"),
	}, files)

	files, err = recordFiles([]string{filepath.Join(dir, "*.yaml")})
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = recordFiles([]string{"[unclosed"})
	assert.Error(t, err)
}

func TestDeckPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "review.pptx"), deckPath("out", filepath.Join("decks", "review.yaml")))
	assert.Equal(t, filepath.Join("out", "v1.2.pptx"), deckPath("out", "v1.2.json"))
}

func TestBatchReportsEveryFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.yaml"))
	touch(t, filepath.Join(dir, "b.yaml"))

	out, _, err := execute(t, "batch",
		"--template", filepath.Join(dir, "missing.pptx"),
		"--output-dir", filepath.Join(dir, "out"),
		"--log-level", "off",
		filepath.Join(dir, "*.yaml"))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "a.yaml")
	assert.Contains(t, err.Error(), "b.yaml")
	assert.Contains(t, out, "Generated 0 of 2 decks")
}

func TestBatchWithoutMatches(t *testing.T) {
	_, _, err := execute(t, "batch", "--template", "t.pptx", "--log-level", "off", filepath.Join(t.TempDir(), "*.yaml"))
	assert.ErrorContains(t, err, "no record files match")
}

func TestWatchTargets(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "template.pptx")
	records := filepath.Join(dir, "decks", "deck.yaml")

	targets := newWatchTargets(generateJob{template: template, records: records})
	assert.Equal(t, template, targets.template)
	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "decks")}, targets.dirs())

	path, ok := targets.relevant(fsnotify.Event{Name: records, Op: fsnotify.Write})
	assert.True(t, ok)
	assert.Equal(t, records, path)

	_, ok = targets.relevant(fsnotify.Event{Name: template, Op: fsnotify.Chmod})
	assert.False(t, ok)
	_, ok = targets.relevant(fsnotify.Event{Name: filepath.Join(dir, "other.pptx"), Op: fsnotify.Create})
	assert.False(t, ok)

	debugOnly := newWatchTargets(generateJob{template: template})
	assert.Len(t, debugOnly.files, 1)
}
