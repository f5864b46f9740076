package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"record-splitter/internal/group"
	"record-splitter/internal/writer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	out := map[string]string{}
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(b)
	}
	return out
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	cfgPath := writeFile(t, dir, "split.yaml", `
record_count: 100
groups:
  - identifier: g1
    patterns: ["unit_DVE/", "unit_VCSDVE/"]
    record_count: 5
  - identifier: g2
    patterns: ["OSCI"]
    record_count: 30
exclude:
  patterns: ["^skip/"]
`)
	input := writeFile(t, dir, "records.txt", "unit_DVE/x\nunit_VCSDVE/y\nOSCI/z\nskip/me\nmisc/w\n")
	metricsFile := filepath.Join(dir, "splitter.prom")

	opts, err := parseFlags([]string{
		"-config", cfgPath,
		"-input", input,
		"-out", out,
		"-metrics-file", metricsFile,
	}, os.Stderr)
	require.NoError(t, err)

	require.NoError(t, run(t.Context(), opts, strings.NewReader("")))

	assert.Equal(t, map[string]string{
		"set.a": "misc/w\n",
		"g1.a":  "unit_DVE/x\nunit_VCSDVE/y\n",
		"g2.a":  "OSCI/z\n",
	}, readDir(t, out))

	b, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "record_splitter_excluded_records_total 1")
}

func TestRun_FlagsOnlyFromStdin(t *testing.T) {
	out := t.TempDir()

	opts, err := parseFlags([]string{
		"-out", out,
		"-set-count", "2",
		"-identifier", "chunk",
		"-delimiter", `,`,
		"-split-pattern", `^(\w+)/`,
	}, os.Stderr)
	require.NoError(t, err)

	stdin := strings.NewReader("a/1\nb/1\na/2\na/3\n")
	require.NoError(t, run(t.Context(), opts, stdin))

	assert.Equal(t, map[string]string{
		"chunk.a.a": "a/1,a/2,",
		"chunk.a.b": "a/3,",
		"chunk.b.a": "b/1,",
	}, readDir(t, out))
}

func TestRun_WeightBudget(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	cfgPath := writeFile(t, dir, "split.yaml", `
weight_budget: 100
max_records: 10
weights: {r1: 60, r2: 50, r3: 200}
records: [r1, r2, r3]
`)

	opts, err := parseFlags([]string{"-config", cfgPath, "-out", out}, os.Stderr)
	require.NoError(t, err)
	require.NoError(t, run(t.Context(), opts, strings.NewReader("")))

	assert.Equal(t, map[string]string{
		"set.a.200": "r3\n",
		"set.b.60":  "r1\n",
		"set.c.50":  "r2\n",
	}, readDir(t, out))
}

func TestRun_SourceWithExclusions(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	src := writeFile(t, dir, "records.txt", "keep/1\nskip/2\nkeep/3\n")
	cfgPath := writeFile(t, dir, "split.yaml", fmt.Sprintf(`
source: %q
record_count: 10
exclude:
  patterns: ["^skip/"]
  records: [keep/3]
`, src))
	metricsFile := filepath.Join(dir, "splitter.prom")

	opts, err := parseFlags([]string{"-config", cfgPath, "-out", out, "-metrics-file", metricsFile}, os.Stderr)
	require.NoError(t, err)
	require.NoError(t, run(t.Context(), opts, strings.NewReader("ignored\n")))

	assert.Equal(t, map[string]string{"set.a": "keep/1\n"}, readDir(t, out))

	b, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "record_splitter_excluded_records_total 2")
}

func TestRun_FileNameCollision(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	opts, err := parseFlags([]string{"-out", out, "-set-count", "1", "-split-pattern", `^([\w/]+)\.`}, os.Stderr)
	require.NoError(t, err)

	err = run(t.Context(), opts, strings.NewReader("a/b.1\na__b.2\n"))
	assert.ErrorIs(t, err, writer.ErrNameCollision)

	_, err = os.Stat(out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	opts, err := parseFlags([]string{"-out", out, "-record-count", "1", "-dry-run"}, os.Stderr)
	require.NoError(t, err)
	require.NoError(t, run(t.Context(), opts, strings.NewReader("a\nb\n")))

	_, err = os.Stat(out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_ConfigErrors(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]error{
		"unknown: 1\n":                      group.ErrUnknownKey,
		"record_count: 0\n":                 group.ErrInvalidNumber,
		"record_count: 1\nset_count: 1\n":   group.ErrConflictingPolicy,
		"groups: [{identifier: nothing}]\n": group.ErrNoRecordSource,
		"records: foo\n":                    group.ErrInvalidType,
		"set_count: 1\nset_count: 2\n":      group.ErrDuplicateKey,
		"weights: {a: .nan}\n":              group.ErrInvalidWeights,
	}

	i := 0
	for content, want := range cases {
		i++
		cfgPath := writeFile(t, dir, fmt.Sprintf("bad%d.yaml", i), content)

		opts, err := parseFlags([]string{"-config", cfgPath, "-out", dir}, os.Stderr)
		require.NoError(t, err)

		err = run(t.Context(), opts, strings.NewReader("a\n"))
		assert.ErrorIs(t, err, want, content)
		assert.Equal(t, exitConfig, exitCode(err), content)
	}
}

func TestRun_ZeroFlagRejected(t *testing.T) {
	opts, err := parseFlags([]string{"-record-count", "0", "-dry-run"}, os.Stderr)
	require.NoError(t, err)

	err = run(t.Context(), opts, strings.NewReader("a\n"))
	assert.ErrorIs(t, err, group.ErrInvalidNumber)
}

func TestRun_KafkaNeedsBrokerAndTopic(t *testing.T) {
	opts, err := parseFlags([]string{"-out", t.TempDir(), "-kafka-topic", "sets"}, os.Stderr)
	require.NoError(t, err)

	err = run(t.Context(), opts, strings.NewReader("a\n"))
	assert.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "\n", unescape(`\n`))
	assert.Equal(t, "\t", unescape(`\t`))
	assert.Equal(t, ";", unescape(";"))
	assert.Equal(t, `"`, unescape(`"`))
}
