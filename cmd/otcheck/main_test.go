package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/otcheck/pkg/adapters/fs"
)

// run executes the root command with args. Flags are package level, so every
// call names the flags it depends on.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	ops := `[{"op":"skip","count":2},{"op":"insert","chars":"X"}]`

	out, err := run(t, "", "validate", "--start", "abc", "--end", "abXc", "--ops", ops, "--real=true")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, ops, "validate", "--start", "abc", "--end", "abc", "--ops", "-", "--real=true")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	path := filepath.Join(t.TempDir(), "ops.json")
	require.NoError(t, os.WriteFile(path, []byte(ops), 0644))
	out, err = run(t, "", "validate", "--start", "abc", "--end", "abc", "--ops", "@"+path, "--real=false")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = run(t, "", "validate", "--start", "a", "--end", "a", "--ops", `[{"op":"skip"}]`, "--real=true")
	assert.Error(t, err)
}

func TestReplayCommand(t *testing.T) {
	out, err := run(t, "", "replay", "--start", "ab", "--ops", `[{"op":"delete","count":5}]`, "--json=true")
	require.NoError(t, err)

	var got struct {
		Buffer   string `json:"buffer"`
		Valid    bool   `json:"valid"`
		FailedAt int    `json:"failed_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "", got.Buffer)
	assert.False(t, got.Valid)
	assert.Equal(t, 0, got.FailedAt)

	out, err = run(t, "", "replay", "--start", "ab", "--ops", `[{"op":"delete","count":1}]`, "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, `buffer:    "b"`)
}

func TestApplyCommand(t *testing.T) {
	out, err := run(t, "", "apply", "--contents", "hello", "--ops", `[{"op":"skip","count":5},{"op":"insert","chars":"!"}]`)
	require.NoError(t, err)
	assert.Equal(t, "hello!", out)

	_, err = run(t, "", "apply", "--contents", "hi", "--ops", `[{"op":"delete","count":3}]`)
	assert.Error(t, err)
}

func TestDiffCommand(t *testing.T) {
	out, err := run(t, "", "diff", "--format", "json", "--case", "", "abc", "abXc")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"op":"skip","count":2},{"op":"insert","chars":"X"}]`, out)
}

func TestDiffCommand_FormatFromEnv(t *testing.T) {
	t.Setenv("OTCHECK_FORMAT", "yaml")
	// Earlier runs may have set --format; start from a pristine flag.
	flag := rootCmd.PersistentFlags().Lookup("format")
	require.NoError(t, flag.Value.Set("json"))
	flag.Changed = false

	out, err := run(t, "", "diff", "--case", "", "abc", "abXc")
	require.NoError(t, err)
	assert.Contains(t, out, "- op: skip")
	assert.Contains(t, out, "chars: X")

	out, err = run(t, "", "diff", "--format", "toml", "--case", "", "abc", "abXc")
	require.NoError(t, err)
	assert.Contains(t, out, "[[ops]]")
}

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	res := &fs.Result{Path: "bad.json", Err: errors.New("decode: boom"), Error: "decode: boom"}
	printEvent(&out, fs.Event{Type: fs.EventVerify, Path: "bad.json", Result: res})

	assert.Contains(t, out.String(), "VERIFY bad.json FAIL")
	assert.Contains(t, out.String(), "decode: boom")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.json"),
		[]byte(`{"start":"ab","end":"b","ops":[{"op":"delete","count":1}],"real":true}`), 0644))

	out, err := run(t, "", "check", "--format", "json", "--json=false", "--pattern", "", "--no-cache=true", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok    ok.json")
	assert.Contains(t, out, "1 cases, 0 failed")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"),
		[]byte(`{"start":"ab","end":"ab","ops":[],"real":false}`), 0644))

	out, err = run(t, "", "check", "--format", "json", "--json=false", "--pattern", "", "--no-cache=true", dir)
	assert.True(t, errors.Is(err, errCheckFailed))
	assert.Contains(t, out, "FAIL  bad.json")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "otcheck version "))
}
