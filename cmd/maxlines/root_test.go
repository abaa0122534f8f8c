package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/maxlines/internal/config"
	"github.com/rusq/maxlines/internal/emit"
	"github.com/rusq/maxlines/internal/run"
)

func executeCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func decodeRecords(t *testing.T, out string) []emit.Record {
	t.Helper()
	var recs []emit.Record
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var rec emit.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), "line: %s", sc.Text())
		recs = append(recs, rec)
	}
	return recs
}

func TestRootCmd_ndjson(t *testing.T) {
	path := writeTemp(t, "app.log", "1\n2\r\n3\n4\n5")

	out, _, err := executeCmd(t, "", "-n", "2", "--log-level", "error", path)
	require.NoError(t, err)

	recs := decodeRecords(t, out)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"1", "2"}, recs[0].Lines)
	assert.Equal(t, []string{"3", "4"}, recs[1].Lines)
	assert.Equal(t, []string{"5"}, recs[2].Lines)
	for i, rec := range recs {
		assert.Equal(t, path, rec.Input)
		assert.Equal(t, i+1, rec.Seq)
		assert.NotZero(t, rec.ID)
	}
}

func TestRootCmd_stdinText(t *testing.T) {
	out, _, err := executeCmd(t, "a\r\nb\n\nc", "--format", "text", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n\nc\n", out)
}

func TestRootCmd_configFile(t *testing.T) {
	cfgPath := writeTemp(t, "maxlines.yaml", "max_lines: 1\nformat: text\nlog_level: error\n")
	path := writeTemp(t, "in.txt", "x\ny\n")

	out, _, err := executeCmd(t, "", "--config", cfgPath, path)
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", out)

	// flags win over the file
	out, _, err = executeCmd(t, "", "--config", cfgPath, "--format", "ndjson", path)
	require.NoError(t, err)
	recs := decodeRecords(t, out)
	require.Len(t, recs, 2)
}

func TestRootCmd_validateUTF8(t *testing.T) {
	out, _, err := executeCmd(t, "ok\n\xff\nnext\n", "--validate-utf8", "--log-level", "error")
	require.NoError(t, err)

	recs := decodeRecords(t, out)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"ok", "next"}, recs[0].Lines)
	require.Len(t, recs[0].Errors, 1)
	assert.Equal(t, 1, recs[0].Errors[0].Pos)
}

func TestRootCmd_summary(t *testing.T) {
	_, stderr, err := executeCmd(t, "a\nb\nc\n", "-n", "2", "--summary", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stderr, "batches: 2")
	assert.Contains(t, stderr, "lines: 3")
}

func TestRootCmd_errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero batch size", []string{"-n", "0"}},
		{"bad format", []string{"--format", "xml"}},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}},
		{"missing input", []string{filepath.Join(t.TempDir(), "nope.log")}},
		{"bad encoding", []string{"--encoding", "klingon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCmd(t, "", append(tt.args, "--log-level", "disabled")...)
			assert.Error(t, err)
		})
	}
}

func Test_applyFlags(t *testing.T) {
	var flags config.Config
	fl := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fl.IntVarP(&flags.MaxLines, "max-lines", "n", config.DefaultMaxLines, "")
	fl.StringVar(&flags.Encoding, "encoding", "", "")
	fl.StringVar(&flags.Format, "format", config.FormatNDJSON, "")
	require.NoError(t, fl.Parse([]string{"-n", "7", "--encoding", "koi8-r"}))

	cfg := config.Default()
	cfg.Format = config.FormatText
	applyFlags(fl, cfg, &flags)

	assert.Equal(t, 7, cfg.MaxLines)
	assert.Equal(t, "koi8-r", cfg.Encoding)
	// not set on the command line, the config value stays
	assert.Equal(t, config.FormatText, cfg.Format)
}

func Test_printSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, run.Stats{Inputs: 1, Batches: 2, Lines: 3, Failed: 1}, false)
	assert.Equal(t, "inputs: 1\nbatches: 2\nlines: 3\nfailed: 1\nabandoned: 0\n", buf.String())

	buf.Reset()
	printSummary(&buf, run.Stats{Lines: 3}, true)
	assert.Contains(t, buf.String(), "lines")
	assert.Contains(t, buf.String(), "3")
}
