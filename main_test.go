package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonlens/internal/config"
	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/logging"
)

// testApp returns an App writing into buffers, with CLI restored afterwards.
func testApp(t *testing.T, cfg *config.Config) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	originalCLI := CLI
	t.Cleanup(func() { CLI = originalCLI })

	if cfg == nil {
		cfg = config.NewConfig()
	}
	var stdout, stderr bytes.Buffer
	return &App{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: logging.Discard(),
		stdout: &stdout,
		stderr: &stderr,
	}, &stdout, &stderr
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatCmd(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{"a":1,"b":[true,null]}`)

	require.NoError(t, (&FormatCmd{}).Run(app))
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    true,\n    null\n  ]\n}\n", stdout.String())
}

func TestFormatCmd_ConfiguredIndent(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Format.Indent = "\t"
	app, stdout, _ := testApp(t, cfg)
	CLI.Input = writeInput(t, `{"a":1}`)

	require.NoError(t, (&FormatCmd{}).Run(app))
	assert.Equal(t, "{\n\t\"a\": 1\n}\n", stdout.String())
}

func TestFormatCmd_InvalidJSON(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{"a":`)

	err := (&FormatCmd{}).Run(app)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidJSON)
	assert.Empty(t, stdout.String())
}

func TestMinifyCmd(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, "{\n  \"a\": [1, 2],\n  \"b\": \"x y\"\n}")

	require.NoError(t, (&MinifyCmd{}).Run(app))
	assert.Equal(t, "{\"a\":[1,2],\"b\":\"x y\"}\n", stdout.String())
}

func TestUnescapeCmd(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{\"a\":1}`)

	require.NoError(t, (&UnescapeCmd{}).Run(app))
	assert.Equal(t, "{\"a\":1}\n", stdout.String())
}

func TestTreeCmd(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{"a":1,"b":{"c":[true]}}`)

	require.NoError(t, (&TreeCmd{Depth: -1}).Run(app))
	expected := "  a: 1\n" +
		"▾ b\n" +
		"  ▾ c\n" +
		"      0: true\n"
	assert.Equal(t, expected, stdout.String())
}

func TestTreeCmd_InitialDepth(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Tree.InitialDepth = 1
	app, stdout, _ := testApp(t, cfg)
	CLI.Input = writeInput(t, `{"a":1,"b":{"c":[true]}}`)

	require.NoError(t, (&TreeCmd{}).Run(app))
	assert.Equal(t, "  a: 1\n▸ b: Object{1}\n", stdout.String())
}

func TestTreeCmd_EmptyDocument(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{}`)

	require.NoError(t, (&TreeCmd{}).Run(app))
	assert.Equal(t, "Empty JSON\n", stdout.String())
}

func TestExportCmd(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{"a":1,"b":{"c":2}}`)

	require.NoError(t, (&ExportCmd{}).Run(app))
	assert.Equal(t, "a\t\t1\nb\tc\t2\n", stdout.String())
}

func TestExportCmd_Collapse(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{"a":1,"b":{"c":2}}`)

	require.NoError(t, (&ExportCmd{Collapse: []string{"row-1"}}).Run(app))
	assert.Equal(t, "a\t1\nb\tObject{1}\n", stdout.String())
}

func TestExportCmd_CollapseUnknownRow(t *testing.T) {
	app, _, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{"a":1}`)

	err := (&ExportCmd{Collapse: []string{"row-9"}}).Run(app)
	assert.ErrorIs(t, err, errors.ErrUnknownRow)
}

func TestExportCmd_Subtree(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Input = writeInput(t, `{"a":1,"b":{"c":2,"d":{"e":3}}}`)

	require.NoError(t, (&ExportCmd{Subtree: "row-1"}).Run(app))
	assert.Equal(t, "b\tc\t\t2\n\td\te\t3\n", stdout.String())
}

func TestExportCmd_ValueModeAndKeyCase(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Export.Mode = "key"
	cfg.Export.KeyCase = "snake"
	app, stdout, _ := testApp(t, cfg)
	CLI.Input = writeInput(t, `{"userName":1,"homeAddress":{"zipCode":2}}`)

	require.NoError(t, (&ExportCmd{}).Run(app))
	assert.Equal(t, "user_name\nhome_address\tzip_code\n", stdout.String())
}

func TestExportCmd_NoRowsIsFriendly(t *testing.T) {
	app, stdout, stderr := testApp(t, nil)
	CLI.Input = writeInput(t, `[]`)

	require.NoError(t, (&ExportCmd{}).Run(app))
	assert.Empty(t, stdout.String())
	assert.Equal(t, "No visible rows to copy.\n", stderr.String())
}

func TestExportCmd_CopyDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Clipboard.Enabled = false
	app, stdout, _ := testApp(t, cfg)
	CLI.Input = writeInput(t, `{"a":1}`)

	err := (&ExportCmd{Copy: true}).Run(app)
	require.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Copy failed")
	assert.Empty(t, stdout.String())
}

func TestBrowseCmd_WatchNeedsFile(t *testing.T) {
	app, _, _ := testApp(t, nil)
	CLI.Input = ""

	err := (&BrowseCmd{Watch: true}).Run(app)
	assert.ErrorIs(t, err, errors.ErrInvalidFilePath)
}

func TestVersionCmd(t *testing.T) {
	app, stdout, _ := testApp(t, nil)

	require.NoError(t, (&VersionCmd{}).Run(app))
	assert.Equal(t, "jsonlens version "+Version+"\n", stdout.String())
}

func TestReadInput_FromStdin(t *testing.T) {
	app, _, _ := testApp(t, nil)
	originalStdin := os.Stdin
	defer func() { os.Stdin = originalStdin }()

	CLI.Input = ""

	// Create a pipe to simulate stdin
	r, w, err := os.Pipe()
	require.NoError(t, err)
	go func() {
		defer func() { _ = w.Close() }()
		_, _ = w.WriteString(`[{"item": "apple"}]`)
	}()
	os.Stdin = r
	defer func() { _ = r.Close() }()

	text, err := app.readInput()
	require.NoError(t, err)
	assert.Equal(t, `[{"item": "apple"}]`, text)
}

func TestReadInput_EmptyStdin(t *testing.T) {
	app, _, _ := testApp(t, nil)
	originalStdin := os.Stdin
	defer func() { os.Stdin = originalStdin }()

	CLI.Input = ""
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_ = w.Close()
	os.Stdin = r
	defer func() { _ = r.Close() }()

	_, err = app.readInput()
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestReadInput_Errors(t *testing.T) {
	app, _, _ := testApp(t, nil)

	CLI.Input = writeInput(t, "")
	_, err := app.readInput()
	assert.ErrorIs(t, err, errors.ErrFileEmpty)

	CLI.Input = "/non/existent/file.json"
	_, err = app.readInput()
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
}

func TestWriteOutput_ToFile(t *testing.T) {
	app, stdout, stderr := testApp(t, nil)
	CLI.Output = filepath.Join(t.TempDir(), "out.tsv")

	require.NoError(t, app.writeOutput("\tnested\tvalue\n"))

	content, err := os.ReadFile(CLI.Output)
	require.NoError(t, err)
	assert.Equal(t, "\tnested\tvalue\n", string(content), "leading tabs are kept")
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Output written to")
}

func TestWriteOutput_AddsTrailingNewline(t *testing.T) {
	app, stdout, _ := testApp(t, nil)
	CLI.Output = ""

	require.NoError(t, app.writeOutput(`{"a":1}`))
	assert.Equal(t, "{\"a\":1}\n", stdout.String())
}

func TestWriteOutput_FileError(t *testing.T) {
	app, _, _ := testApp(t, nil)
	CLI.Output = "/non/existent/dir/output.txt"

	err := app.writeOutput("x")
	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeOutput, appErr.Type)
}

func TestOverrides(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Tree.Depth = 0
	CLI.Export.Depth = 2
	CLI.Export.Mode = "value"
	CLI.Export.NoSummary = true
	CLI.Debug = true

	o := overrides("export")
	assert.Equal(t, 2, o.Depth)
	assert.Equal(t, "value", o.ExportMode)
	assert.True(t, o.NoSummary)
	assert.True(t, o.Debug)

	assert.Equal(t, 0, overrides("tree").Depth)
	assert.Equal(t, -1, overrides("format").Depth, "commands without --depth leave it unset")
}

func TestNewApp_InvalidConfig(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	path := filepath.Join(t.TempDir(), ".jsonlens.yml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  mode: csv\n"), 0o644))
	CLI.Config = path

	_, err := newApp(context.Background(), "format")
	require.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Configuration error")
}

// readInteractiveInput is exercised manually; reading a real terminal
// until EOF is not reproducible in unit tests.
func TestReadInteractiveInput_Concept(t *testing.T) {
	assert.NotNil(t, readInteractiveInput)
}
