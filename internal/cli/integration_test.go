package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = "../../testdata/config.json"

// runCLI runs the binary from source and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestCLI_FormatFileToFile tests the CLI with file input and output
func TestCLI_FormatFileToFile(t *testing.T) {
	tempDir := t.TempDir()
	outputFile := filepath.Join(tempDir, "out.json")

	_, stderr, err := runCLI(t, "", "format", "-i", sampleFile, "-o", outputFile)
	require.NoError(t, err, "CLI command failed: %s", stderr)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	out := string(content)
	assert.True(t, strings.HasPrefix(out, "{\n  \"name\": \"app\",\n"))
	assert.Contains(t, out, "\"ratio\": 1.50", "number literals are preserved")
	assert.Contains(t, stderr, "Output written to")
}

func TestCLI_DefaultCommandReadsStdin(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{"b":1,"a":[]}`)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": []\n}\n", stdout)
}

func TestCLI_Minify(t *testing.T) {
	stdout, stderr, err := runCLI(t, "", "minify", "-i", sampleFile)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t,
		`{"name":"app","config":{"port":8080,"tls":{"on":true,"cert":null}},"tags":["a","b"],"ratio":1.50}`+"\n",
		stdout)
}

func TestCLI_Unescape(t *testing.T) {
	stdout, stderr, err := runCLI(t, "", "unescape", "-i", "../../testdata/escaped.txt")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, `{"user":{"name":"Ann","roles":["admin"]}}`+"\n", stdout)

	stdout, stderr, err = runCLI(t, "", "unescape", "-i", "../../testdata/escaped_fragment.txt")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, `{"a":"b\\c"}`+"\n", stdout)
}

func TestCLI_Tree(t *testing.T) {
	stdout, stderr, err := runCLI(t, "", "tree", "-i", sampleFile, "--depth", "1")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	expected := "  name: \"app\"\n" +
		"▸ config: Object{2}\n" +
		"▸ tags: Array(2)\n" +
		"  ratio: 1.50\n"
	assert.Equal(t, expected, stdout)
}

func TestCLI_TreeEmpty(t *testing.T) {
	stdout, stderr, err := runCLI(t, "[]", "tree")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "Empty JSON\n", stdout)
}

func TestCLI_Export(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{"a":1,"b":{"c":2}}`, "export")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "a\t\t1\nb\tc\t2\n", stdout)
}

func TestCLI_ExportCollapseAndModes(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "collapse",
			args:     []string{"--collapse", "row-1,row-6"},
			expected: "name\t\"app\"\nconfig\tObject{2}\ntags\tArray(2)\nratio\t1.50\n",
		},
		{
			name:     "key mode",
			args:     []string{"--mode", "key", "--depth", "2"},
			expected: "name\nconfig\tport\n\ttls\ntags\t0\n\t1\nratio\n",
		},
		{
			name:     "value mode",
			args:     []string{"--mode", "value", "--depth", "1"},
			expected: "\"app\"\n1.50\n",
		},
		{
			name:     "no summary",
			args:     []string{"--depth", "1", "--no-summary"},
			expected: "name\t\"app\"\nconfig\t\ntags\t\nratio\t1.50\n",
		},
		{
			name:     "subtree",
			args:     []string{"--subtree", "row-3", "--key-case", "camel"},
			expected: "\tTls\tOn\ttrue\n\t\tCert\tnull\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"export", "-i", sampleFile}, tt.args...)
			stdout, stderr, err := runCLI(t, "", args...)
			require.NoError(t, err, "CLI command failed: %s", stderr)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestCLI_ExportNoRows(t *testing.T) {
	stdout, stderr, err := runCLI(t, "{}", "export")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "No visible rows to copy.")
}

func TestCLI_ExportInvalidMode(t *testing.T) {
	_, stderr, err := runCLI(t, `{"a":1}`, "export", "--mode", "csv")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Configuration error")
}

func TestCLI_ConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	cfgPath := filepath.Join(tempDir, "jsonlens.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("export:\n  mode: key\n  key_case: kebab\n"), 0o644))

	stdout, stderr, err := runCLI(t, `{"firstName":1}`, "export", "-c", cfgPath)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "first-name\n", stdout)
}

func TestCLI_InvalidJSON(t *testing.T) {
	_, stderr, err := runCLI(t, `{"name": "John", "age": 30,}`, "format")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Invalid JSON")
}

func TestCLI_MultipleValues(t *testing.T) {
	_, stderr, err := runCLI(t, `{"a":1} {"b":2}`, "export")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Invalid JSON")
}

func TestCLI_MissingFile(t *testing.T) {
	_, stderr, err := runCLI(t, "", "tree", "-i", "/non/existent.json")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Input error")
}

func TestCLI_Version(t *testing.T) {
	stdout, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "jsonlens version")
}

func TestCLI_Help(t *testing.T) {
	stdout, _, err := runCLI(t, "", "--help")
	require.NoError(t, err)
	for _, cmd := range []string{"format", "minify", "unescape", "tree", "export", "browse"} {
		assert.Contains(t, stdout, cmd)
	}
}
