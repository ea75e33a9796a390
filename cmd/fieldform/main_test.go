package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/fieldform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fieldform version "+strings.TrimSpace(fieldform.Version)+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
name: plot
kind: entity
children:
  - name: area
    kind: number
`), 0o644))

	out, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, `"plot" has 2 definitions`)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
name: plot
kind: entity
children:
  - name: land_use
    kind: code
  - name: tree
    kind: entity
`), 0o644))

	_, errOut, err := execute(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, errOut, "no code items")
	assert.Contains(t, errOut, "entity has no children")
}
