package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/pulse/internal/config"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersionShort(t *testing.T) {
	assert.Equal(t, version+"\n", execute(t, "version", "--short"))
}

func TestVersionLong(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "Version:    "+version)
	assert.Contains(t, out, "Go version:")
}

func TestDemo(t *testing.T) {
	out := execute(t, "demo")

	lines := []string{
		"double -> 4",
		"double -> 10",
		"count.Set(5): double=10 recomputed=true",
		"count.Set(5): double=10 recomputed=false",
		"double -> 0",
		"count.Set(0): double=0 recomputed=true",
		"batched -> 0",
		"1 flush pending",
		"batched -> 2",
	}
	last := -1
	for _, line := range lines {
		i := strings.Index(out, line)
		if assert.GreaterOrEqual(t, i, 0, "missing %q in:\n%s", line, out) {
			assert.Greater(t, i, last, "%q out of order", line)
			last = i
		}
	}
	assert.NotContains(t, out, "batched -> 1")
}

func TestLoadConfig(t *testing.T) {
	_, err := loadConfig(t.TempDir())
	assert.Error(t, err, "an explicit directory without pulse.json should fail")

	dir := t.TempDir()
	cfg := config.New()
	cfg.Server.Port = 9100
	require.NoError(t, cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)))

	loaded, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 9100, loaded.Server.Port)
}

func TestErrorsList(t *testing.T) {
	out := execute(t, "errors")
	assert.Contains(t, out, "E101  runtime   Computed value is read-only")
	assert.Contains(t, out, "E123  protocol  Unknown action")
	assert.Less(t, strings.Index(out, "E101"), strings.Index(out, "E140"))
}

func TestErrorsExplainWithoutColor(t *testing.T) {
	t.Cleanup(func() { setColors(true) })

	out := execute(t, "--no-color", "errors", "e120")
	assert.Contains(t, out, "ERROR E120: Unknown cell")
	assert.Contains(t, out, "https://vango.dev/docs/pulse/errors/E120")
	assert.NotContains(t, out, "\033[")
}

func TestErrorsUnknownCode(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"errors", "E999"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E999")
}

func TestSuccessHonorsColors(t *testing.T) {
	t.Cleanup(func() { setColors(true) })

	var buf bytes.Buffer
	setColors(false)
	success(&buf, "served %d cells", 2)
	assert.Equal(t, "✓ served 2 cells\n", buf.String())

	buf.Reset()
	setColors(true)
	success(&buf, "served %d cells", 2)
	assert.Contains(t, buf.String(), "\033[32m")
}
