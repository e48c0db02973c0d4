package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-mfs/internal/config"
	"github.com/deploymenttheory/go-mfs/internal/fixtures"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

func writeImage(t *testing.T) string {
	t.Helper()
	img := &fixtures.Image{
		SystemPages:     1,
		DataPages:       1,
		FileRecordCount: 12,
		Files: map[uint16][]byte{
			8: fixtures.EncodeHomeRecords(types.HomeLayout0x18,
				fixtures.Folder(".", 8),
				fixtures.File("setting", 10),
			),
			10: []byte("value"),
		},
	}
	p := filepath.Join(t.TempDir(), "mfs.bin")
	require.NoError(t, os.WriteFile(p, img.MustBuild(), 0o644))
	return p
}

func TestExtractCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	image := writeImage(t)
	dest := filepath.Join(t.TempDir(), "out")
	db := filepath.Join(t.TempDir(), "records.db")

	rootCmd.SetArgs([]string{"extract", image, "-q", "--variant", "CSME", "--major", "11", "--dest", dest, "--record-db", db})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(filepath.Join(dest, "home", "setting"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), data)

	_, err = os.Stat(db)
	assert.NoError(t, err)
}

func TestAnalyzeCommand_RejectsUnknownGeneration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	image := writeImage(t)

	rootCmd.SetArgs([]string{"analyze", image, "-q", "--variant", "CSME", "--major", "8"})
	assert.Error(t, rootCmd.Execute())
}

func TestAnalyzeCommand_RejectsUnknownFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	image := writeImage(t)

	rootCmd.SetArgs([]string{"analyze", image, "-q", "--major", "11", "-o", "xml"})
	assert.Error(t, rootCmd.Execute())
}

func TestNewContext_VerbosePrintsProgress(t *testing.T) {
	defer func(v, q bool) { verbose, quiet = v, q }(verbose, quiet)
	quiet = false
	cfg := &config.Config{OutputFormat: "table"}

	verbose = false
	assert.Nil(t, newContext(rootCmd, cfg).ProgressCallback)

	verbose = true
	ctx := newContext(rootCmd, cfg)
	var buf bytes.Buffer
	ctx.Stderr = &buf
	ctx.Progress("Exporting...", 80)
	assert.Equal(t, "[ 80%] Exporting...\n", buf.String())
	assert.NoError(t, ctx.Err())
}
