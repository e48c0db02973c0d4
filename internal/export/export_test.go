package export

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/services"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

func sampleResult() *services.Result {
	return &services.Result{
		Input: services.InputPartition,
		Files: []*services.FileNode{
			{Path: "home", Source: services.SourceHome, IsDirectory: true, LowLevelIndex: 8},
			{Path: "home/fpf/oemp", Source: services.SourceHome, LowLevelIndex: 12, Data: []byte("OEM!"),
				Integrity: &types.IntegrityRecord{ARIndex: 5, SVN: 2}},
			{Path: "intel-config/mca", Source: services.SourceIntelConfig, IsDirectory: true, LowLevelIndex: -1},
			{Path: "low-level/0008-home-directory", Source: services.SourceLowLevel, LowLevelIndex: 8, Data: make([]byte, 96)},
		},
		Records: []services.VisitedRecord{
			{Sequence: 0, Source: services.SourceHome, Folder: "home", Name: ".", Type: types.RecordTypeFolder, FileID: 8},
			{Sequence: 1, Source: services.SourceHome, Folder: "home", Name: "fpf", Type: types.RecordTypeFolder, FileID: 10},
			{Sequence: 2, Source: services.SourceHome, Folder: "home/fpf", Name: "oemp", FileID: 12},
		},
		Diagnostics: []diagnostics.Diagnostic{
			{Severity: diagnostics.SeverityInfo, Component: diagnostics.ComponentChunks, Message: "all chunks validated"},
			{Severity: diagnostics.SeverityAdvisory, Component: diagnostics.ComponentPages, Message: "page header CRC-8 mismatch"},
		},
	}
}

func TestTreeWriter_WritesEveryFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	result := sampleResult()

	stats, err := NewTreeWriter(fs, "/out").Write(result.Files)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Directories)
	assert.Equal(t, int64(100), stats.Bytes)

	data, err := afero.ReadFile(fs, "/out/home/fpf/oemp")
	require.NoError(t, err)
	assert.Equal(t, []byte("OEM!"), data)

	isDir, err := afero.IsDir(fs, "/out/intel-config/mca")
	require.NoError(t, err)
	assert.True(t, isDir)

	info, err := fs.Stat("/out/low-level/0008-home-directory")
	require.NoError(t, err)
	assert.Equal(t, int64(96), info.Size())
}

func TestTreeWriter_StaysBelowRoot(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := NewTreeWriter(fs, "/out").Write([]*services.FileNode{{Path: "../../etc/passwd", Data: []byte("x")}})
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "/out/etc/passwd")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, _ = afero.Exists(fs, "/etc/passwd")
	assert.False(t, exists)
}

func TestTreeWriter_RejectsEmptyPath(t *testing.T) {
	_, err := NewTreeWriter(afero.NewMemMapFs(), "/out").Write([]*services.FileNode{{Path: ".."}})
	assert.Error(t, err)
}

func TestWriteRecordDB_RowCounts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "records.db")
	result := sampleResult()

	counts, err := WriteRecordDB(dbPath, result)
	require.NoError(t, err)
	assert.Equal(t, RecordCounts{Files: 4, Records: 3, Diagnostics: 2}, counts)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	for table, want := range map[string]int{"files": 4, "records": 3, "diagnostics": 2} {
		var got int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&got))
		assert.Equal(t, want, got, table)
	}

	var svn sql.NullInt64
	require.NoError(t, db.QueryRow("SELECT svn FROM files WHERE path = ?", "home/fpf/oemp").Scan(&svn))
	assert.True(t, svn.Valid)
	assert.Equal(t, int64(2), svn.Int64)

	var severity string
	require.NoError(t, db.QueryRow("SELECT severity FROM diagnostics WHERE component = ?", diagnostics.ComponentPages).Scan(&severity))
	assert.Equal(t, "ADVISORY", severity)
}

func TestWriteRecordDB_ReplacesTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "records.db")

	_, err := WriteRecordDB(dbPath, sampleResult())
	require.NoError(t, err)
	counts, err := WriteRecordDB(dbPath, &services.Result{})
	require.NoError(t, err)
	assert.Equal(t, RecordCounts{}, counts)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var got int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM files").Scan(&got))
	assert.Zero(t, got)
}
