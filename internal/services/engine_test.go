package services

import (
	"bytes"
	"path"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/filetable"
	"github.com/deploymenttheory/go-mfs/internal/fixtures"
	"github.com/deploymenttheory/go-mfs/internal/interfaces"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

func layoutFor(t *testing.T, variant types.Variant, major int) types.Layout {
	t.Helper()
	layout, err := types.Generation{Variant: variant, Major: major}.Layout()
	require.NoError(t, err)
	return layout
}

func countSeverity(items []diagnostics.Diagnostic, severity diagnostics.Severity) int {
	n := 0
	for _, d := range items {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

func paths(files []*FileNode) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func threePageImage() *fixtures.Image {
	content := make([]byte, types.ChunkSize+10)
	for i := range content {
		content[i] = byte(i * 3)
	}
	return &fixtures.Image{
		SystemPages:     1,
		DataPages:       2,
		FileRecordCount: 1,
		Files:           map[uint16][]byte{0: content},
	}
}

func TestAnalyze_ThreePageFixture(t *testing.T) {
	img := threePageImage()

	result, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).Analyze(img.MustBuild())
	require.NoError(t, err)

	assert.Equal(t, InputPartition, result.Input)
	assert.Zero(t, countSeverity(result.Diagnostics, diagnostics.SeverityAdvisory), "%v", result.Diagnostics)
	assert.Zero(t, countSeverity(result.Diagnostics, diagnostics.SeverityFatal))
	assert.Len(t, result.Pages, 3)
	assert.Equal(t, uint16(1), result.Volume.FileRecordCount)

	require.Len(t, result.LowLevelFiles, 1)
	file := result.LowLevelFiles[0]
	assert.Equal(t, types.FileStatePresent, file.State)
	assert.Len(t, file.Data, types.ChunkSize+10)
	assert.Equal(t, img.Files[0], file.Data)
	assert.Len(t, file.Chunks, 2)

	node, ok := result.File("low-level/0000-unknown")
	require.True(t, ok)
	assert.Equal(t, img.Files[0], node.Data)
}

func TestAnalyze_InvalidVolumeSignature(t *testing.T) {
	buf := threePageImage().MustBuild()
	buf[types.SystemChunksOffset] ^= 0xFF

	result, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).Analyze(buf)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidVolumeSignature)
	require.NotNil(t, result)
	assert.Empty(t, result.Files)
	assert.Nil(t, result.Volume)
	assert.Equal(t, 1, countSeverity(result.Diagnostics, diagnostics.SeverityFatal))
}

func TestAnalyze_EmptySystemArea(t *testing.T) {
	result, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).Analyze(fixtures.DataPage(0, 0x78, nil))

	assert.ErrorIs(t, err, ErrEmptySystemArea)
	assert.Empty(t, result.Files)
}

func TestAnalyze_FlippedPageHeaderByte(t *testing.T) {
	img := threePageImage()
	buf := img.MustBuild()
	buf[8] ^= 0x01

	result, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).Analyze(buf)
	require.NoError(t, err)

	require.Equal(t, 1, countSeverity(result.Diagnostics, diagnostics.SeverityAdvisory), "%v", result.Diagnostics)
	assert.Contains(t, result.Diagnostics[0].Message, "CRC-8")
	assert.Equal(t, img.Files[0], result.LowLevelFiles[0].Data)
}

func TestAnalyze_Idempotent(t *testing.T) {
	buf := homeImage().MustBuild()
	engine := NewEngine(layoutFor(t, types.VariantCSME, 11), nil)

	first, err := engine.Analyze(buf)
	require.NoError(t, err)
	second, err := engine.Analyze(buf)
	require.NoError(t, err)

	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func homeImage() *fixtures.Image {
	legacy := types.HomeLayout0x18
	protected := fixtures.File("oemp", 12)
	protected.Access |= types.AccessIntegrity

	return &fixtures.Image{
		SystemPages:     1,
		DataPages:       2,
		FileRecordCount: 20,
		Files: map[uint16][]byte{
			2: append([]byte("counter"), fixtures.EncodeIntegrityRecord(types.IntegrityLayout0x28, 3, 1)...),
			8: fixtures.EncodeHomeRecords(legacy,
				fixtures.Folder(".", 8),
				fixtures.Folder("..", 8),
				fixtures.Folder("fpf", 10),
				fixtures.File("intel.cfg", 11),
			),
			10: fixtures.EncodeHomeRecords(legacy,
				fixtures.Folder(".", 10),
				fixtures.Folder("..", 8),
				protected,
			),
			11: []byte("intel"),
			12: append([]byte("OEM!"), fixtures.EncodeIntegrityRecord(types.IntegrityLayout0x28, 5, 2)...),
			13: []byte("orphan"),
		},
	}
}

func TestAnalyze_HomeDirectory(t *testing.T) {
	result, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).Analyze(homeImage().MustBuild())
	require.NoError(t, err)

	assert.Zero(t, countSeverity(result.Diagnostics, diagnostics.SeverityAdvisory), "%v", result.Diagnostics)
	assert.Equal(t, []string{
		"home",
		"home/fpf",
		"home/fpf/oemp",
		"home/intel.cfg",
		"low-level/0002-anti-replay",
		"low-level/0008-home-directory",
		"low-level/0013-unparsed",
	}, paths(result.Files))

	oemp, ok := result.File("home/fpf/oemp")
	require.True(t, ok)
	assert.Equal(t, []byte("OEM!"), oemp.Data)
	require.NotNil(t, oemp.Integrity)
	assert.Equal(t, uint8(2), oemp.Integrity.SVN)
	assert.Equal(t, uint16(5), oemp.Integrity.ARIndex)

	counter, ok := result.File("low-level/0002-anti-replay")
	require.True(t, ok)
	assert.Equal(t, []byte("counter"), counter.Data)
	assert.NotNil(t, counter.Integrity)

	cfg, _ := result.File("home/intel.cfg")
	assert.Equal(t, []byte("intel"), cfg.Data)
	assert.Nil(t, cfg.Integrity)

	names := make([]string, 0, len(result.Records))
	for i, rec := range result.Records {
		assert.Equal(t, i, rec.Sequence)
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{".", "..", "fpf", ".", "..", "oemp", "intel.cfg"}, names)

	for _, f := range result.Files {
		base := path.Base(f.Path)
		assert.NotEqual(t, ".", base)
		assert.NotEqual(t, "..", base)
		if f.IsDirectory && f.Source == SourceHome {
			found := false
			for _, rec := range result.Records {
				if rec.Folder == f.Path && rec.Name == "." {
					found = true
				}
			}
			assert.True(t, found, "folder %s has no self record", f.Path)
		}
	}

	assert.True(t, result.ConfigState.HomeDirectory)
	assert.False(t, result.ConfigState.IntelConfig)
	assert.False(t, result.ConfigState.FileTableMode)
	assert.Equal(t, []uint16{2, 8, 10, 11, 12, 13}, result.ConfigState.PopulatedFiles)
}

func TestAnalyze_HomeDirectoryMissingAndCycle(t *testing.T) {
	img := &fixtures.Image{
		SystemPages:     1,
		DataPages:       1,
		FileRecordCount: 20,
		Files: map[uint16][]byte{
			8: fixtures.EncodeHomeRecords(types.HomeLayout0x1C,
				fixtures.Folder(".", 8),
				fixtures.File("gone", 15),
				fixtures.Folder("loop", 8),
			),
		},
	}

	result, err := NewEngine(layoutFor(t, types.VariantCSME, 12), nil).Analyze(img.MustBuild())
	require.NoError(t, err)

	assert.Equal(t, 2, countSeverity(result.Diagnostics, diagnostics.SeverityAdvisory), "%v", result.Diagnostics)
	assert.Equal(t, []string{"home", "low-level/0008-home-directory"}, paths(result.Files))
}

func TestAnalyze_FileTableMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lookup := interfaces.NewMockFileTableLookup(ctrl)
	lookup.EXPECT().ByVFSID(uint8(1), uint8(3), uint16(8)).
		Return(types.FileTableEntry{VFSID: 8, FileID: 0x2008, Path: "/home/policy/cfg", Source: types.FileTableSourceFTBL}, true)
	lookup.EXPECT().ByVFSID(uint8(1), uint8(3), uint16(10)).
		Return(types.FileTableEntry{VFSID: 10, Path: "/home/bup/ct", UserID: 0x10, Source: types.FileTableSourceEFST}, true)
	lookup.EXPECT().ByVFSID(uint8(1), uint8(3), uint16(11)).
		Return(types.FileTableEntry{}, false)

	img := &fixtures.Image{
		SystemPages:     1,
		DataPages:       1,
		FileRecordCount: 12,
		Dictionary:      3,
		Platform:        1,
		Files: map[uint16][]byte{
			8:  []byte("policy"),
			10: []byte("bup"),
			11: []byte("mystery"),
		},
	}

	result, err := NewEngine(layoutFor(t, types.VariantCSME, 13), lookup).Analyze(img.MustBuild())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"home/bup/ct",
		"home/policy/cfg",
		"low-level/0008-home-directory",
		"unknown/11",
	}, paths(result.Files))

	advisories := 0
	for _, d := range result.Diagnostics {
		if d.Severity == diagnostics.SeverityAdvisory {
			advisories++
			assert.Equal(t, diagnostics.ComponentFTBL, d.Component)
		}
	}
	assert.Equal(t, 1, advisories)

	unknown, _ := result.File("unknown/11")
	assert.Equal(t, []byte("mystery"), unknown.Data)
	ct, _ := result.File("home/bup/ct")
	assert.Equal(t, uint16(0x10), ct.OwnerUserID)
	assert.True(t, result.ConfigState.FileTableMode)
}

func TestAnalyze_ConfigFolderNesting(t *testing.T) {
	parent := fixtures.ConfigEntry{Name: "..", Access: types.AccessFolder}
	img := &fixtures.Image{
		SystemPages:     1,
		DataPages:       1,
		FileRecordCount: 10,
		Files: map[uint16][]byte{
			6: fixtures.EncodeConfigFile(types.ConfigLayout0x1C,
				fixtures.ConfigFolder("mca"),
				fixtures.ConfigFile("eom", []byte{1, 2}),
				fixtures.ConfigFolder("sub"),
				fixtures.ConfigFile("deep", []byte{3}),
				parent,
				parent,
				fixtures.ConfigFile("top", []byte{4}),
			),
		},
	}

	result, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).Analyze(img.MustBuild())
	require.NoError(t, err)

	assert.Zero(t, countSeverity(result.Diagnostics, diagnostics.SeverityAdvisory), "%v", result.Diagnostics)
	assert.Equal(t, []string{
		"intel-config/mca",
		"intel-config/mca/eom",
		"intel-config/mca/sub",
		"intel-config/mca/sub/deep",
		"intel-config/top",
		"low-level/0006-intel-configuration",
	}, paths(result.Files))

	for p, want := range map[string][]byte{
		"intel-config/mca/eom":      {1, 2},
		"intel-config/mca/sub/deep": {3},
		"intel-config/top":          {4},
	} {
		node, ok := result.File(p)
		require.True(t, ok, p)
		assert.Equal(t, want, node.Data, p)
	}

	dir, _ := result.File("intel-config/mca/sub")
	assert.True(t, dir.IsDirectory)
	assert.Len(t, result.Records, 7)
	assert.True(t, result.ConfigState.IntelConfig)
}

func TestAnalyze_ConfigFileIDs(t *testing.T) {
	dictionary := filetable.New()
	dictionary.Add(1, 3, filetable.Table{
		FTBL: []types.FileTableEntry{{FileID: 0x1004, VFSID: 12, Path: "/home/mca/eom"}},
	})

	img := &fixtures.Image{
		SystemPages:     1,
		DataPages:       1,
		FileRecordCount: 10,
		Dictionary:      3,
		Platform:        1,
		Files: map[uint16][]byte{
			7: fixtures.EncodeConfigFile(types.ConfigLayout0xC,
				fixtures.ConfigID(0x1004, []byte{9, 9}),
				fixtures.ConfigID(0x9999, []byte{7}),
			),
		},
	}

	result, err := NewEngine(layoutFor(t, types.VariantCSSPS, 6), dictionary).Analyze(img.MustBuild())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"low-level/0007-oem-configuration",
		"oem-config/home/mca/eom",
		"unknown/39321",
	}, paths(result.Files))
	assert.Equal(t, 1, countSeverity(result.Diagnostics, diagnostics.SeverityAdvisory), "%v", result.Diagnostics)

	eom, _ := result.File("oem-config/home/mca/eom")
	assert.Equal(t, []byte{9, 9}, eom.Data)
	assert.Equal(t, uint32(0x1004), eom.FileID)
	assert.True(t, result.ConfigState.OEMConfig)
}

func TestAnalyze_ManifestBackup(t *testing.T) {
	manifest := make([]byte, 0x40)
	copy(manifest[types.ManifestTagOffset:], types.ManifestTag)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"tagged", manifest, "low-level/0009-manifest-backup"},
		{"untagged", bytes.Repeat([]byte{1}, 0x40), "low-level/0009-unparsed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &fixtures.Image{SystemPages: 1, DataPages: 1, FileRecordCount: 10, Files: map[uint16][]byte{9: tt.data}}
			result, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).Analyze(img.MustBuild())
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, paths(result.Files))
		})
	}
}

func TestAnalyzeBackup_Revision0(t *testing.T) {
	partition := homeImage().MustBuild()
	container := fixtures.EncodeBackupR0(fixtures.SplitBackupR0(partition, 16))
	engine := NewEngine(layoutFor(t, types.VariantCSME, 11), nil)

	direct, err := engine.Analyze(partition)
	require.NoError(t, err)
	restored, err := engine.AnalyzeBackup(container)
	require.NoError(t, err)

	assert.Equal(t, InputBackupR0, restored.Input)
	assert.Equal(t, direct.Files, restored.Files)
	assert.Equal(t, direct.Diagnostics, restored.Diagnostics)
}

func TestAnalyzeBackup_Revision1WrongDataCRC(t *testing.T) {
	manifest := make([]byte, 0x40)
	copy(manifest[types.ManifestTagOffset:], types.ManifestTag)

	container := fixtures.EncodeBackupR1WrongDataCRC([types.BackupEntryCount][]byte{
		fixtures.EncodeConfigFile(types.ConfigLayout0x1C, fixtures.ConfigFile("setup", []byte("abc"))),
		fixtures.EncodeConfigFile(types.ConfigLayout0x1C),
		manifest,
	}, 1)

	result, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).AnalyzeBackup(container)
	require.NoError(t, err)

	assert.Equal(t, InputBackupR1, result.Input)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, diagnostics.SeverityAdvisory, result.Diagnostics[0].Severity)
	assert.Contains(t, result.Diagnostics[0].Message, "OEM_CONFIG")

	assert.Equal(t, []string{
		"intel-config/setup",
		"low-level/0006-intel-configuration",
		"low-level/0007-oem-configuration",
		"low-level/0009-manifest-backup",
	}, paths(result.Files))

	setup, _ := result.File("intel-config/setup")
	assert.Equal(t, []byte("abc"), setup.Data)
	assert.Nil(t, result.Volume)
}

func TestAnalyzeBackup_BadSignature(t *testing.T) {
	_, err := NewEngine(layoutFor(t, types.VariantCSME, 11), nil).AnalyzeBackup(make([]byte, 64))
	assert.Error(t, err)
}
