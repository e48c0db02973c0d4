package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationLayout(t *testing.T) {
	tests := []struct {
		gen  Generation
		want Layout
	}{
		{Generation{Variant: VariantCSME, Major: 11}, Layout{Home: HomeLayout0x18, Integrity: IntegrityLayout0x28, Config: ConfigLayout0x1C}},
		{Generation{Variant: VariantCSTXE, Major: 3}, Layout{Home: HomeLayout0x18, Integrity: IntegrityLayout0x28, Config: ConfigLayout0x1C}},
		{Generation{Variant: VariantCSSPS, Major: 4}, Layout{Home: HomeLayout0x18, Integrity: IntegrityLayout0x28, Config: ConfigLayout0x1C}},
		{Generation{Variant: VariantCSME, Major: 12}, Layout{Home: HomeLayout0x1C, Integrity: IntegrityLayout0x34, Config: ConfigLayout0x1C, QuotaIntegrity: true}},
		{Generation{Variant: VariantCSME, Major: 15}, Layout{Home: HomeLayout0x1C, Integrity: IntegrityLayout0x34, Config: ConfigLayout0xC, QuotaIntegrity: true}},
		{Generation{Variant: VariantCSSPS, Major: 6}, Layout{Home: HomeLayout0x1C, Integrity: IntegrityLayout0x34, Config: ConfigLayout0xC, QuotaIntegrity: true}},
	}

	for _, tt := range tests {
		t.Run(tt.gen.String(), func(t *testing.T) {
			got, err := tt.gen.Layout()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Generation{Variant: VariantCSME, Major: 10}.Layout()
	assert.ErrorIs(t, err, ErrUnknownGeneration)
}

func TestParseVariant(t *testing.T) {
	for name, want := range map[string]Variant{"CSME": VariantCSME, " me ": VariantCSME, "txe": VariantCSTXE, "SPS": VariantCSSPS} {
		got, err := ParseVariant(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseVariant("AMT")
	assert.ErrorIs(t, err, ErrUnknownGeneration)
}

func TestRoleForIndex(t *testing.T) {
	assert.Equal(t, RoleUnknown, RoleForIndex(0))
	assert.Equal(t, RoleAntiReplay, RoleForIndex(3))
	assert.Equal(t, RoleHomeDirectory, RoleForIndex(8))
	assert.Equal(t, RoleUnparsed, RoleForIndex(42))
	assert.Equal(t, "svn-migration", RoleSVNMigration.Slug())

	assert.True(t, RoleSVNMigration.CarriesIntegrity(Layout{}))
	assert.False(t, RoleQuotaStorage.CarriesIntegrity(Layout{}))
	assert.True(t, RoleQuotaStorage.CarriesIntegrity(Layout{QuotaIntegrity: true}))
	assert.False(t, RoleHomeDirectory.CarriesIntegrity(Layout{QuotaIntegrity: true}))
}

func TestIsManifestBackup(t *testing.T) {
	data := make([]byte, 0x40)
	assert.False(t, IsManifestBackup(data))
	copy(data[ManifestTagOffset:], ManifestTag)
	assert.True(t, IsManifestBackup(data))
	assert.False(t, IsManifestBackup(data[:ManifestTagOffset+2]))
}

func TestAccessMode(t *testing.T) {
	a := AccessFolder | AccessIntegrity | 0o750
	assert.True(t, a.IsFolder())
	assert.True(t, a.HasIntegrity())
	assert.False(t, a.HasEncryption())
	assert.Equal(t, uint16(0o750), a.UnixRights())
	assert.Equal(t, "drwxr-x---", a.RightsString())
	assert.Equal(t, uint16(5), (AccessMode(0xA000) | 0o644).Reserved())
}

func TestNewGeometry(t *testing.T) {
	g := NewGeometry(12, 1, 10)
	assert.Equal(t, 1, g.SystemPageCount)
	assert.Equal(t, 10, g.DataPageCount)
	assert.Equal(t, SystemPageChunks, g.SystemChunks)
	assert.Equal(t, 10*DataPageChunks, g.DataChunks)
	assert.Equal(t, uint32((SystemPageChunks+10*DataPageChunks)*ChunkSize), g.ExpectedVolumeSize())
}
