package records

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/fixtures"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

func TestReadHomeRecord(t *testing.T) {
	for _, layout := range []types.HomeLayout{types.HomeLayout0x18, types.HomeLayout0x1C} {
		t.Run(layout.String(), func(t *testing.T) {
			entry := fixtures.HomeEntry{
				Name:   "fpf",
				FileID: 0x123,
				Access: types.AccessFolder | types.AccessIntegrity | 0o750,
				Owner:  0x10,
				Group:  0x20,
				Salt:   0xBEEF,
			}
			data := fixtures.EncodeHomeRecords(layout, entry)
			require.Len(t, data, layout.Size())

			rec, err := ReadHomeRecord(data, layout)
			require.NoError(t, err)

			assert.Equal(t, "fpf", rec.Name)
			assert.Equal(t, uint16(0x123), rec.FileID)
			assert.Equal(t, uint16(0xBEEF), rec.FileSalt)
			assert.Equal(t, types.RecordTypeFolder, rec.Type())
			assert.True(t, rec.Access.HasIntegrity())
			assert.False(t, rec.Access.HasEncryption())
			assert.Equal(t, uint16(0o750), rec.Access.UnixRights())
			assert.Equal(t, "drwxr-x---", rec.Access.RightsString())
			assert.Equal(t, uint16(0x10), rec.OwnerUserID)
			assert.Equal(t, uint16(0x20), rec.OwnerGroupID)
			assert.Equal(t, uint16(0xBEEF), rec.Salt[0])
		})
	}
}

func TestReadHomeRecord_WideSalt(t *testing.T) {
	data := fixtures.EncodeHomeRecords(types.HomeLayout0x1C, fixtures.HomeEntry{Name: "a", Salt: 7})

	rec, err := ReadHomeRecord(data, types.HomeLayout0x1C)
	require.NoError(t, err)
	assert.Equal(t, []uint16{7, 8, 9}, rec.Salt)
}

func TestReadHomeListing(t *testing.T) {
	data := fixtures.EncodeHomeRecords(types.HomeLayout0x18,
		fixtures.Folder(".", 8),
		fixtures.Folder("..", 8),
		fixtures.File("cfg", 12),
		fixtures.HomeEntry{Name: "odd", FileID: 13, Access: 0x8000 | 0o600},
	)
	data = append(data, 0xAA, 0xBB)

	listing, diags := ReadHomeListing(data, types.HomeLayout0x18, "home")

	require.Len(t, listing, 4)
	assert.Equal(t, ".", listing[0].Name)
	assert.Equal(t, "..", listing[1].Name)
	assert.Equal(t, types.RecordTypeFile, listing[2].Type())
	assert.Equal(t, 2, diags.Count(diagnostics.SeverityAdvisory), diags.String())
}

func TestReadIntegrityRecord(t *testing.T) {
	tests := []struct {
		layout    types.IntegrityLayout
		algorithm string
		hmacLen   int
		hasNonce  bool
	}{
		{types.IntegrityLayout0x28, HMACMD5, 16, false},
		{types.IntegrityLayout0x34, HMACSHA256, 32, true},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			data := fixtures.EncodeIntegrityRecord(tt.layout, 0x155, 0x42)
			require.Len(t, data, tt.layout.Size())

			rec, err := ReadIntegrityRecord(data, tt.layout)
			require.NoError(t, err)

			assert.Equal(t, tt.algorithm, rec.HMACAlgorithm)
			assert.Len(t, rec.HMAC, tt.hmacLen)
			assert.Equal(t, byte(0xA0), rec.HMAC[0])
			assert.Equal(t, uint16(0x155), rec.ARIndex)
			assert.Equal(t, uint8(0x42), rec.SVN)
			assert.Equal(t, uint32(0x11223344), rec.ARRandom)
			assert.Equal(t, uint32(7), rec.ARCounter)
			assert.Zero(t, rec.ReservedFlags)
			assert.Equal(t, tt.hasNonce, rec.HasNonce)
		})
	}
}

func TestSplitIntegrity(t *testing.T) {
	content := []byte("anti-replay")
	data := append(append([]byte{}, content...), fixtures.EncodeIntegrityRecord(types.IntegrityLayout0x34, 1, 2)...)

	got, rec, err := SplitIntegrity(data, types.IntegrityLayout0x34)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, []byte{0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57}, rec.Nonce)

	_, _, err = SplitIntegrity([]byte{1, 2}, types.IntegrityLayout0x28)
	assert.Error(t, err)
}

func TestReadConfigRecords(t *testing.T) {
	data := fixtures.EncodeConfigFile(types.ConfigLayout0x1C,
		fixtures.ConfigFolder("mca"),
		fixtures.ConfigFile("setup", []byte{1, 2, 3}),
	)

	recs, diags := ReadConfigRecords(data, types.ConfigLayout0x1C, "intel-config")

	assert.Zero(t, diags.Len())
	require.Len(t, recs, 2)
	assert.Equal(t, "mca", recs[0].Name)
	assert.True(t, recs[0].Access.IsFolder())
	assert.Equal(t, "setup", recs[1].Label())
	assert.True(t, recs[1].OEMConfigurable())
	assert.False(t, recs[1].MCAConfigurable())
	assert.Equal(t, uint32(3), recs[1].FileSize)
	assert.Equal(t, uint32(4+2*0x1C), recs[1].FileOffset)
}

func TestReadConfigRecords_FileIDLayout(t *testing.T) {
	data := fixtures.EncodeConfigFile(types.ConfigLayout0xC, fixtures.ConfigID(0x1004, []byte{9}))

	recs, diags := ReadConfigRecords(data, types.ConfigLayout0xC, "oem-config")

	assert.Zero(t, diags.Len())
	require.Len(t, recs, 1)
	assert.False(t, recs[0].HasInlineName)
	assert.Equal(t, "0x00001004", recs[0].Label())
	assert.Equal(t, uint32(16), recs[0].FileOffset)
}

func TestReadConfigRecords_CountOverrun(t *testing.T) {
	data := fixtures.EncodeConfigFile(types.ConfigLayout0xC, fixtures.ConfigID(1, nil))
	binary.LittleEndian.PutUint32(data, 50)

	recs, diags := ReadConfigRecords(data, types.ConfigLayout0xC, "oem-config")

	assert.Len(t, recs, 1)
	assert.Equal(t, 1, diags.Count(diagnostics.SeverityAdvisory))
}
