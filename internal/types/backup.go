package types

// MFSB backup container
// Some platforms keep a backup of the configuration part of MFS outside of
// the page layout. Two revisions exist and are told apart by the reserved
// bytes following the signature.

// BackupSignature starts every MFSB container.
var BackupSignature = [4]byte{'M', 'F', 'S', 'B'}

// MFSB sizes and markers
const (
	BackupHeaderSize      = 0x20
	BackupEntryHeaderSize = 0x20
	BackupReservedOffset  = 0x08
	BackupEntryCount      = 3

	// BackupPaddingLengthSize is the size of the big-endian padding length
	// following each revision 0 marker.
	BackupPaddingLengthSize = 4

	// BackupPaddingByte is the value of reinserted padding.
	BackupPaddingByte byte = 0xFF
)

// BackupChunkMarker terminates each revision 0 payload run.
var BackupChunkMarker = [4]byte{0xAA, 0x55, 0xAA, 0x55}

// BackupRevision is the MFSB sub-format.
type BackupRevision int

const (
	BackupRevision0 BackupRevision = 0
	BackupRevision1 BackupRevision = 1
)

// BackupHeaderR0 is the revision 0 header. Reserved is all 0xFF.
type BackupHeaderR0 struct {
	Signature [4]byte
	CRC32     uint32
	Reserved  [24]byte
}

// BackupHeaderR1 is the revision 1 header.
type BackupHeaderR1 struct {
	Signature   [4]byte
	Revision    uint32
	EntryCount  uint32
	HeaderCRC32 uint32
	Reserved    [16]byte
}

// BackupPaddingR0 follows every revision 0 chunk marker.
type BackupPaddingR0 struct {
	Length uint32 `struct:"big"`
}

// BackupEntryHeader describes one revision 1 entry.
type BackupEntryHeader struct {
	Name        [12]byte
	Offset      uint32
	Size        uint32
	HeaderCRC32 uint32
	DataCRC32   uint32
	Reserved    uint32
}

// BackupEntryCRCOffset is the offset of HeaderCRC32 inside BackupEntryHeader.
const BackupEntryCRCOffset = 0x14

// BackupHeaderCRCOffset is the offset of HeaderCRC32 inside BackupHeaderR1.
const BackupHeaderCRCOffset = 0x0C

// BackupEntryIndices maps revision 1 entries, in order, to the Low Level
// File index they replace.
var BackupEntryIndices = [BackupEntryCount]uint16{FileIndexIntelConfig, FileIndexOEMConfig, FileIndexManifest}

// BackupEntryNames are the names written into revision 1 entry headers.
var BackupEntryNames = [BackupEntryCount]string{"INTEL_CONFIG", "OEM_CONFIG", "MANIFEST"}
