package types

import "fmt"

// Home Directory records
// The Home Directory Low Level File (index 8) and every folder it points to
// hold an array of fixed-size records. Two on-disk sizes exist.

// HomeRecord0x18 is the Home Directory record of the oldest generations.
type HomeRecord0x18 struct {
	FileInfo     uint32
	AccessMode   uint16
	OwnerUserID  uint16
	OwnerGroupID uint16
	Salt         uint16
	FileName     [12]byte
}

// HomeRecord0x1C is the Home Directory record with a wider salt.
type HomeRecord0x1C struct {
	FileInfo     uint32
	AccessMode   uint16
	OwnerUserID  uint16
	OwnerGroupID uint16
	Salt         [3]uint16
	FileName     [12]byte
}

// FileInfo bit layout
const (
	FileInfoIDMask    uint32 = 0x00000FFF
	FileInfoSaltShift        = 12
	FileInfoSaltMask  uint32 = 0xFFFF
	FileInfoFSIDShift        = 28
	FileInfoFSIDMask  uint32 = 0xF
)

// Structural record names
const (
	HomeRootName         = "home"
	HomeSelfRecordName   = "."
	HomeParentRecordName = ".."
)

// AccessMode is the packed rights and protection word shared by Home and
// Configuration records.
type AccessMode uint16

// AccessMode bit layout
const (
	AccessUnixRightsMask AccessMode = 0x01FF
	AccessIntegrity      AccessMode = 1 << 9
	AccessEncryption     AccessMode = 1 << 10
	AccessAntiReplay     AccessMode = 1 << 11
	AccessFolder         AccessMode = 1 << 12
	AccessReservedMask   AccessMode = 0xE000
)

// UnixRights returns the 9-bit Unix permission bits.
func (a AccessMode) UnixRights() uint16 { return uint16(a & AccessUnixRightsMask) }

// HasIntegrity reports whether the content carries an Integrity Record.
func (a AccessMode) HasIntegrity() bool { return a&AccessIntegrity != 0 }

// HasEncryption reports whether the content is encrypted.
func (a AccessMode) HasEncryption() bool { return a&AccessEncryption != 0 }

// HasAntiReplay reports whether the content is anti-replay protected.
func (a AccessMode) HasAntiReplay() bool { return a&AccessAntiReplay != 0 }

// IsFolder reports whether the record type bit marks a folder.
func (a AccessMode) IsFolder() bool { return a&AccessFolder != 0 }

// Reserved returns the reserved top bits, expected to be zero.
func (a AccessMode) Reserved() uint16 { return uint16(a&AccessReservedMask) >> 13 }

// RightsString renders the Unix rights like ls does, prefixed by the type.
func (a AccessMode) RightsString() string {
	const letters = "rwxrwxrwx"
	out := make([]byte, 10)
	out[0] = '-'
	if a.IsFolder() {
		out[0] = 'd'
	}
	rights := a.UnixRights()
	for i := 0; i < 9; i++ {
		if rights&(1<<(8-i)) != 0 {
			out[i+1] = letters[i]
		} else {
			out[i+1] = '-'
		}
	}
	return string(out)
}

// RecordType tells files and folders apart.
type RecordType int

const (
	RecordTypeFile RecordType = iota
	RecordTypeFolder
)

// String returns a human readable name for the record type
func (t RecordType) String() string {
	if t == RecordTypeFolder {
		return "Folder"
	}
	return "File"
}

// HomeRecord is the layout-independent form of a Home Directory record.
type HomeRecord struct {
	Name         string
	FileID       uint16
	FileSalt     uint16
	FileSystemID uint8
	Access       AccessMode
	OwnerUserID  uint16
	OwnerGroupID uint16
	Salt         []uint16
}

// Type returns the record type encoded in the access mode.
func (r *HomeRecord) Type() RecordType {
	if r.Access.IsFolder() {
		return RecordTypeFolder
	}
	return RecordTypeFile
}

// Integrity records

// IntegrityRecord0x28 is the MD5 based Integrity Record.
type IntegrityRecord0x28 struct {
	HMAC      [16]byte
	Flags     uint32
	ARRandom  uint32
	ARCounter uint32
	Reserved  [12]byte
}

// IntegrityRecord0x34 is the SHA-256 based Integrity Record with a nonce.
type IntegrityRecord0x34 struct {
	HMAC      [32]byte
	Flags     uint32
	ARRandom  uint32
	ARCounter uint32
	Nonce     [8]byte
}

// Integrity flag layout
const (
	IntegrityARIndexMask   uint32 = 0x3FF
	IntegritySVNShift             = 10
	IntegritySVNMask       uint32 = 0xFF
	IntegrityReservedShift        = 18
)

// IntegrityRecord is the layout-independent form of an Integrity Record.
type IntegrityRecord struct {
	HMAC          []byte
	HMACAlgorithm string
	ARIndex       uint16
	ARRandom      uint32
	ARCounter     uint32
	SVN           uint8
	Nonce         []byte
	ReservedFlags uint32
	HasNonce      bool
}

// Configuration records

// ConfigRecord0x1C names its file inline.
type ConfigRecord0x1C struct {
	FileName      [12]byte
	Reserved      uint16
	AccessMode    uint16
	DeployOptions uint16
	FileSize      uint16
	OwnerUserID   uint16
	OwnerGroupID  uint16
	FileOffset    uint32
}

// ConfigRecord0xC references an external File Table ID.
type ConfigRecord0xC struct {
	FileID        uint32
	AccessMode    uint16
	DeployOptions uint16
	FileSize      uint16
	FileOffset    uint16
}

// DeployOptions bits of Configuration records
const (
	DeployOEMConfigurable uint16 = 1 << 0
	DeployMCAConfigurable uint16 = 1 << 1
	DeployReservedMask    uint16 = 0xFFFC
)

// ConfigRecordCountSize is the size of the record count at the start of a
// Configuration Low Level File.
const ConfigRecordCountSize = 4

// ConfigRecord is the layout-independent form of a Configuration record.
type ConfigRecord struct {
	// Name is set for 0x1C records.
	Name string

	// FileID is set for 0xC records.
	FileID uint32

	Access        AccessMode
	DeployOptions uint16
	FileSize      uint32
	FileOffset    uint32
	OwnerUserID   uint16
	OwnerGroupID  uint16
	HasInlineName bool
}

// OEMConfigurable reports the OEM configurable deploy option.
func (r *ConfigRecord) OEMConfigurable() bool { return r.DeployOptions&DeployOEMConfigurable != 0 }

// MCAConfigurable reports the MCA configurable deploy option.
func (r *ConfigRecord) MCAConfigurable() bool { return r.DeployOptions&DeployMCAConfigurable != 0 }

// Label returns the inline name or the File Table ID of the record.
func (r *ConfigRecord) Label() string {
	if r.HasInlineName {
		return r.Name
	}
	return fmt.Sprintf("0x%08X", r.FileID)
}
