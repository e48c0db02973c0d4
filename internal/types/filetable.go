package types

// File-Table sources
const (
	FileTableSourceFTBL = "FTBL"
	FileTableSourceEFST = "EFST"
)

// FileTableEntry maps a numeric file ID to a path. FTBL entries carry
// access and ownership, EFST entries only a VFS ID and a path.
type FileTableEntry struct {
	FileID  uint32 `yaml:"file_id" json:"file_id"`
	VFSID   uint16 `yaml:"vfs_id" json:"vfs_id"`
	Path    string `yaml:"path" json:"path"`
	Access  uint16 `yaml:"access" json:"access"`
	Options uint16 `yaml:"options" json:"options"`
	UserID  uint16 `yaml:"user_id" json:"user_id"`
	GroupID uint16 `yaml:"group_id" json:"group_id"`

	// Source is FileTableSourceFTBL or FileTableSourceEFST.
	Source string `yaml:"-" json:"source"`
}
