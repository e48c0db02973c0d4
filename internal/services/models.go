package services

import (
	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// File sources
const (
	SourceLowLevel    = "low-level"
	SourceHome        = "home"
	SourceIntelConfig = "intel-config"
	SourceOEMConfig   = "oem-config"
	SourceFileTable   = "filetable"
	SourceUnknown     = "unknown"
)

// Input kinds
const (
	InputPartition = "partition"
	InputBackupR0  = "mfsb-r0"
	InputBackupR1  = "mfsb-r1"
)

// FileNode represents a reconstructed file or folder
type FileNode struct {
	Path        string
	Name        string
	Source      string
	IsDirectory bool

	// LowLevelIndex is the Low Level File the content came from, or -1.
	LowLevelIndex int

	// FileID is the File Table ID of File-Table resolved entries.
	FileID uint32

	Data          []byte
	Access        types.AccessMode
	OwnerUserID   uint16
	OwnerGroupID  uint16
	DeployOptions uint16

	// Integrity is set when an Integrity Record was split off the content.
	Integrity *types.IntegrityRecord
}

// Size returns the content size in bytes
func (n *FileNode) Size() int {
	return len(n.Data)
}

// VisitedRecord is one structural record seen while decoding, in traversal order
type VisitedRecord struct {
	Sequence     int
	Source       string
	Folder       string
	Name         string
	Type         types.RecordType
	FileID       uint32
	Access       types.AccessMode
	OwnerUserID  uint16
	OwnerGroupID uint16
	Offset       uint32
	Size         uint32
}

// PageSummary describes one classified page
type PageSummary struct {
	Position   int
	Kind       types.PageKind
	Number     uint32
	FirstChunk uint16
	EraseCount uint32
	CRCValid   bool
}

// ConfigState lists which configuration related files were populated.
// Deriving Unconfigured/Configured/Initialized from it is left to callers.
type ConfigState struct {
	PopulatedFiles []uint16
	IntelConfig    bool
	OEMConfig      bool
	HomeDirectory  bool
	FileTableMode  bool
}

// Result is the outcome of one analysis
type Result struct {
	Input         string
	Volume        *types.VolumeHeader
	Geometry      types.Geometry
	Pages         []PageSummary
	LowLevelFiles []*types.LowLevelFile

	// Files is sorted by path.
	Files []*FileNode

	// Records lists visited records in traversal order.
	Records     []VisitedRecord
	Diagnostics []diagnostics.Diagnostic
	ConfigState ConfigState
}

// File returns the node at path
func (r *Result) File(path string) (*FileNode, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return nil, false
}
