// File: internal/interfaces/mfs.go
package interfaces

// Generated mock using mockgen:
//  mockgen -source=mfs.go -destination=mock_mfs.go -package interfaces

import (
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// ChunkReader provides access to reassembled chunks by address
type ChunkReader interface {
	// Chunk returns the chunk stored under a global chunk index
	Chunk(index uint16) (*types.Chunk, bool)

	// DataChunk returns the chunk at a position of the Data area
	DataChunk(position int) (*types.Chunk, bool)
}

// FileTableLookup resolves numeric file IDs through an external File Table
// selected by the platform and dictionary of the volume header
type FileTableLookup interface {
	// ByFileID resolves the File ID of a Configuration record
	ByFileID(platform, dictionary uint8, fileID uint32) (types.FileTableEntry, bool)

	// ByVFSID resolves a Low Level File index, trying FTBL before EFST
	ByVFSID(platform, dictionary uint8, vfsID uint16) (types.FileTableEntry, bool)
}
