package types

// VolumeHeader is the System Volume Header stored at the start of chunk 0.
type VolumeHeader struct {
	// Signature equals VolumeSignature.
	Signature uint32

	// FTBLDictionary and FTBLPlatform select an external File Table. The
	// pair (0, 0) means the directory tree is embedded in MFS.
	FTBLDictionary uint8
	FTBLPlatform   uint8

	Reserved uint16

	// VolumeSize is the total size of the System and Data areas.
	VolumeSize uint32

	// FileRecordCount is the number of Low Level File slots in the FAT.
	FileRecordCount uint16
}

// UsesFileTable reports whether the volume relies on an external File Table.
func (v *VolumeHeader) UsesFileTable() bool {
	return v.FTBLDictionary != 0 || v.FTBLPlatform != 0
}

// Geometry holds the chunk address space derived from the page count.
type Geometry struct {
	PageCount       int
	SystemPageCount int
	DataPageCount   int

	// SystemChunks is chunks_count_sys, the number of System chunk indices.
	SystemChunks int

	// DataChunks is chunks_max_dat, the number of Data chunk indices.
	DataChunks int
}

// NewGeometry derives the chunk address space of a partition. The page
// count formula holds for genuine partitions; observed System and Data page
// counts take over when an image carries more of them, as images without a
// Scratch page do.
func NewGeometry(pageCount, systemPages, dataPages int) Geometry {
	sysCount := pageCount / PagesPerSystemPage
	datCount := pageCount - sysCount - ScratchPageCount
	if datCount < 0 {
		datCount = 0
	}
	if systemPages > sysCount {
		sysCount = systemPages
	}
	if dataPages > datCount {
		datCount = dataPages
	}

	return Geometry{
		PageCount:       pageCount,
		SystemPageCount: sysCount,
		DataPageCount:   datCount,
		SystemChunks:    sysCount * SystemPageChunks,
		DataChunks:      datCount * DataPageChunks,
	}
}

// ExpectedVolumeSize returns the volume size implied by the geometry.
func (g Geometry) ExpectedVolumeSize() uint32 {
	return uint32((g.SystemChunks + g.DataChunks) * ChunkSize)
}

// FileState is the reconstruction outcome of one Low Level File.
type FileState int

const (
	FileStateAbsent FileState = iota
	FileStateEmpty
	FileStatePresent
	FileStateCorrupt
)

// String returns a human readable name for the file state
func (s FileState) String() string {
	switch s {
	case FileStateAbsent:
		return "Absent"
	case FileStateEmpty:
		return "Empty"
	case FileStatePresent:
		return "Present"
	case FileStateCorrupt:
		return "Corrupt"
	default:
		return "Unknown"
	}
}

// LowLevelFile is one FAT-addressed file.
type LowLevelFile struct {
	Index uint16
	State FileState
	Data  []byte

	// Chunks lists the global chunk indices the file was assembled from.
	Chunks []uint16
}

// Populated reports whether the file holds data.
func (f *LowLevelFile) Populated() bool {
	return f.State == FileStatePresent && len(f.Data) > 0
}
