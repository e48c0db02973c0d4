package volumes

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/interfaces"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// ErrCorruptChain is returned when a FAT chain cannot be followed to a
// terminator. It only affects the file being resolved.
var ErrCorruptChain = errors.New("corrupt FAT chain")

// FAT is the File Allocation Table of a volume.
type FAT struct {
	// Entries holds the file heads followed by the per-chunk links.
	Entries []uint16

	fileRecordCount uint16
}

// ReadFAT decodes the FAT that follows the volume header. The table holds
// FileRecordCount heads and one link per Data chunk.
func ReadFAT(system []byte, header *types.VolumeHeader, geometry types.Geometry) (*FAT, diagnostics.Collector) {
	var diags diagnostics.Collector

	if len(system) < types.VolumeHeaderSize {
		diags.Advisory(diagnostics.ComponentFAT, "System area of %d bytes holds no FAT", len(system))
		return &FAT{fileRecordCount: header.FileRecordCount}, diags
	}

	count := int(header.FileRecordCount) + geometry.DataChunks
	start := types.VolumeHeaderSize
	end := start + count*types.FATEntrySize
	if end > len(system) {
		available := (len(system) - start) / types.FATEntrySize
		diags.Advisory(diagnostics.ComponentFAT, "FAT of %d entries exceeds the System area, reading %d", count, available)
		count = available
		end = start + count*types.FATEntrySize
	}

	fat := &FAT{
		Entries:         make([]uint16, count),
		fileRecordCount: header.FileRecordCount,
	}
	for i := range fat.Entries {
		fat.Entries[i] = binary.LittleEndian.Uint16(system[start+i*types.FATEntrySize:])
	}

	if nonZero := countNonZero(system[end:]); nonZero > 0 {
		diags.Advisory(diagnostics.ComponentFAT, "%d non-zero bytes follow the FAT at System offset 0x%X", nonZero, end)
	}

	return fat, diags
}

// Head returns the chain head of a Low Level File.
func (f *FAT) Head(index uint16) uint16 {
	if int(index) >= len(f.Entries) {
		return types.FATUnused
	}
	return f.Entries[index]
}

// FileRecordCount returns the number of file heads.
func (f *FAT) FileRecordCount() uint16 {
	return f.fileRecordCount
}

func countNonZero(data []byte) int {
	n := 0
	for _, b := range data {
		if b != 0 {
			n++
		}
	}
	return n
}

// IsTerminator reports whether a FAT value ends a chain. The value is also
// the number of bytes used in the last chunk.
func IsTerminator(value uint16) bool {
	return value >= types.FATLastChunkMin && value <= types.FATLastChunkMax
}

// Resolver reassembles Low Level Files by following FAT chains through the
// Data chunks.
type Resolver struct {
	fat      *FAT
	chunks   interfaces.ChunkReader
	maxSteps int
}

// NewResolver creates a resolver. maxSteps bounds every chain and is the
// Data chunk count of the partition.
func NewResolver(fat *FAT, chunks interfaces.ChunkReader, maxSteps int) *Resolver {
	return &Resolver{fat: fat, chunks: chunks, maxSteps: maxSteps}
}

// ResolveFile reassembles one Low Level File. A corrupt chain returns the
// file in the Corrupt state together with an ErrCorruptChain error.
func (r *Resolver) ResolveFile(index uint16) (*types.LowLevelFile, error) {
	file := &types.LowLevelFile{Index: index}

	head := r.fat.Head(index)
	switch head {
	case types.FATUnused, types.FATErased:
		file.State = types.FileStateAbsent
		return file, nil
	case types.FATEmpty:
		file.State = types.FileStateEmpty
		file.Data = []byte{}
		return file, nil
	}

	corrupt := func(format string, args ...interface{}) (*types.LowLevelFile, error) {
		file.State = types.FileStateCorrupt
		file.Data = nil
		return file, fmt.Errorf("file %d: %w: %s", index, ErrCorruptChain, fmt.Sprintf(format, args...))
	}

	frc := r.fat.fileRecordCount
	var data []byte
	current := head
	for steps := 0; ; steps++ {
		if IsTerminator(current) {
			if len(file.Chunks) == 0 {
				return corrupt("terminator %d without a chunk", current)
			}
			data = data[:len(data)-types.ChunkSize+int(current)]
			break
		}
		if current < frc {
			return corrupt("value %d below the file record count %d", current, frc)
		}
		if int(current) >= len(r.fat.Entries) {
			return corrupt("link 0x%04X beyond the %d FAT entries", current, len(r.fat.Entries))
		}
		if steps >= r.maxSteps {
			return corrupt("chain longer than %d chunks", r.maxSteps)
		}

		chunk, ok := r.chunks.DataChunk(int(current - frc))
		if !ok {
			return corrupt("Data chunk %d is missing", current-frc)
		}
		data = append(data, chunk.Payload[:]...)
		file.Chunks = append(file.Chunks, chunk.Index)
		current = r.fat.Entries[current]
	}

	file.State = types.FileStatePresent
	file.Data = data
	return file, nil
}

// ResolveAll reassembles every Low Level File. Corrupt chains are reported
// and the remaining files are still resolved.
func (r *Resolver) ResolveAll() ([]*types.LowLevelFile, diagnostics.Collector) {
	var diags diagnostics.Collector
	files := make([]*types.LowLevelFile, 0, r.fat.fileRecordCount)

	for index := uint16(0); index < r.fat.fileRecordCount; index++ {
		file, err := r.ResolveFile(index)
		if err != nil {
			diags.Fatal(diagnostics.ComponentFAT, "%v", err)
		}
		glog.V(2).Infof("low level file %d: %s, %d bytes in %d chunks", index, file.State, len(file.Data), len(file.Chunks))
		files = append(files, file)
	}

	return files, diags
}
