package chunks

import (
	"encoding/binary"
	"sort"

	"github.com/golang/glog"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-mfs/internal/parsers/pages"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// Store maps global chunk indices to chunks.
type Store struct {
	geometry types.Geometry
	chunks   map[uint16]*types.Chunk
}

// NewStore creates an empty store for the given geometry.
func NewStore(geometry types.Geometry) *Store {
	return &Store{
		geometry: geometry,
		chunks:   make(map[uint16]*types.Chunk),
	}
}

// Build unveils every page of the classification in processing order and
// collects its chunks.
func Build(classification *pages.Classification) (*Store, diagnostics.Collector) {
	var diags diagnostics.Collector
	store := NewStore(classification.Geometry)

	for _, page := range classification.Ordered() {
		slots, unveilDiags := Unveil(page)
		diags.Merge(unveilDiags)
		diags.Merge(store.AddPage(page, slots))
	}

	glog.V(1).Infof("chunk store holds %d chunks (%d system, %d data indices)",
		store.Len(), classification.Geometry.SystemChunks, classification.Geometry.DataChunks)

	return store, diags
}

// AddPage reads the given slots of page, validates each chunk CRC-16 and
// stores them. The first chunk stored under an index wins.
func (s *Store) AddPage(page *types.Page, slots []SlotIndex) diagnostics.Collector {
	var diags diagnostics.Collector
	mismatches := 0
	stored := 0

	for _, si := range slots {
		if !s.inRange(page.Kind, si.Index) {
			diags.Advisory(diagnostics.ComponentChunks, "%s page %d slot %d: chunk index %d outside of the %s area",
				page.Kind, page.Header.PageNumber, si.Slot, si.Index, page.Kind)
			continue
		}
		if existing, ok := s.chunks[si.Index]; ok {
			diags.Advisory(diagnostics.ComponentChunks, "chunk %d on page %d duplicates the copy on page %d, keeping the first",
				si.Index, page.Position, existing.Page)
			continue
		}

		offset := ChunkOffset(page.Kind, si.Slot)
		chunk := &types.Chunk{
			Index: si.Index,
			CRC16: binary.LittleEndian.Uint16(page.Data[offset+types.ChunkSize : offset+types.ChunkEntrySize]),
			Page:  page.Position,
		}
		copy(chunk.Payload[:], page.Data[offset:offset+types.ChunkSize])

		expected := checksum.ChunkCRC16(chunk.Payload[:], chunk.Index)
		chunk.CRCValid = expected == chunk.CRC16
		if !chunk.CRCValid {
			mismatches++
			diags.Advisory(diagnostics.ComponentChunks, "chunk %d (%s page %d slot %d): CRC-16 0x%04X, expected 0x%04X",
				chunk.Index, page.Kind, page.Header.PageNumber, si.Slot, chunk.CRC16, expected)
		}

		glog.V(2).Infof("chunk %d from page %d slot %d crc_valid=%t", chunk.Index, page.Position, si.Slot, chunk.CRCValid)

		s.chunks[chunk.Index] = chunk
		stored++
	}

	if stored > 0 && mismatches == 0 {
		diags.Info(diagnostics.ComponentChunks, "all %d chunks of %s page %d validated", stored, page.Kind, page.Header.PageNumber)
	}

	return diags
}

func (s *Store) inRange(kind types.PageKind, index uint16) bool {
	i := int(index)
	if kind == types.PageKindSystem {
		return i < s.geometry.SystemChunks
	}
	return i >= s.geometry.SystemChunks && i < s.geometry.SystemChunks+s.geometry.DataChunks
}

// Geometry returns the address space of the store.
func (s *Store) Geometry() types.Geometry {
	return s.geometry
}

// Chunk returns the chunk stored under a global index.
func (s *Store) Chunk(index uint16) (*types.Chunk, bool) {
	chunk, ok := s.chunks[index]
	return chunk, ok
}

// DataChunk returns the chunk at a Data area position.
func (s *Store) DataChunk(position int) (*types.Chunk, bool) {
	global := s.geometry.SystemChunks + position
	if position < 0 || global > 0xFFFF {
		return nil, false
	}
	return s.Chunk(uint16(global))
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	return len(s.chunks)
}

// Indices returns all stored indices in ascending order.
func (s *Store) Indices() []uint16 {
	out := make([]uint16, 0, len(s.chunks))
	for index := range s.chunks {
		out = append(out, index)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SystemBuffer materializes the System area as one contiguous buffer.
// Missing chunks read as zero.
func (s *Store) SystemBuffer() []byte {
	buf := make([]byte, s.geometry.SystemChunks*types.ChunkSize)
	for index := 0; index < s.geometry.SystemChunks; index++ {
		if chunk, ok := s.chunks[uint16(index)]; ok {
			copy(buf[index*types.ChunkSize:], chunk.Payload[:])
		}
	}
	return buf
}
