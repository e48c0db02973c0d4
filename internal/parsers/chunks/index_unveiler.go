// Package chunks recovers the global chunk indices of every page and
// aggregates the chunks into one store addressed by global index.
package chunks

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// SlotIndex pairs a chunk slot of a page with its global chunk index.
type SlotIndex struct {
	Slot  int
	Index uint16
}

// UnveilSystemIndices reverses the obfuscation of a System page index array.
// Each entry is masked with the CRC of the index that precedes it on the
// same page, starting from zero.
func UnveilSystemIndices(page *types.Page) ([]SlotIndex, diagnostics.Collector) {
	var diags diagnostics.Collector
	var out []SlotIndex

	var previous uint16
	for slot := 0; slot < types.SystemIndexSlots; slot++ {
		offset := types.SystemIndexOffset + slot*2
		entry := binary.LittleEndian.Uint16(page.Data[offset : offset+2])
		if entry&types.SystemIndexUnusedMask == types.SystemIndexUnusedMask {
			return out, diags
		}
		if slot == types.SystemPageChunks {
			diags.Advisory(diagnostics.ComponentChunks, "System page %d: index array does not terminate within %d slots",
				page.Header.PageNumber, types.SystemPageChunks)
			return out, diags
		}

		actual := checksum.MaskCRC16(previous) ^ entry
		out = append(out, SlotIndex{Slot: slot, Index: actual})
		previous = actual
	}

	return out, diags
}

// UnveilDataIndices decodes the used/unused byte array of a Data page.
func UnveilDataIndices(page *types.Page) ([]SlotIndex, diagnostics.Collector) {
	var diags diagnostics.Collector
	var out []SlotIndex

	for slot := 0; slot < types.DataPageChunks; slot++ {
		switch marker := page.Data[types.DataIndexOffset+slot]; marker {
		case types.DataIndexUsed:
			out = append(out, SlotIndex{Slot: slot, Index: page.Header.FirstChunkIndex + uint16(slot)})
		case types.DataIndexFree:
		default:
			diags.Advisory(diagnostics.ComponentChunks, "Data page %d slot %d: unexpected index marker 0x%02X",
				page.Header.PageNumber, slot, marker)
		}
	}

	return out, diags
}

// Unveil returns the slot indices of a System or Data page. Scratch pages
// hold no chunks.
func Unveil(page *types.Page) ([]SlotIndex, diagnostics.Collector) {
	switch page.Kind {
	case types.PageKindSystem:
		return UnveilSystemIndices(page)
	case types.PageKindData:
		return UnveilDataIndices(page)
	default:
		return nil, diagnostics.Collector{}
	}
}

// ChunkOffset returns the page offset of a chunk slot.
func ChunkOffset(kind types.PageKind, slot int) int {
	if kind == types.PageKindSystem {
		return types.SystemChunksOffset + slot*types.ChunkEntrySize
	}
	return types.DataChunksOffset + slot*types.ChunkEntrySize
}
