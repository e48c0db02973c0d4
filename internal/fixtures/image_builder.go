// Package fixtures builds synthetic MFS partitions, records and MFSB
// containers for tests. Every checksum is computed so a fixture decodes
// cleanly unless a test corrupts it on purpose.
package fixtures

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/go-restruct/restruct"

	"github.com/deploymenttheory/go-mfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// ChunkSpec is one chunk placed into a System page.
type ChunkSpec struct {
	Index   uint16
	Payload []byte
}

func mustPack(v interface{}) []byte {
	data, err := restruct.Pack(binary.LittleEndian, v)
	if err != nil {
		panic(fmt.Sprintf("fixtures: pack %T: %v", v, err))
	}
	return data
}

// EncodePageHeader encodes header with a freshly computed CRC-8.
func EncodePageHeader(header types.PageHeader) []byte {
	data := mustPack(&header)
	data[types.PageHeaderCRCSpan] = checksum.CRC8(data[:types.PageHeaderCRCSpan])
	return data
}

func erasedPage() []byte {
	page := make([]byte, types.PageSize)
	for i := range page {
		page[i] = 0xFF
	}
	return page
}

func putChunk(page []byte, offset int, payload []byte, index uint16) {
	var chunk [types.ChunkSize]byte
	copy(chunk[:], payload)
	copy(page[offset:], chunk[:])
	binary.LittleEndian.PutUint16(page[offset+types.ChunkSize:], checksum.ChunkCRC16(chunk[:], index))
}

// SystemPage builds a System page holding chunks in slot order with an
// obfuscated index array.
func SystemPage(pageNumber uint32, chunks []ChunkSpec) []byte {
	if len(chunks) > types.SystemPageChunks {
		panic(fmt.Sprintf("fixtures: %d chunks do not fit a System page", len(chunks)))
	}

	page := erasedPage()
	copy(page, EncodePageHeader(types.PageHeader{
		Signature:  types.PageSignature,
		PageNumber: pageNumber,
		EraseCount: 1,
	}))

	var previous uint16
	for slot, chunk := range chunks {
		entry := checksum.MaskCRC16(previous) ^ chunk.Index
		binary.LittleEndian.PutUint16(page[types.SystemIndexOffset+slot*2:], entry)
		putChunk(page, types.SystemChunksOffset+slot*types.ChunkEntrySize, chunk.Payload, chunk.Index)
		previous = chunk.Index
	}

	return page
}

// DataPage builds a Data page whose slots hold the given payloads.
func DataPage(pageNumber uint32, firstChunk uint16, payloads map[int][]byte) []byte {
	page := erasedPage()
	copy(page, EncodePageHeader(types.PageHeader{
		Signature:       types.PageSignature,
		PageNumber:      pageNumber,
		EraseCount:      1,
		FirstChunkIndex: firstChunk,
	}))

	for slot := 0; slot < types.DataPageChunks; slot++ {
		payload, ok := payloads[slot]
		if !ok {
			continue
		}
		page[types.DataIndexOffset+slot] = types.DataIndexUsed
		putChunk(page, types.DataChunksOffset+slot*types.ChunkEntrySize, payload, firstChunk+uint16(slot))
	}

	return page
}

// ScratchPage returns an erased page.
func ScratchPage() []byte {
	return erasedPage()
}

// Image describes a synthetic partition. Files are laid out in consecutive
// Data chunks in ascending index order.
type Image struct {
	SystemPages     int
	DataPages       int
	Scratch         bool
	FileRecordCount uint16
	Dictionary      uint8
	Platform        uint8

	// VolumeSize overrides the size written to the volume header.
	VolumeSize uint32

	// Files maps a Low Level File index to its content. An empty slice
	// produces an empty file.
	Files map[uint16][]byte
}

// Geometry returns the chunk address space the partition will have.
func (img *Image) Geometry() types.Geometry {
	pages := img.SystemPages + img.DataPages
	if img.Scratch {
		pages++
	}
	return types.NewGeometry(pages, img.SystemPages, img.DataPages)
}

// firstDataChunk skips the Data chunks whose FAT link would collide with a
// chain terminator.
func (img *Image) firstDataChunk() int {
	first := int(types.FATLastChunkMax) + 1 - int(img.FileRecordCount)
	if first < 0 {
		return 0
	}
	return first
}

func (img *Image) layout() (fat []uint16, dataChunks map[int][]byte, err error) {
	geometry := img.Geometry()
	fat = make([]uint16, int(img.FileRecordCount)+geometry.DataChunks)
	dataChunks = make(map[int][]byte)

	indices := make([]int, 0, len(img.Files))
	for index := range img.Files {
		if index >= img.FileRecordCount {
			return nil, nil, fmt.Errorf("file %d outside of %d file records", index, img.FileRecordCount)
		}
		indices = append(indices, int(index))
	}
	sort.Ints(indices)

	next := img.firstDataChunk()
	frc := int(img.FileRecordCount)
	for _, index := range indices {
		content := img.Files[uint16(index)]
		if len(content) == 0 {
			fat[index] = types.FATEmpty
			continue
		}

		count := (len(content) + types.ChunkSize - 1) / types.ChunkSize
		if next+count > geometry.DataChunks {
			return nil, nil, fmt.Errorf("file %d needs %d chunks, only %d left", index, count, geometry.DataChunks-next)
		}

		fat[index] = uint16(frc + next)
		for i := 0; i < count; i++ {
			start := i * types.ChunkSize
			end := start + types.ChunkSize
			if end > len(content) {
				end = len(content)
			}
			dataChunks[next+i] = content[start:end]
			if i == count-1 {
				fat[frc+next+i] = uint16(end - start)
			} else {
				fat[frc+next+i] = uint16(frc + next + i + 1)
			}
		}
		next += count
	}

	return fat, dataChunks, nil
}

// SystemArea returns the encoded volume header and FAT.
func (img *Image) SystemArea() ([]byte, error) {
	fat, _, err := img.layout()
	if err != nil {
		return nil, err
	}
	return img.encodeSystemArea(fat), nil
}

func (img *Image) encodeSystemArea(fat []uint16) []byte {
	size := img.VolumeSize
	if size == 0 {
		size = img.Geometry().ExpectedVolumeSize()
	}

	area := mustPack(&types.VolumeHeader{
		Signature:       types.VolumeSignature,
		FTBLDictionary:  img.Dictionary,
		FTBLPlatform:    img.Platform,
		VolumeSize:      size,
		FileRecordCount: img.FileRecordCount,
	})
	for _, value := range fat {
		area = binary.LittleEndian.AppendUint16(area, value)
	}
	return area
}

// Build encodes the partition. System pages come first, Data pages follow
// in reverse order and the Scratch page, if any, is last.
func (img *Image) Build() ([]byte, error) {
	geometry := img.Geometry()
	fat, dataChunks, err := img.layout()
	if err != nil {
		return nil, err
	}

	area := img.encodeSystemArea(fat)
	if len(area) > geometry.SystemChunks*types.ChunkSize {
		return nil, fmt.Errorf("system area of %d bytes does not fit %d System chunks", len(area), geometry.SystemChunks)
	}

	var out []byte
	chunkCount := (len(area) + types.ChunkSize - 1) / types.ChunkSize
	for p := 0; p < img.SystemPages; p++ {
		var chunks []ChunkSpec
		for slot := 0; slot < types.SystemPageChunks; slot++ {
			index := p*types.SystemPageChunks + slot
			if index >= chunkCount {
				break
			}
			end := (index + 1) * types.ChunkSize
			if end > len(area) {
				end = len(area)
			}
			chunks = append(chunks, ChunkSpec{Index: uint16(index), Payload: area[index*types.ChunkSize : end]})
		}
		out = append(out, SystemPage(uint32(p), chunks)...)
	}

	for p := img.DataPages - 1; p >= 0; p-- {
		payloads := make(map[int][]byte)
		for slot := 0; slot < types.DataPageChunks; slot++ {
			if payload, ok := dataChunks[p*types.DataPageChunks+slot]; ok {
				payloads[slot] = payload
			}
		}
		first := uint16(geometry.SystemChunks + p*types.DataPageChunks)
		out = append(out, DataPage(uint32(img.SystemPages+p), first, payloads)...)
	}

	if img.Scratch {
		out = append(out, ScratchPage()...)
	}

	return out, nil
}

// MustBuild is Build for tests that construct valid images.
func (img *Image) MustBuild() []byte {
	out, err := img.Build()
	if err != nil {
		panic(fmt.Sprintf("fixtures: %v", err))
	}
	return out
}
