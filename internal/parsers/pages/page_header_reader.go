package pages

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/deploymenttheory/go-mfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// PageHeaderReader provides parsing capabilities for MFS page headers
type PageHeaderReader struct {
	header *types.PageHeader
	data   []byte
}

// NewPageHeaderReader creates a new page header reader over the first
// PageHeaderSize bytes of data
func NewPageHeaderReader(data []byte) (*PageHeaderReader, error) {
	if len(data) < types.PageHeaderSize {
		return nil, fmt.Errorf("data too small for page header: %d bytes, need at least %d", len(data), types.PageHeaderSize)
	}

	header := &types.PageHeader{}
	if err := restruct.Unpack(data[:types.PageHeaderSize], binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to parse page header: %w", err)
	}

	return &PageHeaderReader{
		header: header,
		data:   data[:types.PageHeaderSize],
	}, nil
}

// Header returns the decoded page header
func (r *PageHeaderReader) Header() *types.PageHeader {
	return r.header
}

// HasSignature reports whether the page is a System or Data page
func (r *PageHeaderReader) HasSignature() bool {
	return r.header.Signature == types.PageSignature
}

// IsErased reports whether the whole header is in the erased state
func (r *PageHeaderReader) IsErased() bool {
	return allBytes(r.data, 0xFF)
}

// IsBlankSignature reports whether the page is a Scratch page whose
// signature was cleared while the rest of its header survived
func (r *PageHeaderReader) IsBlankSignature() bool {
	if r.header.Signature != types.PageSignatureBlank {
		return false
	}
	rest := r.data[4:]
	return !allBytes(rest, 0x00) && !allBytes(rest, 0xFF)
}

// Kind classifies the page by signature and first chunk index
func (r *PageHeaderReader) Kind() types.PageKind {
	if !r.HasSignature() {
		return types.PageKindScratch
	}
	if r.header.FirstChunkIndex == 0 {
		return types.PageKindSystem
	}
	return types.PageKindData
}

// CalculatedCRC8 returns the CRC-8 of the header. Blank Scratch signatures
// are replaced by the page magic first.
func (r *PageHeaderReader) CalculatedCRC8() uint8 {
	span := make([]byte, types.PageHeaderCRCSpan)
	copy(span, r.data[:types.PageHeaderCRCSpan])
	if r.IsBlankSignature() {
		binary.LittleEndian.PutUint32(span[0:4], types.PageSignature)
	}
	return checksum.CRC8(span)
}

// VerifyCRC8 compares the stored CRC-8 with the calculated one
func (r *PageHeaderReader) VerifyCRC8() bool {
	return r.CalculatedCRC8() == r.header.CRC8
}

func allBytes(data []byte, value byte) bool {
	for _, b := range data {
		if b != value {
			return false
		}
	}
	return true
}
