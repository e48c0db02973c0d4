package types

import "fmt"

// PageHeader is the fixed header at the start of every MFS page.
type PageHeader struct {
	// Signature equals PageSignature for System and Data pages.
	Signature uint32

	// PageNumber is the absolute page number, used to order System pages.
	PageNumber uint32

	// EraseCount counts how often the page was erased.
	EraseCount uint32

	// NextErasePage points to the page to be erased next.
	NextErasePage uint16

	// FirstChunkIndex is zero for System pages and the global index of the
	// first chunk slot for Data pages.
	FirstChunkIndex uint16

	// CRC8 covers the first PageHeaderCRCSpan bytes of the header.
	CRC8 uint8

	// Reserved is expected to be zero.
	Reserved uint8
}

// PageKind is the role of a page inside the partition.
type PageKind int

const (
	PageKindScratch PageKind = iota
	PageKindSystem
	PageKindData
)

// String returns a human readable name for the page kind
func (k PageKind) String() string {
	switch k {
	case PageKindSystem:
		return "System"
	case PageKindData:
		return "Data"
	case PageKindScratch:
		return "Scratch"
	default:
		return fmt.Sprintf("PageKind(%d)", int(k))
	}
}

// Page is one classified page of the partition.
type Page struct {
	// Position is the page's ordinal inside the raw buffer.
	Position int

	// Offset is the byte offset of the page inside the raw buffer.
	Offset int

	Header PageHeader
	Kind   PageKind

	// CRCValid reports whether the header CRC-8 matched. Always false for
	// erased Scratch pages, which carry no CRC.
	CRCValid bool

	// Data is the full PageSize bytes of the page.
	Data []byte
}

// Chunk is one 64-byte payload addressed by its global chunk index.
type Chunk struct {
	Index   uint16
	Payload [ChunkSize]byte
	CRC16   uint16

	// Page is the position of the page the chunk was read from.
	Page int

	// CRCValid reports whether the stored CRC-16 matched.
	CRCValid bool
}
