// Package pages splits a raw MFS partition into pages and classifies them
// into System, Data and Scratch roles.
package pages

import (
	"sort"

	"github.com/golang/glog"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// Classification is the outcome of classifying every page of a partition.
type Classification struct {
	Geometry types.Geometry

	// System pages ordered by page number.
	System []*types.Page

	// Data pages ordered by first chunk index.
	Data []*types.Page

	// Scratch pages in buffer order.
	Scratch []*types.Page
}

// Ordered returns the page processing order used by every later stage:
// System pages followed by Data pages.
func (c *Classification) Ordered() []*types.Page {
	out := make([]*types.Page, 0, len(c.System)+len(c.Data))
	out = append(out, c.System...)
	return append(out, c.Data...)
}

// Classify splits buf into pages and classifies each one. CRC-8 mismatches
// are reported and processing continues.
func Classify(buf []byte) (*Classification, diagnostics.Collector) {
	var diags diagnostics.Collector
	result := &Classification{}

	pageCount := len(buf) / types.PageSize
	if rem := len(buf) % types.PageSize; rem != 0 {
		diags.Advisory(diagnostics.ComponentPages, "partition size 0x%X is not a multiple of the page size, ignoring %d trailing bytes", len(buf), rem)
	}

	for position := 0; position < pageCount; position++ {
		offset := position * types.PageSize
		data := buf[offset : offset+types.PageSize]

		reader, err := NewPageHeaderReader(data)
		if err != nil {
			diags.Advisory(diagnostics.ComponentPages, "page %d: %v", position, err)
			continue
		}

		page := &types.Page{
			Position: position,
			Offset:   offset,
			Header:   *reader.Header(),
			Kind:     reader.Kind(),
			Data:     data,
		}

		switch {
		case reader.HasSignature(), reader.IsBlankSignature():
			page.CRCValid = reader.VerifyCRC8()
			if !page.CRCValid {
				diags.Advisory(diagnostics.ComponentPages, "page %d (%s, number %d): header CRC-8 0x%02X, expected 0x%02X",
					position, page.Kind, page.Header.PageNumber, page.Header.CRC8, reader.CalculatedCRC8())
			}
			if page.Header.Reserved != 0 && reader.HasSignature() {
				diags.Advisory(diagnostics.ComponentPages, "page %d: reserved header byte is 0x%02X", position, page.Header.Reserved)
			}
		}

		glog.V(2).Infof("page %d at 0x%X: %s number=%d first_chunk=%d erase_count=%d",
			position, offset, page.Kind, page.Header.PageNumber, page.Header.FirstChunkIndex, page.Header.EraseCount)

		switch page.Kind {
		case types.PageKindSystem:
			result.System = append(result.System, page)
		case types.PageKindData:
			result.Data = append(result.Data, page)
		default:
			result.Scratch = append(result.Scratch, page)
		}
	}

	sort.SliceStable(result.System, func(i, j int) bool {
		return result.System[i].Header.PageNumber < result.System[j].Header.PageNumber
	})
	sort.SliceStable(result.Data, func(i, j int) bool {
		return result.Data[i].Header.FirstChunkIndex < result.Data[j].Header.FirstChunkIndex
	})

	result.Geometry = types.NewGeometry(pageCount, len(result.System), len(result.Data))

	glog.V(1).Infof("classified %d pages: %d system, %d data, %d scratch",
		pageCount, len(result.System), len(result.Data), len(result.Scratch))

	return result, diags
}
