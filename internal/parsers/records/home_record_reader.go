// Package records decodes the fixed-size records stored inside Low Level
// Files: Home Directory records, Integrity Records and Configuration records.
package records

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// ReadHomeRecord decodes one Home Directory record of the given layout.
func ReadHomeRecord(data []byte, layout types.HomeLayout) (*types.HomeRecord, error) {
	size := layout.Size()
	if len(data) < size {
		return nil, fmt.Errorf("data too small for home record 0x%X: %d bytes", size, len(data))
	}

	var (
		info   uint32
		access uint16
		rec    types.HomeRecord
	)

	switch layout {
	case types.HomeLayout0x18:
		var raw types.HomeRecord0x18
		if err := restruct.Unpack(data[:size], binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse home record 0x18: %w", err)
		}
		info, access = raw.FileInfo, raw.AccessMode
		rec.OwnerUserID, rec.OwnerGroupID = raw.OwnerUserID, raw.OwnerGroupID
		rec.Salt = []uint16{raw.Salt}
		rec.Name = cString(raw.FileName[:])
	case types.HomeLayout0x1C:
		var raw types.HomeRecord0x1C
		if err := restruct.Unpack(data[:size], binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse home record 0x1C: %w", err)
		}
		info, access = raw.FileInfo, raw.AccessMode
		rec.OwnerUserID, rec.OwnerGroupID = raw.OwnerUserID, raw.OwnerGroupID
		rec.Salt = raw.Salt[:]
		rec.Name = cString(raw.FileName[:])
	default:
		return nil, fmt.Errorf("unsupported home record layout 0x%X", size)
	}

	rec.FileID = uint16(info & types.FileInfoIDMask)
	rec.FileSalt = uint16(info >> types.FileInfoSaltShift & types.FileInfoSaltMask)
	rec.FileSystemID = uint8(info >> types.FileInfoFSIDShift & types.FileInfoFSIDMask)
	rec.Access = types.AccessMode(access)

	return &rec, nil
}

// ReadHomeListing decodes every record of a folder's Low Level File.
// A trailing partial record and reserved access bits are advisory.
func ReadHomeListing(data []byte, layout types.HomeLayout, folder string) ([]*types.HomeRecord, diagnostics.Collector) {
	var diags diagnostics.Collector
	size := layout.Size()

	if rem := len(data) % size; rem != 0 {
		diags.Advisory(diagnostics.ComponentHome, "%s: %d trailing bytes do not form a 0x%X record", folder, rem, size)
	}

	out := make([]*types.HomeRecord, 0, len(data)/size)
	for offset := 0; offset+size <= len(data); offset += size {
		rec, err := ReadHomeRecord(data[offset:], layout)
		if err != nil {
			diags.Advisory(diagnostics.ComponentHome, "%s: record at 0x%X: %v", folder, offset, err)
			continue
		}
		if rec.Access.Reserved() != 0 {
			diags.Advisory(diagnostics.ComponentHome, "%s/%s: reserved access bits 0x%X", folder, rec.Name, rec.Access.Reserved())
		}
		out = append(out, rec)
	}

	return out, diags
}

// cString returns the bytes before the first NUL.
func cString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data)
}
