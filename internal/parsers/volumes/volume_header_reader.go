// Package volumes decodes the System Volume Header and follows File
// Allocation Table chains to reassemble Low Level Files.
package volumes

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

var (
	// ErrInvalidVolumeSignature is returned when chunk 0 does not start with
	// the volume signature.
	ErrInvalidVolumeSignature = errors.New("invalid volume header signature")

	// ErrEmptySystemArea is returned when the System area holds no data.
	ErrEmptySystemArea = errors.New("system area is empty")
)

// VolumeHeaderReader provides parsing capabilities for the System Volume Header
type VolumeHeaderReader struct {
	header *types.VolumeHeader
}

// NewVolumeHeaderReader decodes the volume header at offset 0 of the
// materialized System buffer
func NewVolumeHeaderReader(system []byte) (*VolumeHeaderReader, error) {
	if isZero(system) {
		return nil, ErrEmptySystemArea
	}
	if len(system) < types.VolumeHeaderSize {
		return nil, fmt.Errorf("system area too small for volume header: %d bytes, need at least %d", len(system), types.VolumeHeaderSize)
	}

	header := &types.VolumeHeader{}
	if err := restruct.Unpack(system[:types.VolumeHeaderSize], binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to parse volume header: %w", err)
	}

	if header.Signature != types.VolumeSignature {
		return nil, fmt.Errorf("%w: 0x%08X, expected 0x%08X", ErrInvalidVolumeSignature, header.Signature, types.VolumeSignature)
	}

	return &VolumeHeaderReader{header: header}, nil
}

// Header returns the decoded volume header
func (r *VolumeHeaderReader) Header() *types.VolumeHeader {
	return r.header
}

// FileRecordCount returns the number of Low Level File slots
func (r *VolumeHeaderReader) FileRecordCount() uint16 {
	return r.header.FileRecordCount
}

// UsesFileTable reports whether paths come from an external File Table
func (r *VolumeHeaderReader) UsesFileTable() bool {
	return r.header.UsesFileTable()
}

// Validate checks the header against the partition geometry. Findings are
// advisory.
func (r *VolumeHeaderReader) Validate(geometry types.Geometry) diagnostics.Collector {
	var diags diagnostics.Collector

	if expected := geometry.ExpectedVolumeSize(); r.header.VolumeSize != expected {
		diags.Advisory(diagnostics.ComponentVolume, "volume size 0x%X does not match the 0x%X bytes of %d System and %d Data chunks",
			r.header.VolumeSize, expected, geometry.SystemChunks, geometry.DataChunks)
	}
	if r.header.Reserved != 0 {
		diags.Advisory(diagnostics.ComponentVolume, "reserved volume header field is 0x%04X", r.header.Reserved)
	}

	return diags
}

func isZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
