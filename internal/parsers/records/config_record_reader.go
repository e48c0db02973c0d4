package records

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// ReadConfigRecord decodes one Configuration record of the given layout.
func ReadConfigRecord(data []byte, layout types.ConfigLayout) (*types.ConfigRecord, error) {
	size := layout.Size()
	if len(data) < size {
		return nil, fmt.Errorf("data too small for configuration record 0x%X: %d bytes", size, len(data))
	}

	switch layout {
	case types.ConfigLayout0x1C:
		var raw types.ConfigRecord0x1C
		if err := restruct.Unpack(data[:size], binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse configuration record 0x1C: %w", err)
		}
		return &types.ConfigRecord{
			Name:          cString(raw.FileName[:]),
			Access:        types.AccessMode(raw.AccessMode),
			DeployOptions: raw.DeployOptions,
			FileSize:      uint32(raw.FileSize),
			FileOffset:    raw.FileOffset,
			OwnerUserID:   raw.OwnerUserID,
			OwnerGroupID:  raw.OwnerGroupID,
			HasInlineName: true,
		}, nil
	case types.ConfigLayout0xC:
		var raw types.ConfigRecord0xC
		if err := restruct.Unpack(data[:size], binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse configuration record 0xC: %w", err)
		}
		return &types.ConfigRecord{
			FileID:        raw.FileID,
			Access:        types.AccessMode(raw.AccessMode),
			DeployOptions: raw.DeployOptions,
			FileSize:      uint32(raw.FileSize),
			FileOffset:    uint32(raw.FileOffset),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported configuration record layout 0x%X", size)
	}
}

// ReadConfigRecords decodes the record table at the start of a
// Configuration Low Level File. A count that overruns the file is advisory
// and clamped.
func ReadConfigRecords(data []byte, layout types.ConfigLayout, label string) ([]*types.ConfigRecord, diagnostics.Collector) {
	var diags diagnostics.Collector

	if len(data) < types.ConfigRecordCountSize {
		diags.Advisory(diagnostics.ComponentConfig, "%s: %d bytes cannot hold a record count", label, len(data))
		return nil, diags
	}

	count := int(binary.LittleEndian.Uint32(data[:types.ConfigRecordCountSize]))
	size := layout.Size()
	if fit := (len(data) - types.ConfigRecordCountSize) / size; count > fit {
		diags.Advisory(diagnostics.ComponentConfig, "%s: %d records declared, only %d fit", label, count, fit)
		count = fit
	}

	out := make([]*types.ConfigRecord, 0, count)
	for i := 0; i < count; i++ {
		offset := types.ConfigRecordCountSize + i*size
		rec, err := ReadConfigRecord(data[offset:], layout)
		if err != nil {
			diags.Advisory(diagnostics.ComponentConfig, "%s: record %d: %v", label, i, err)
			continue
		}
		if rec.DeployOptions&types.DeployReservedMask != 0 {
			diags.Advisory(diagnostics.ComponentConfig, "%s: record %s: reserved deploy options 0x%04X", label, rec.Label(), rec.DeployOptions&types.DeployReservedMask)
		}
		out = append(out, rec)
	}

	return out, diags
}
