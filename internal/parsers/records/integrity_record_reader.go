package records

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/deploymenttheory/go-mfs/internal/types"
)

// HMAC algorithms of the two Integrity Record layouts
const (
	HMACMD5    = "HMAC-MD5"
	HMACSHA256 = "HMAC-SHA256"
)

// ReadIntegrityRecord decodes an Integrity Record of the given layout.
func ReadIntegrityRecord(data []byte, layout types.IntegrityLayout) (*types.IntegrityRecord, error) {
	size := layout.Size()
	if len(data) < size {
		return nil, fmt.Errorf("data too small for integrity record 0x%X: %d bytes", size, len(data))
	}

	var (
		rec   types.IntegrityRecord
		flags uint32
	)

	switch layout {
	case types.IntegrityLayout0x28:
		var raw types.IntegrityRecord0x28
		if err := restruct.Unpack(data[:size], binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse integrity record 0x28: %w", err)
		}
		rec.HMAC = append([]byte(nil), raw.HMAC[:]...)
		rec.HMACAlgorithm = HMACMD5
		rec.ARRandom, rec.ARCounter = raw.ARRandom, raw.ARCounter
		flags = raw.Flags
	case types.IntegrityLayout0x34:
		var raw types.IntegrityRecord0x34
		if err := restruct.Unpack(data[:size], binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse integrity record 0x34: %w", err)
		}
		rec.HMAC = append([]byte(nil), raw.HMAC[:]...)
		rec.HMACAlgorithm = HMACSHA256
		rec.ARRandom, rec.ARCounter = raw.ARRandom, raw.ARCounter
		rec.Nonce = append([]byte(nil), raw.Nonce[:]...)
		rec.HasNonce = true
		flags = raw.Flags
	default:
		return nil, fmt.Errorf("unsupported integrity record layout 0x%X", size)
	}

	rec.ARIndex = uint16(flags & types.IntegrityARIndexMask)
	rec.SVN = uint8(flags >> types.IntegritySVNShift & types.IntegritySVNMask)
	rec.ReservedFlags = flags >> types.IntegrityReservedShift

	return &rec, nil
}

// SplitIntegrity splits the trailing Integrity Record off a file's bytes.
func SplitIntegrity(data []byte, layout types.IntegrityLayout) ([]byte, *types.IntegrityRecord, error) {
	size := layout.Size()
	if len(data) < size {
		return data, nil, fmt.Errorf("%d bytes cannot hold a 0x%X integrity record", len(data), size)
	}

	rec, err := ReadIntegrityRecord(data[len(data)-size:], layout)
	if err != nil {
		return data, nil, err
	}
	return data[:len(data)-size], rec, nil
}
