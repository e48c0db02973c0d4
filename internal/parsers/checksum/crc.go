// Package checksum implements the checksums protecting MFS structures: the
// page header CRC-8, the chunk CRC-16, the 14-bit masking CRC-16 used to
// obfuscate System chunk indices and the CRC-32 of MFSB backups.
package checksum

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/deploymenttheory/go-mfs/internal/types"
)

var (
	crc8Table  = makeCRC8Table(types.CRC8Polynomial)
	crc16Table = makeCRC16Table(types.CRC16Polynomial)
)

func makeCRC8Table(poly uint8) [256]uint8 {
	var table [256]uint8
	for i := 0; i < 256; i++ {
		crc := uint8(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

func makeCRC16Table(poly uint16) [256]uint16 {
	var table [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// CRC8 computes the page header CRC-8 (polynomial 0x07, seed 0x01).
func CRC8(data []byte) uint8 {
	crc := types.CRC8Seed
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc
}

// CRC16 computes the CCITT CRC-16 seeded with 0xFFFF.
func CRC16(data []byte) uint16 {
	return updateCRC16(types.CRC16Seed, data)
}

func updateCRC16(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc = crc<<8 ^ crc16Table[byte(crc>>8)^b]
	}
	return crc
}

// ChunkCRC16 computes the CRC-16 of a chunk. The global chunk index is
// appended to the payload so a chunk moved to another index fails.
func ChunkCRC16(payload []byte, index uint16) uint16 {
	var suffix [2]byte
	binary.LittleEndian.PutUint16(suffix[:], index)
	return updateCRC16(updateCRC16(types.CRC16Seed, payload), suffix[:])
}

// MaskCRC16 computes the System index mask of the chunk index that
// precedes a slot. The register is 14 bits wide, so the table is indexed
// with its top byte (crc >> 6) and the result is clipped after every byte.
func MaskCRC16(previous uint16) uint16 {
	var in [2]byte
	binary.LittleEndian.PutUint16(in[:], previous)

	crc := types.MaskCRC16Seed
	for _, b := range in {
		crc = (crc<<8 ^ crc16Table[byte(crc>>6)^b]) & types.MaskCRC16Bits
	}
	return crc
}

// CRC32 computes the IEEE CRC-32 used by MFSB containers.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// CRC32WithZeroedField computes CRC32 over data with the 4-byte field at
// offset treated as zero.
func CRC32WithZeroedField(data []byte, offset int) uint32 {
	copyData := make([]byte, len(data))
	copy(copyData, data)
	if offset >= 0 && offset+4 <= len(copyData) {
		binary.LittleEndian.PutUint32(copyData[offset:offset+4], 0)
	}
	return CRC32(copyData)
}
