package fixtures

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-mfs/internal/types"
)

func fileName(name string) [12]byte {
	var out [12]byte
	copy(out[:], name)
	return out
}

// HomeEntry is one Home Directory record to encode.
type HomeEntry struct {
	Name   string
	FileID uint16
	Access types.AccessMode
	Owner  uint16
	Group  uint16
	Salt   uint16
}

// Folder returns a folder entry with rwxr-x--- rights.
func Folder(name string, fileID uint16) HomeEntry {
	return HomeEntry{Name: name, FileID: fileID, Access: types.AccessFolder | 0o750}
}

// File returns a file entry with rw-r----- rights.
func File(name string, fileID uint16) HomeEntry {
	return HomeEntry{Name: name, FileID: fileID, Access: 0o640}
}

// EncodeHomeRecords encodes a Home Directory listing in the given layout.
func EncodeHomeRecords(layout types.HomeLayout, entries ...HomeEntry) []byte {
	var out []byte
	for _, e := range entries {
		info := uint32(e.FileID)&types.FileInfoIDMask | uint32(e.Salt)<<types.FileInfoSaltShift
		switch layout {
		case types.HomeLayout0x18:
			out = append(out, mustPack(&types.HomeRecord0x18{
				FileInfo:     info,
				AccessMode:   uint16(e.Access),
				OwnerUserID:  e.Owner,
				OwnerGroupID: e.Group,
				Salt:         e.Salt,
				FileName:     fileName(e.Name),
			})...)
		case types.HomeLayout0x1C:
			out = append(out, mustPack(&types.HomeRecord0x1C{
				FileInfo:     info,
				AccessMode:   uint16(e.Access),
				OwnerUserID:  e.Owner,
				OwnerGroupID: e.Group,
				Salt:         [3]uint16{e.Salt, e.Salt + 1, e.Salt + 2},
				FileName:     fileName(e.Name),
			})...)
		default:
			panic(fmt.Sprintf("fixtures: unsupported home layout 0x%X", int(layout)))
		}
	}
	return out
}

// EncodeIntegrityRecord encodes an Integrity Record with the given anti-replay
// index and SVN. The HMAC is filled with a recognizable pattern.
func EncodeIntegrityRecord(layout types.IntegrityLayout, arIndex uint16, svn uint8) []byte {
	flags := uint32(arIndex)&types.IntegrityARIndexMask | uint32(svn)<<types.IntegritySVNShift
	switch layout {
	case types.IntegrityLayout0x28:
		rec := types.IntegrityRecord0x28{Flags: flags, ARRandom: 0x11223344, ARCounter: 7}
		for i := range rec.HMAC {
			rec.HMAC[i] = byte(0xA0 + i)
		}
		return mustPack(&rec)
	case types.IntegrityLayout0x34:
		rec := types.IntegrityRecord0x34{Flags: flags, ARRandom: 0x11223344, ARCounter: 7}
		for i := range rec.HMAC {
			rec.HMAC[i] = byte(0xA0 + i)
		}
		for i := range rec.Nonce {
			rec.Nonce[i] = byte(0x50 + i)
		}
		return mustPack(&rec)
	default:
		panic(fmt.Sprintf("fixtures: unsupported integrity layout 0x%X", int(layout)))
	}
}

// ConfigEntry is one Configuration record and the data it points to.
// Offsets and sizes are computed by EncodeConfigFile.
type ConfigEntry struct {
	Name   string
	FileID uint32
	Access types.AccessMode
	Deploy uint16
	Data   []byte
}

// ConfigFolder returns a folder entry for 0x1C layouts.
func ConfigFolder(name string) ConfigEntry {
	return ConfigEntry{Name: name, Access: types.AccessFolder | 0o750}
}

// ConfigFile returns a file entry for 0x1C layouts.
func ConfigFile(name string, data []byte) ConfigEntry {
	return ConfigEntry{Name: name, Access: 0o640, Deploy: types.DeployOEMConfigurable, Data: data}
}

// ConfigID returns a file entry for 0xC layouts.
func ConfigID(fileID uint32, data []byte) ConfigEntry {
	return ConfigEntry{FileID: fileID, Access: 0o640, Data: data}
}

// EncodeConfigFile encodes a Configuration Low Level File. The record table
// is followed by the entries' data in order.
func EncodeConfigFile(layout types.ConfigLayout, entries ...ConfigEntry) []byte {
	head := make([]byte, types.ConfigRecordCountSize)
	binary.LittleEndian.PutUint32(head, uint32(len(entries)))

	offset := types.ConfigRecordCountSize + len(entries)*layout.Size()
	var payload []byte
	for _, e := range entries {
		size := len(e.Data)
		switch layout {
		case types.ConfigLayout0x1C:
			head = append(head, mustPack(&types.ConfigRecord0x1C{
				FileName:      fileName(e.Name),
				AccessMode:    uint16(e.Access),
				DeployOptions: e.Deploy,
				FileSize:      uint16(size),
				FileOffset:    uint32(offset),
			})...)
		case types.ConfigLayout0xC:
			head = append(head, mustPack(&types.ConfigRecord0xC{
				FileID:        e.FileID,
				AccessMode:    uint16(e.Access),
				DeployOptions: e.Deploy,
				FileSize:      uint16(size),
				FileOffset:    uint16(offset),
			})...)
		default:
			panic(fmt.Sprintf("fixtures: unsupported config layout 0x%X", int(layout)))
		}
		payload = append(payload, e.Data...)
		offset += size
	}

	return append(head, payload...)
}
