// Package backup reconstructs MFS content from MFSB backup containers.
package backup

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-restruct/restruct"
	"github.com/golang/glog"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// ErrInvalidBackupSignature is returned when the container does not start
// with MFSB.
var ErrInvalidBackupSignature = errors.New("invalid MFSB signature")

// maxPartitionSize bounds a revision 0 reconstruction.
const maxPartitionSize = 0x1000000

// Entry is one revision 1 entry.
type Entry struct {
	Name string

	// Index is the Low Level File index the entry stands in for.
	Index uint16

	Data           []byte
	HeaderCRCValid bool
	DataCRCValid   bool
}

// Backup is a decoded MFSB container.
type Backup struct {
	Revision types.BackupRevision

	// CRCValid reports the top-level CRC-32: the stream CRC of revision 0
	// or the header CRC of revision 1.
	CRCValid bool

	// Partition is the reconstructed MFS partition of a revision 0 container.
	Partition []byte

	// Entries holds the entries of a revision 1 container.
	Entries []Entry
}

// DetectRevision tells the two container revisions apart. Revision 0 keeps
// every byte after its CRC erased.
func DetectRevision(data []byte) (types.BackupRevision, error) {
	if len(data) < types.BackupHeaderSize {
		return 0, fmt.Errorf("data too small for MFSB header: %d bytes, need at least %d", len(data), types.BackupHeaderSize)
	}
	if !bytes.Equal(data[:4], types.BackupSignature[:]) {
		return 0, fmt.Errorf("%w: % X", ErrInvalidBackupSignature, data[:4])
	}

	for _, b := range data[types.BackupReservedOffset:types.BackupHeaderSize] {
		if b != 0xFF {
			return types.BackupRevision1, nil
		}
	}
	return types.BackupRevision0, nil
}

// Read decodes an MFSB container. CRC mismatches are advisory.
func Read(data []byte) (*Backup, diagnostics.Collector, error) {
	revision, err := DetectRevision(data)
	if err != nil {
		return nil, diagnostics.Collector{}, err
	}

	glog.V(1).Infof("MFSB container of %d bytes, revision %d", len(data), revision)

	if revision == types.BackupRevision0 {
		return readRevision0(data)
	}
	return readRevision1(data)
}

func readRevision0(data []byte) (*Backup, diagnostics.Collector, error) {
	var diags diagnostics.Collector

	var header types.BackupHeaderR0
	if err := restruct.Unpack(data[:types.BackupHeaderSize], binary.LittleEndian, &header); err != nil {
		return nil, diags, fmt.Errorf("failed to parse MFSB header: %w", err)
	}

	stream := data[types.BackupHeaderSize:]
	result := &Backup{Revision: types.BackupRevision0}
	if crc := checksum.CRC32(stream); crc != header.CRC32 {
		diags.Advisory(diagnostics.ComponentBackup, "MFSB stream CRC-32 0x%08X, expected 0x%08X", header.CRC32, crc)
	} else {
		result.CRCValid = true
	}

	var out []byte
	for pos := 0; pos < len(stream); {
		marker := bytes.Index(stream[pos:], types.BackupChunkMarker[:])
		if marker < 0 {
			out = append(out, stream[pos:]...)
			break
		}
		out = append(out, stream[pos:pos+marker]...)
		pos += marker + len(types.BackupChunkMarker)

		if pos+types.BackupPaddingLengthSize > len(stream) {
			diags.Advisory(diagnostics.ComponentBackup, "MFSB stream ends inside a padding length at 0x%X", types.BackupHeaderSize+pos)
			break
		}
		var padding types.BackupPaddingR0
		if err := restruct.Unpack(stream[pos:pos+types.BackupPaddingLengthSize], binary.LittleEndian, &padding); err != nil {
			return nil, diags, fmt.Errorf("failed to parse MFSB padding length: %w", err)
		}
		pos += types.BackupPaddingLengthSize

		if len(out)+int(padding.Length) > maxPartitionSize {
			diags.Advisory(diagnostics.ComponentBackup, "MFSB padding of 0x%X bytes exceeds the partition limit, stopping", padding.Length)
			break
		}
		out = append(out, bytes.Repeat([]byte{types.BackupPaddingByte}, int(padding.Length))...)
	}

	if rem := len(out) % types.PageSize; rem != 0 {
		out = append(out, bytes.Repeat([]byte{types.BackupPaddingByte}, types.PageSize-rem)...)
	}
	result.Partition = out

	glog.V(1).Infof("MFSB revision 0 reconstructed %d bytes", len(out))

	return result, diags, nil
}

func readRevision1(data []byte) (*Backup, diagnostics.Collector, error) {
	var diags diagnostics.Collector

	var header types.BackupHeaderR1
	if err := restruct.Unpack(data[:types.BackupHeaderSize], binary.LittleEndian, &header); err != nil {
		return nil, diags, fmt.Errorf("failed to parse MFSB header: %w", err)
	}

	result := &Backup{Revision: types.BackupRevision1}
	if crc := checksum.CRC32WithZeroedField(data[:types.BackupHeaderSize], types.BackupHeaderCRCOffset); crc != header.HeaderCRC32 {
		diags.Advisory(diagnostics.ComponentBackup, "MFSB header CRC-32 0x%08X, expected 0x%08X", header.HeaderCRC32, crc)
	} else {
		result.CRCValid = true
	}
	if header.Revision != uint32(types.BackupRevision1) {
		diags.Advisory(diagnostics.ComponentBackup, "MFSB header declares revision %d", header.Revision)
	}
	if header.EntryCount != types.BackupEntryCount {
		diags.Advisory(diagnostics.ComponentBackup, "MFSB header declares %d entries, expected %d", header.EntryCount, types.BackupEntryCount)
	}

	for i := 0; i < types.BackupEntryCount; i++ {
		start := types.BackupHeaderSize + i*types.BackupEntryHeaderSize
		end := start + types.BackupEntryHeaderSize
		if end > len(data) {
			diags.Advisory(diagnostics.ComponentBackup, "MFSB entry %s header is truncated", types.BackupEntryNames[i])
			break
		}

		entry, entryDiags, err := readEntry(data, data[start:end], i)
		diags.Merge(entryDiags)
		if err != nil {
			return nil, diags, err
		}
		result.Entries = append(result.Entries, *entry)
	}

	return result, diags, nil
}

func readEntry(data, headerBytes []byte, i int) (*Entry, diagnostics.Collector, error) {
	var diags diagnostics.Collector

	var header types.BackupEntryHeader
	if err := restruct.Unpack(headerBytes, binary.LittleEndian, &header); err != nil {
		return nil, diags, fmt.Errorf("failed to parse MFSB entry %d: %w", i, err)
	}

	entry := &Entry{
		Name:  string(bytes.TrimRight(header.Name[:], "\x00")),
		Index: types.BackupEntryIndices[i],
	}
	if entry.Name != types.BackupEntryNames[i] {
		diags.Advisory(diagnostics.ComponentBackup, "MFSB entry %d is named %q, expected %q", i, entry.Name, types.BackupEntryNames[i])
	}

	if crc := checksum.CRC32WithZeroedField(headerBytes, types.BackupEntryCRCOffset); crc != header.HeaderCRC32 {
		diags.Advisory(diagnostics.ComponentBackup, "MFSB entry %s: header CRC-32 0x%08X, expected 0x%08X", entry.Name, header.HeaderCRC32, crc)
	} else {
		entry.HeaderCRCValid = true
	}

	start := int(header.Offset)
	end := start + int(header.Size)
	if start > len(data) || end > len(data) {
		diags.Advisory(diagnostics.ComponentBackup, "MFSB entry %s: data [0x%X, 0x%X) exceeds the container, clamping", entry.Name, start, end)
		if start > len(data) {
			start = len(data)
		}
		end = len(data)
	}
	entry.Data = data[start:end]

	if crc := checksum.CRC32(entry.Data); crc != header.DataCRC32 {
		diags.Advisory(diagnostics.ComponentBackup, "MFSB entry %s: data CRC-32 0x%08X, expected 0x%08X", entry.Name, header.DataCRC32, crc)
	} else {
		entry.DataCRCValid = true
	}

	glog.V(2).Infof("MFSB entry %s -> file %d, %d bytes", entry.Name, entry.Index, len(entry.Data))

	return entry, diags, nil
}
