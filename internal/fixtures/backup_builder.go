package fixtures

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-mfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// BackupSegment is one revision 0 payload run and the 0xFF padding that
// follows it in the reconstructed partition.
type BackupSegment struct {
	Payload []byte
	Padding uint32

	// Unterminated writes the payload without a marker. Only valid last.
	Unterminated bool
}

// SplitBackupR0 turns a partition into revision 0 segments, folding every
// run of at least minRun 0xFF bytes into padding.
func SplitBackupR0(partition []byte, minRun int) []BackupSegment {
	var segments []BackupSegment
	start := 0
	i := 0
	for i < len(partition) {
		if partition[i] != types.BackupPaddingByte {
			i++
			continue
		}
		run := i
		for run < len(partition) && partition[run] == types.BackupPaddingByte {
			run++
		}
		if run-i >= minRun {
			segments = append(segments, BackupSegment{Payload: partition[start:i], Padding: uint32(run - i)})
			start = run
		}
		i = run
	}
	if start < len(partition) {
		segments = append(segments, BackupSegment{Payload: partition[start:]})
	}
	return segments
}

// EncodeBackupR0 encodes a revision 0 MFSB container.
func EncodeBackupR0(segments []BackupSegment) []byte {
	var stream []byte
	for _, s := range segments {
		stream = append(stream, s.Payload...)
		if s.Unterminated {
			break
		}
		stream = append(stream, types.BackupChunkMarker[:]...)
		stream = binary.BigEndian.AppendUint32(stream, s.Padding)
	}

	header := types.BackupHeaderR0{Signature: types.BackupSignature, CRC32: checksum.CRC32(stream)}
	for i := range header.Reserved {
		header.Reserved[i] = 0xFF
	}

	return append(mustPack(&header), stream...)
}

// EncodeBackupR1 encodes a revision 1 MFSB container holding the Intel
// configuration, OEM configuration and manifest entries in that order.
func EncodeBackupR1(entries [types.BackupEntryCount][]byte) []byte {
	return encodeBackupR1(entries, -1)
}

// EncodeBackupR1WrongDataCRC encodes a revision 1 container whose entry
// bad carries a wrong data CRC-32 under a valid entry header CRC-32.
func EncodeBackupR1WrongDataCRC(entries [types.BackupEntryCount][]byte, bad int) []byte {
	return encodeBackupR1(entries, bad)
}

func encodeBackupR1(entries [types.BackupEntryCount][]byte, bad int) []byte {
	header := types.BackupHeaderR1{
		Signature:  types.BackupSignature,
		Revision:   uint32(types.BackupRevision1),
		EntryCount: types.BackupEntryCount,
	}
	headerBytes := mustPack(&header)
	binary.LittleEndian.PutUint32(headerBytes[types.BackupHeaderCRCOffset:], checksum.CRC32WithZeroedField(headerBytes, types.BackupHeaderCRCOffset))

	out := headerBytes
	offset := types.BackupHeaderSize + types.BackupEntryCount*types.BackupEntryHeaderSize
	for i, data := range entries {
		entry := types.BackupEntryHeader{
			Name:      fileName(types.BackupEntryNames[i]),
			Offset:    uint32(offset),
			Size:      uint32(len(data)),
			DataCRC32: checksum.CRC32(data),
		}
		if i == bad {
			entry.DataCRC32 ^= 0x01
		}
		entryBytes := mustPack(&entry)
		binary.LittleEndian.PutUint32(entryBytes[types.BackupEntryCRCOffset:], checksum.CRC32WithZeroedField(entryBytes, types.BackupEntryCRCOffset))
		out = append(out, entryBytes...)
		offset += len(data)
	}

	for _, data := range entries {
		out = append(out, data...)
	}
	return out
}
