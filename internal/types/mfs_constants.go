// Package types implements the on-disk data structures of the Intel CSE
// MFS flash file system and of its MFSB backup container.
package types

// Page geometry
// MFS is erased and written in 8 KB pages. Every page starts with a fixed
// header followed by an index array and the chunk slots it describes.
const (
	// PageSize is the size of one flash erase unit.
	PageSize = 0x2000

	// PageHeaderSize is the size of PageHeader on disk.
	PageHeaderSize = 0x12

	// PageHeaderCRCSpan is the number of header bytes covered by the CRC-8.
	PageHeaderCRCSpan = 0x10

	// PageSignature marks System and Data pages.
	PageSignature uint32 = 0xAA557887

	// PageSignatureErased is the signature of an erased Scratch page.
	PageSignatureErased uint32 = 0xFFFFFFFF

	// PageSignatureBlank is the signature of a Scratch page caught between
	// erase and write. Its header CRC-8 is computed with PageSignature.
	PageSignatureBlank uint32 = 0x00000000

	// PagesPerSystemPage is the divisor used to derive the System page count.
	PagesPerSystemPage = 12

	// ScratchPageCount is the number of pages kept free for wear leveling.
	ScratchPageCount = 1
)

// Chunk geometry
const (
	// ChunkSize is the payload size of one chunk.
	ChunkSize = 0x40

	// ChunkCRCSize is the size of the CRC-16 stored after each payload.
	ChunkCRCSize = 2

	// ChunkEntrySize is the on-disk size of one chunk slot.
	ChunkEntrySize = ChunkSize + ChunkCRCSize

	// SystemPageChunks is the number of chunk slots in a System page.
	SystemPageChunks = (PageSize - PageHeaderSize) / (ChunkEntrySize + 2)

	// SystemIndexSlots is the length of the obfuscated System index array.
	// One slot more than the chunk count so a full page still terminates.
	SystemIndexSlots = SystemPageChunks + 1

	// SystemIndexOffset is the page offset of the System index array.
	SystemIndexOffset = PageHeaderSize

	// SystemChunksOffset is the page offset of the first System chunk.
	SystemChunksOffset = SystemIndexOffset + SystemIndexSlots*2

	// DataPageChunks is the number of chunk slots in a Data page.
	DataPageChunks = (PageSize - PageHeaderSize) / (ChunkEntrySize + 1)

	// DataIndexOffset is the page offset of the Data used/unused byte array.
	DataIndexOffset = PageHeaderSize

	// DataChunksOffset is the page offset of the first Data chunk.
	DataChunksOffset = DataIndexOffset + DataPageChunks

	// SystemIndexUnusedMask flags an unused System index entry when both bits are set.
	SystemIndexUnusedMask uint16 = 0xC000

	// DataIndexUsed marks a present Data chunk.
	DataIndexUsed byte = 0x00

	// DataIndexFree marks an absent Data chunk.
	DataIndexFree byte = 0xFF
)

// Checksum seeds
const (
	// CRC8Seed is the initial register of the page header CRC-8.
	CRC8Seed uint8 = 0x01

	// CRC8Polynomial is the page header CRC-8 polynomial.
	CRC8Polynomial uint8 = 0x07

	// CRC16Seed is the initial register of the chunk CRC-16.
	CRC16Seed uint16 = 0xFFFF

	// CRC16Polynomial is the CCITT polynomial shared by both CRC-16 variants.
	CRC16Polynomial uint16 = 0x1021

	// MaskCRC16Seed is the initial register of the 14-bit index mask CRC.
	MaskCRC16Seed uint16 = 0x3FFF

	// MaskCRC16Bits restricts the index mask register after every byte.
	MaskCRC16Bits uint16 = 0x3FFF
)

// Volume and FAT
const (
	// VolumeSignature identifies the System Volume Header in chunk 0.
	VolumeSignature uint32 = 0x724F6201

	// VolumeHeaderSize is the size of VolumeHeader on disk.
	VolumeHeaderSize = 0x0E

	// FATEntrySize is the size of one FAT value.
	FATEntrySize = 2
)

// FAT markers
const (
	// FATUnused marks a file slot or chunk that was never used.
	FATUnused uint16 = 0x0000

	// FATErased marks a file slot or chunk that was deleted.
	FATErased uint16 = 0xFFFE

	// FATEmpty marks a file slot that is used but holds no data.
	FATEmpty uint16 = 0xFFFF

	// FATLastChunkMin and FATLastChunkMax bound the chain terminator values.
	// A terminator also carries the number of bytes used in the last chunk.
	FATLastChunkMin uint16 = 1
	FATLastChunkMax uint16 = ChunkSize
)

// ManifestTag marks a CSE manifest inside the Manifest Backup file.
var ManifestTag = []byte("$MN2")

// ManifestTagOffset is the offset of ManifestTag in a manifest header.
const ManifestTagOffset = 0x1C
