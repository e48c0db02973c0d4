// Package filetable loads the external File Table dictionary used by MFS
// volumes that do not embed their directory tree.
//
// The dictionary is a YAML sidecar keyed by platform and dictionary ID:
//
//	platforms:
//	  1:
//	    3:
//	      ftbl:
//	        - {file_id: 0x1004, vfs_id: 12, path: /home/mca/eom, access: 0x1A0}
//	      efst:
//	        - {vfs_id: 40, path: /home/bup/ct}
package filetable

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-mfs/internal/types"
)

// ErrDictionaryNotFound is returned when the sidecar file does not exist.
var ErrDictionaryNotFound = errors.New("file table dictionary not found")

// Table is the File Table of one platform and dictionary pair.
type Table struct {
	FTBL []types.FileTableEntry `yaml:"ftbl"`
	EFST []types.FileTableEntry `yaml:"efst"`
}

type document struct {
	Platforms map[int]map[int]*Table `yaml:"platforms"`
}

type tableKey struct {
	platform   uint8
	dictionary uint8
}

type tableIndex struct {
	byFileID map[uint32]types.FileTableEntry
	ftblVFS  map[uint16]types.FileTableEntry
	efstVFS  map[uint16]types.FileTableEntry
}

// Dictionary resolves file IDs through the loaded File Tables.
type Dictionary struct {
	tables map[tableKey]*tableIndex
}

// New creates an empty dictionary. Every lookup misses.
func New() *Dictionary {
	return &Dictionary{tables: make(map[tableKey]*tableIndex)}
}

// Parse decodes a YAML dictionary document.
func Parse(data []byte) (*Dictionary, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse file table dictionary: %w", err)
	}

	d := New()
	for platform, dictionaries := range doc.Platforms {
		for dictionary, table := range dictionaries {
			if platform < 0 || platform > 0xFF || dictionary < 0 || dictionary > 0xFF {
				return nil, fmt.Errorf("file table key %d/%d out of range", platform, dictionary)
			}
			if table == nil {
				continue
			}
			d.Add(uint8(platform), uint8(dictionary), *table)
		}
	}
	return d, nil
}

// Load reads and parses the dictionary at path on fs.
func Load(fs afero.Fs, path string) (*Dictionary, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDictionaryNotFound, path)
		}
		return nil, fmt.Errorf("failed to read file table dictionary %s: %w", path, err)
	}
	return Parse(data)
}

// Add registers a table. The first entry wins when IDs repeat.
func (d *Dictionary) Add(platform, dictionary uint8, table Table) {
	index := &tableIndex{
		byFileID: make(map[uint32]types.FileTableEntry),
		ftblVFS:  make(map[uint16]types.FileTableEntry),
		efstVFS:  make(map[uint16]types.FileTableEntry),
	}
	for _, entry := range table.FTBL {
		entry.Source = types.FileTableSourceFTBL
		if _, ok := index.byFileID[entry.FileID]; !ok {
			index.byFileID[entry.FileID] = entry
		}
		if _, ok := index.ftblVFS[entry.VFSID]; !ok {
			index.ftblVFS[entry.VFSID] = entry
		}
	}
	for _, entry := range table.EFST {
		entry.Source = types.FileTableSourceEFST
		if _, ok := index.efstVFS[entry.VFSID]; !ok {
			index.efstVFS[entry.VFSID] = entry
		}
	}
	d.tables[tableKey{platform: platform, dictionary: dictionary}] = index
}

// ByFileID resolves the File ID of a Configuration record.
func (d *Dictionary) ByFileID(platform, dictionary uint8, fileID uint32) (types.FileTableEntry, bool) {
	index, ok := d.tables[tableKey{platform: platform, dictionary: dictionary}]
	if !ok {
		return types.FileTableEntry{}, false
	}
	entry, ok := index.byFileID[fileID]
	return entry, ok
}

// ByVFSID resolves a Low Level File index, trying FTBL before EFST.
func (d *Dictionary) ByVFSID(platform, dictionary uint8, vfsID uint16) (types.FileTableEntry, bool) {
	index, ok := d.tables[tableKey{platform: platform, dictionary: dictionary}]
	if !ok {
		return types.FileTableEntry{}, false
	}
	if entry, ok := index.ftblVFS[vfsID]; ok {
		return entry, true
	}
	entry, ok := index.efstVFS[vfsID]
	return entry, ok
}

// Keys lists the loaded platform and dictionary pairs in ascending order.
func (d *Dictionary) Keys() [][2]uint8 {
	keys := make([][2]uint8, 0, len(d.tables))
	for k := range d.tables {
		keys = append(keys, [2]uint8{k.platform, k.dictionary})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}
