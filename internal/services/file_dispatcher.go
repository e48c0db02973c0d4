package services

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/golang/glog"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/interfaces"
	"github.com/deploymenttheory/go-mfs/internal/parsers/records"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// dispatcher routes Low Level Files to their decoders and collects the
// reconstructed tree. It lives for one analysis.
type dispatcher struct {
	layout types.Layout
	lookup interfaces.FileTableLookup

	fileTable  bool
	platform   uint8
	dictionary uint8

	files      map[uint16]*types.LowLevelFile
	referenced map[uint16]bool

	nodes   []*FileNode
	paths   map[string]int
	records []VisitedRecord
	diags   diagnostics.Collector
}

func newDispatcher(layout types.Layout, lookup interfaces.FileTableLookup, volume *types.VolumeHeader) *dispatcher {
	d := &dispatcher{
		layout:     layout,
		lookup:     lookup,
		files:      make(map[uint16]*types.LowLevelFile),
		referenced: make(map[uint16]bool),
		paths:      make(map[string]int),
	}
	if volume != nil {
		d.fileTable = volume.UsesFileTable()
		d.platform = volume.FTBLPlatform
		d.dictionary = volume.FTBLDictionary
	}
	return d
}

// lowLevelPath returns the output path of a role file.
func lowLevelPath(index uint16, role types.FileRole) string {
	return fmt.Sprintf("%s/%04d-%s", SourceLowLevel, index, role.Slug())
}

// unknownPath returns the fallback path of an unresolved ID.
func unknownPath(id uint32) string {
	return fmt.Sprintf("%s/%d", SourceUnknown, id)
}

// roleOf returns the role of a Low Level File. Index 9 is a Manifest Backup
// only when it carries a manifest.
func roleOf(file *types.LowLevelFile) types.FileRole {
	role := types.RoleForIndex(file.Index)
	if role == types.RoleManifestBackup && !types.IsManifestBackup(file.Data) {
		return types.RoleUnparsed
	}
	return role
}

// dispatch decodes every Low Level File in ascending index order.
func (d *dispatcher) dispatch(files []*types.LowLevelFile) {
	ordered := make([]*types.LowLevelFile, 0, len(files))
	for _, f := range files {
		d.files[f.Index] = f
		ordered = append(ordered, f)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	var deferred []*types.LowLevelFile
	for _, file := range ordered {
		if file.State != types.FileStatePresent && file.State != types.FileStateEmpty {
			continue
		}

		role := roleOf(file)
		glog.V(2).Infof("dispatch file %d (%d bytes) as %s", file.Index, len(file.Data), role)

		switch role {
		case types.RoleAntiReplay, types.RoleSVNMigration, types.RoleQuotaStorage:
			d.emitRoleFile(file, role, role.CarriesIntegrity(d.layout))
		case types.RoleIntelConfiguration:
			d.emitRoleFile(file, role, false)
			d.decodeConfig(file, SourceIntelConfig)
		case types.RoleOEMConfiguration:
			d.emitRoleFile(file, role, false)
			d.decodeConfig(file, SourceOEMConfig)
		case types.RoleHomeDirectory:
			d.emitRoleFile(file, role, false)
			if d.fileTable {
				d.resolveFileTable(file)
			} else {
				d.walkHome(file)
			}
		case types.RoleUnparsed:
			if d.fileTable {
				d.resolveFileTable(file)
			} else {
				deferred = append(deferred, file)
			}
		default:
			d.emitRoleFile(file, role, false)
		}
	}

	// Files the Home Directory never referenced are kept as raw files.
	for _, file := range deferred {
		if !d.referenced[file.Index] {
			d.emitRoleFile(file, types.RoleUnparsed, false)
		}
	}
}

// emitRoleFile stores a Low Level File under low-level/, splitting its
// Integrity Record off when it carries one.
func (d *dispatcher) emitRoleFile(file *types.LowLevelFile, role types.FileRole, integrity bool) {
	node := &FileNode{
		Path:          lowLevelPath(file.Index, role),
		Source:        SourceLowLevel,
		LowLevelIndex: int(file.Index),
		Data:          file.Data,
	}
	if integrity {
		d.splitIntegrity(node, fmt.Sprintf("Low Level File %d", file.Index))
	}
	d.emit(node)
}

// splitIntegrity moves the trailing Integrity Record of node into its
// metadata. Content too short for a record is kept whole.
func (d *dispatcher) splitIntegrity(node *FileNode, label string) {
	content, rec, err := records.SplitIntegrity(node.Data, d.layout.Integrity)
	if err != nil {
		d.diags.Advisory(diagnostics.ComponentDispatch, "%s: %v", label, err)
		return
	}
	node.Data = content
	node.Integrity = rec
}

// emit adds node to the tree. A path that is already taken is suffixed.
func (d *dispatcher) emit(node *FileNode) {
	if n, ok := d.paths[node.Path]; ok {
		d.paths[node.Path] = n + 1
		renamed := fmt.Sprintf("%s~%d", node.Path, n)
		d.diags.Advisory(diagnostics.ComponentDispatch, "duplicate path %s stored as %s", node.Path, renamed)
		node.Path = renamed
	} else {
		d.paths[node.Path] = 1
	}
	if node.Name == "" {
		node.Name = path.Base(node.Path)
	}
	d.nodes = append(d.nodes, node)
}

// record appends a visited record to the log.
func (d *dispatcher) record(rec VisitedRecord) {
	rec.Sequence = len(d.records)
	d.records = append(d.records, rec)
}

// sortedFiles returns the emitted nodes ordered by path.
func (d *dispatcher) sortedFiles() []*FileNode {
	out := make([]*FileNode, len(d.nodes))
	copy(out, d.nodes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// joinPath joins path segments for output.
func joinPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// cleanTablePath turns a File Table path into a relative output path.
func cleanTablePath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
