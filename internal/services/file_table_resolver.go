package services

import (
	"fmt"
	"path"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// resolveFileTable names a Low Level File through the File Table, using its
// index as VFS ID. Unresolved files are stored under unknown/.
func (d *dispatcher) resolveFileTable(file *types.LowLevelFile) {
	entry, ok := d.lookup.ByVFSID(d.platform, d.dictionary, file.Index)
	if !ok {
		d.diags.Advisory(diagnostics.ComponentFTBL, "Low Level File %d is not in File Table %d/%d, storing as %s",
			file.Index, d.platform, d.dictionary, unknownPath(uint32(file.Index)))
		d.record(VisitedRecord{Source: SourceFileTable, Folder: SourceUnknown, Name: fmt.Sprint(file.Index), FileID: uint32(file.Index)})
		d.emit(&FileNode{
			Path:          unknownPath(uint32(file.Index)),
			Source:        SourceUnknown,
			LowLevelIndex: int(file.Index),
			Data:          file.Data,
		})
		return
	}

	access := types.AccessMode(entry.Access)
	p := cleanTablePath(entry.Path)
	d.record(VisitedRecord{
		Source:       SourceFileTable,
		Folder:       parentOf(p),
		Name:         path.Base(p),
		Type:         recordType(access),
		FileID:       entry.FileID,
		Access:       access,
		OwnerUserID:  entry.UserID,
		OwnerGroupID: entry.GroupID,
		Size:         uint32(len(file.Data)),
	})

	node := &FileNode{
		Path:          p,
		Source:        SourceFileTable,
		LowLevelIndex: int(file.Index),
		FileID:        entry.FileID,
		Data:          file.Data,
		Access:        access,
		OwnerUserID:   entry.UserID,
		OwnerGroupID:  entry.GroupID,
		DeployOptions: entry.Options,
	}
	if access.HasIntegrity() {
		d.splitIntegrity(node, p)
	}
	d.emit(node)
}

func parentOf(p string) string {
	if dir := path.Dir(p); dir != "." {
		return dir
	}
	return ""
}
