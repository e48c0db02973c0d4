package services

import (
	"github.com/golang/glog"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/parsers/records"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// walkHome reconstructs the embedded directory tree rooted at the Home
// Directory Low Level File.
func (d *dispatcher) walkHome(root *types.LowLevelFile) {
	visited := map[uint16]bool{root.Index: true}
	d.referenced[root.Index] = true

	d.emit(&FileNode{
		Path:          types.HomeRootName,
		Source:        SourceHome,
		IsDirectory:   true,
		LowLevelIndex: int(root.Index),
	})
	d.walkFolder(root, []string{types.HomeRootName}, visited)
}

// walkFolder decodes one folder listing. segments is the folder path and
// is never modified in place.
func (d *dispatcher) walkFolder(folder *types.LowLevelFile, segments []string, visited map[uint16]bool) {
	folderPath := joinPath(segments...)
	listing, diags := records.ReadHomeListing(folder.Data, d.layout.Home, folderPath)
	d.diags.Merge(diags)

	glog.V(2).Infof("home folder %s: %d records in file %d", folderPath, len(listing), folder.Index)

	selfSeen := false
	for _, rec := range listing {
		d.record(VisitedRecord{
			Source:       SourceHome,
			Folder:       folderPath,
			Name:         rec.Name,
			Type:         rec.Type(),
			FileID:       uint32(rec.FileID),
			Access:       rec.Access,
			OwnerUserID:  rec.OwnerUserID,
			OwnerGroupID: rec.OwnerGroupID,
		})

		switch rec.Name {
		case types.HomeSelfRecordName:
			selfSeen = true
			if rec.FileID != folder.Index {
				d.diags.Advisory(diagnostics.ComponentHome, "%s: self record points to file %d, listing is file %d", folderPath, rec.FileID, folder.Index)
			}
			continue
		case types.HomeParentRecordName:
			continue
		}

		child := make([]string, len(segments)+1)
		copy(child, segments)
		child[len(segments)] = rec.Name
		childPath := joinPath(child...)

		target, ok := d.files[rec.FileID]
		if !ok || (target.State != types.FileStatePresent && target.State != types.FileStateEmpty) {
			d.diags.Advisory(diagnostics.ComponentHome, "%s: Low Level File %d is missing", childPath, rec.FileID)
			continue
		}

		if rec.Type() == types.RecordTypeFolder {
			if visited[rec.FileID] {
				d.diags.Advisory(diagnostics.ComponentHome, "%s: folder file %d already visited, not descending", childPath, rec.FileID)
				continue
			}
			visited[rec.FileID] = true
			d.referenced[rec.FileID] = true

			d.emit(homeNode(rec, childPath, true, nil))
			d.walkFolder(target, child, visited)
			continue
		}

		d.referenced[rec.FileID] = true
		node := homeNode(rec, childPath, false, target.Data)
		if rec.Access.HasIntegrity() {
			d.splitIntegrity(node, childPath)
		}
		d.emit(node)
	}

	if !selfSeen {
		d.diags.Advisory(diagnostics.ComponentHome, "%s: listing has no self record", folderPath)
	}
}

func homeNode(rec *types.HomeRecord, p string, folder bool, data []byte) *FileNode {
	return &FileNode{
		Path:          p,
		Name:          rec.Name,
		Source:        SourceHome,
		IsDirectory:   folder,
		LowLevelIndex: int(rec.FileID),
		Data:          data,
		Access:        rec.Access,
		OwnerUserID:   rec.OwnerUserID,
		OwnerGroupID:  rec.OwnerGroupID,
	}
}
