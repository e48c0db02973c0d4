package services

import (
	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/parsers/records"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// decodeConfig extracts the files described by a Configuration Low Level
// File. Inline-named records nest under folder records until a ".." record
// closes them; File-ID records are resolved through the File Table.
func (d *dispatcher) decodeConfig(file *types.LowLevelFile, root string) {
	recs, diags := records.ReadConfigRecords(file.Data, d.layout.Config, root)
	d.diags.Merge(diags)

	var stack []string
	for _, rec := range recs {
		d.record(VisitedRecord{
			Source:       root,
			Folder:       joinPath(append([]string{root}, stack...)...),
			Name:         rec.Label(),
			Type:         recordType(rec.Access),
			FileID:       rec.FileID,
			Access:       rec.Access,
			OwnerUserID:  rec.OwnerUserID,
			OwnerGroupID: rec.OwnerGroupID,
			Offset:       rec.FileOffset,
			Size:         rec.FileSize,
		})

		var p string
		if rec.HasInlineName {
			if rec.Name == types.HomeParentRecordName {
				if len(stack) == 0 {
					d.diags.Advisory(diagnostics.ComponentConfig, "%s: \"..\" record at the top level", root)
					continue
				}
				stack = stack[:len(stack)-1]
				continue
			}
			if rec.Access.IsFolder() {
				stack = append(stack, rec.Name)
				d.emit(configNode(rec, joinPath(append([]string{root}, stack...)...), root, true, nil))
				continue
			}
			p = joinPath(append(append([]string{root}, stack...), rec.Name)...)
		} else {
			entry, ok := d.lookup.ByFileID(d.platform, d.dictionary, rec.FileID)
			if ok {
				p = joinPath(root, cleanTablePath(entry.Path))
			} else {
				d.diags.Advisory(diagnostics.ComponentFTBL, "%s: File ID 0x%08X is not in File Table %d/%d",
					root, rec.FileID, d.platform, d.dictionary)
				p = unknownPath(rec.FileID)
			}
			if rec.Access.IsFolder() {
				d.emit(configNode(rec, p, root, true, nil))
				continue
			}
		}

		d.emit(configNode(rec, p, root, false, d.sliceConfig(file.Data, rec, p)))
	}

	if len(stack) > 0 {
		d.diags.Info(diagnostics.ComponentConfig, "%s: %d folders left open at the end of the records", root, len(stack))
	}
}

// sliceConfig returns the bytes a record points at, clamped to the file.
func (d *dispatcher) sliceConfig(data []byte, rec *types.ConfigRecord, p string) []byte {
	start := int(rec.FileOffset)
	end := start + int(rec.FileSize)
	if start > len(data) || end > len(data) {
		d.diags.Advisory(diagnostics.ComponentConfig, "%s: data [0x%X, 0x%X) exceeds the %d byte file, clamping", p, start, end, len(data))
		if start > len(data) {
			start = len(data)
		}
		end = len(data)
	}
	return data[start:end]
}

func recordType(access types.AccessMode) types.RecordType {
	if access.IsFolder() {
		return types.RecordTypeFolder
	}
	return types.RecordTypeFile
}

func configNode(rec *types.ConfigRecord, p, source string, folder bool, data []byte) *FileNode {
	return &FileNode{
		Path:          p,
		Source:        source,
		IsDirectory:   folder,
		LowLevelIndex: -1,
		FileID:        rec.FileID,
		Data:          data,
		Access:        rec.Access,
		OwnerUserID:   rec.OwnerUserID,
		OwnerGroupID:  rec.OwnerGroupID,
		DeployOptions: rec.DeployOptions,
	}
}
