package analyze

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/deploymenttheory/go-mfs/internal/export"
	"github.com/deploymenttheory/go-mfs/internal/filetable"
	"github.com/deploymenttheory/go-mfs/internal/services"
	"github.com/deploymenttheory/go-mfs/internal/types"
	"github.com/deploymenttheory/go-mfs/pkg/app"
)

// imageNamespace scopes image IDs so the same bytes always get the same ID.
var imageNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/deploymenttheory/go-mfs/image"))

// Handle processes an analysis request
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	// 1. Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}
	fs := req.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	gen, err := req.Target.Generation()
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid generation", err)
	}
	layout, err := gen.Layout()
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "unsupported generation", err)
	}

	// 2. Load inputs
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	ctx.Log(fmt.Sprintf("Reading image: %s", req.ImagePath))
	ctx.Progress("Reading image...", 5)

	buf, err := afero.ReadFile(fs, req.ImagePath)
	if err != nil {
		return nil, app.NewError(app.ErrCodeImageAccess, "failed to read image", err)
	}

	lookup := filetable.New()
	if req.FileTablePath != "" {
		lookup, err = filetable.Load(fs, req.FileTablePath)
		if err != nil {
			return nil, app.NewError(app.ErrCodeInvalidInput, "failed to load file table", err)
		}
		ctx.Log(fmt.Sprintf("Loaded file table dictionary: %s", req.FileTablePath))
	}

	// 3. Reconstruct
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	ctx.Progress("Reconstructing file system...", 25)
	engine := services.NewEngine(layout, lookup)

	var result *services.Result
	if isBackup(buf) {
		ctx.Log("Input is an MFSB backup container")
		result, err = engine.AnalyzeBackup(buf)
	} else {
		result, err = engine.Analyze(buf)
	}

	response := buildResponse(req, gen, layout, buf, result)
	if err != nil {
		response.Duration = time.Since(startTime)
		return response, app.NewError(app.ErrCodeStructural, "failed to reconstruct MFS", err)
	}

	// 4. Export
	if req.OutputDir != "" || req.RecordDB != "" {
		if err := cancelled(ctx); err != nil {
			response.Duration = time.Since(startTime)
			return response, err
		}
		ctx.Progress("Exporting...", 80)
		response.Export, err = exportResult(fs, req, result)
		if err != nil {
			response.Duration = time.Since(startTime)
			return response, app.NewError(app.ErrCodeExport, "failed to export results", err)
		}
	}

	response.Duration = time.Since(startTime)
	ctx.Progress("Complete", 100)
	ctx.Log(fmt.Sprintf("Analysis completed: %d files, %d diagnostics in %v",
		len(response.Files), len(response.Diagnostics), response.Duration))

	return response, nil
}

// cancelled stops between stages once the caller gave up.
func cancelled(ctx *app.Context) error {
	if err := ctx.Err(); err != nil {
		return app.NewError(app.ErrCodeCancelled, "analysis cancelled", err)
	}
	return nil
}

func isBackup(buf []byte) bool {
	return len(buf) >= len(types.BackupSignature) && bytes.Equal(buf[:len(types.BackupSignature)], types.BackupSignature[:])
}

// ImageID returns the deterministic identifier of an image
func ImageID(buf []byte) string {
	return uuid.NewSHA1(imageNamespace, buf).String()
}

func buildResponse(req *Request, gen types.Generation, layout types.Layout, buf []byte, result *services.Result) *Response {
	response := &Response{
		ImageID:    ImageID(buf),
		ImagePath:  req.ImagePath,
		Generation: gen.String(),
		Layout: LayoutInfo{
			Home:      layout.Home.String(),
			Integrity: layout.Integrity.String(),
			Config:    layout.Config.String(),
		},
		Files: []FileResult{},
	}
	if result == nil {
		return response
	}

	response.Input = result.Input
	response.Diagnostics = result.Diagnostics
	response.Config = result.ConfigState

	if v := result.Volume; v != nil {
		response.Volume = &VolumeInfo{
			Signature:       fmt.Sprintf("0x%08X", v.Signature),
			Size:            v.VolumeSize,
			FileRecordCount: v.FileRecordCount,
			FileTable:       v.UsesFileTable(),
			Platform:        v.FTBLPlatform,
			Dictionary:      v.FTBLDictionary,
			SystemChunks:    result.Geometry.SystemChunks,
			DataChunks:      result.Geometry.DataChunks,
		}
	}

	for _, p := range result.Pages {
		response.Pages.Total++
		switch p.Kind {
		case types.PageKindSystem:
			response.Pages.System++
		case types.PageKindData:
			response.Pages.Data++
		default:
			response.Pages.Scratch++
			continue
		}
		if !p.CRCValid {
			response.Pages.CRCFailures++
		}
	}

	for _, f := range result.Files {
		response.Files = append(response.Files, fileResult(f))
	}

	if req.IncludeRecords {
		for _, r := range result.Records {
			response.Records = append(response.Records, RecordResult{
				Sequence: r.Sequence,
				Source:   r.Source,
				Folder:   r.Folder,
				Name:     r.Name,
				Type:     r.Type.String(),
				FileID:   r.FileID,
				Mode:     r.Access.RightsString(),
				Owner:    r.OwnerUserID,
				Group:    r.OwnerGroupID,
			})
		}
	}

	return response
}

func fileResult(f *services.FileNode) FileResult {
	fr := FileResult{
		Path:          f.Path,
		Type:          "file",
		Source:        f.Source,
		Size:          f.Size(),
		LowLevelIndex: f.LowLevelIndex,
		FileID:        f.FileID,
		Mode:          f.Access.RightsString(),
		Owner:         f.OwnerUserID,
		Group:         f.OwnerGroupID,
	}
	if f.IsDirectory {
		fr.Type = "directory"
	}
	if f.Integrity != nil {
		fr.Integrity = true
		fr.SVN = f.Integrity.SVN
	}
	return fr
}

func exportResult(fs afero.Fs, req *Request, result *services.Result) (*ExportResult, error) {
	out := &ExportResult{}

	if req.OutputDir != "" {
		stats, err := export.NewTreeWriter(fs, req.OutputDir).Write(result.Files)
		if err != nil {
			return nil, err
		}
		out.OutputDir = req.OutputDir
		out.Files = stats.Files
		out.Directories = stats.Directories
		out.Bytes = stats.Bytes
	}

	if req.RecordDB != "" {
		counts, err := export.WriteRecordDB(req.RecordDB, result)
		if err != nil {
			return nil, err
		}
		out.RecordDB = req.RecordDB
		out.DBRecords = counts.Records
	}

	return out, nil
}
