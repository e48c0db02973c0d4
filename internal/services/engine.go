package services

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/filetable"
	"github.com/deploymenttheory/go-mfs/internal/interfaces"
	"github.com/deploymenttheory/go-mfs/internal/parsers/backup"
	"github.com/deploymenttheory/go-mfs/internal/parsers/chunks"
	"github.com/deploymenttheory/go-mfs/internal/parsers/pages"
	"github.com/deploymenttheory/go-mfs/internal/parsers/volumes"
	"github.com/deploymenttheory/go-mfs/internal/types"
)

// Structural errors stop the analysis of a partition
var (
	ErrInvalidVolumeSignature = volumes.ErrInvalidVolumeSignature
	ErrEmptySystemArea        = volumes.ErrEmptySystemArea
)

// Engine reconstructs MFS partitions and MFSB backups
type Engine struct {
	layout types.Layout
	lookup interfaces.FileTableLookup
}

// NewEngine creates an engine for one record layout. A nil lookup resolves
// nothing, so File-Table entries land under unknown/.
func NewEngine(layout types.Layout, lookup interfaces.FileTableLookup) *Engine {
	if lookup == nil {
		lookup = filetable.New()
	}
	return &Engine{layout: layout, lookup: lookup}
}

// Layout returns the record layout used by the engine
func (e *Engine) Layout() types.Layout {
	return e.layout
}

// Analyze reconstructs an MFS partition. A structural failure returns the
// diagnostics collected so far, no files and an error wrapping
// ErrInvalidVolumeSignature or ErrEmptySystemArea.
func (e *Engine) Analyze(buf []byte) (*Result, error) {
	var diags diagnostics.Collector
	result := &Result{Input: InputPartition}

	classification, pageDiags := pages.Classify(buf)
	diags.Merge(pageDiags)
	result.Geometry = classification.Geometry
	result.Pages = summarizePages(classification)

	store, chunkDiags := chunks.Build(classification)
	diags.Merge(chunkDiags)

	system := store.SystemBuffer()
	volume, err := volumes.NewVolumeHeaderReader(system)
	if err != nil {
		diags.Fatal(diagnostics.ComponentVolume, "%v", err)
		result.Diagnostics = diags.Items()
		return result, fmt.Errorf("failed to read volume header: %w", err)
	}
	result.Volume = volume.Header()
	diags.Merge(volume.Validate(classification.Geometry))

	glog.V(1).Infof("volume: %d file records, size 0x%X, file table %d/%d",
		volume.FileRecordCount(), volume.Header().VolumeSize, volume.Header().FTBLPlatform, volume.Header().FTBLDictionary)

	fat, fatDiags := volumes.ReadFAT(system, volume.Header(), classification.Geometry)
	diags.Merge(fatDiags)

	files, chainDiags := volumes.NewResolver(fat, store, classification.Geometry.DataChunks).ResolveAll()
	diags.Merge(chainDiags)
	result.LowLevelFiles = files

	d := newDispatcher(e.layout, e.lookup, volume.Header())
	d.dispatch(files)
	diags.Merge(d.diags)

	e.finish(result, d, diags)
	return result, nil
}

// AnalyzeBackup reconstructs MFS content from an MFSB container. Revision 0
// rebuilds a partition and runs the full pipeline; revision 1 entries are
// dispatched directly as Low Level Files 6, 7 and 9.
func (e *Engine) AnalyzeBackup(buf []byte) (*Result, error) {
	mfsb, backupDiags, err := backup.Read(buf)
	if err != nil {
		return &Result{Diagnostics: backupDiags.Items()}, fmt.Errorf("failed to read MFSB container: %w", err)
	}

	if mfsb.Revision == types.BackupRevision0 {
		result, err := e.Analyze(mfsb.Partition)
		result.Input = InputBackupR0
		merged := backupDiags
		merged.Merge(collectorOf(result.Diagnostics))
		result.Diagnostics = merged.Items()
		return result, err
	}

	result := &Result{Input: InputBackupR1}
	var diags diagnostics.Collector
	diags.Merge(backupDiags)

	files := make([]*types.LowLevelFile, 0, len(mfsb.Entries))
	for _, entry := range mfsb.Entries {
		file := &types.LowLevelFile{Index: entry.Index, State: types.FileStatePresent, Data: entry.Data}
		if len(entry.Data) == 0 {
			file.State = types.FileStateEmpty
		}
		files = append(files, file)
	}
	result.LowLevelFiles = files

	d := newDispatcher(e.layout, e.lookup, nil)
	d.dispatch(files)
	diags.Merge(d.diags)

	e.finish(result, d, diags)
	return result, nil
}

func (e *Engine) finish(result *Result, d *dispatcher, diags diagnostics.Collector) {
	result.Files = d.sortedFiles()
	result.Records = d.records
	result.ConfigState = configState(result.LowLevelFiles, d.fileTable)
	result.Diagnostics = diags.Items()

	glog.V(1).Infof("reconstructed %d files from %d records, %d diagnostics",
		len(result.Files), len(result.Records), len(result.Diagnostics))
}

func collectorOf(items []diagnostics.Diagnostic) diagnostics.Collector {
	var c diagnostics.Collector
	for _, d := range items {
		c.Add(d.Severity, d.Component, "%s", d.Message)
	}
	return c
}

func summarizePages(classification *pages.Classification) []PageSummary {
	all := append(classification.Ordered(), classification.Scratch...)
	out := make([]PageSummary, 0, len(all))
	for _, p := range all {
		out = append(out, PageSummary{
			Position:   p.Position,
			Kind:       p.Kind,
			Number:     p.Header.PageNumber,
			FirstChunk: p.Header.FirstChunkIndex,
			EraseCount: p.Header.EraseCount,
			CRCValid:   p.CRCValid,
		})
	}
	return out
}

func configState(files []*types.LowLevelFile, fileTable bool) ConfigState {
	state := ConfigState{FileTableMode: fileTable}
	for _, f := range files {
		if !f.Populated() {
			continue
		}
		state.PopulatedFiles = append(state.PopulatedFiles, f.Index)
		switch f.Index {
		case types.FileIndexIntelConfig:
			state.IntelConfig = true
		case types.FileIndexOEMConfig:
			state.OEMConfig = true
		case types.FileIndexHome:
			state.HomeDirectory = true
		}
	}
	return state
}
