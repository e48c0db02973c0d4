package analyze

import (
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
	"github.com/deploymenttheory/go-mfs/internal/services"
	"github.com/deploymenttheory/go-mfs/pkg/app"
)

// Request represents an MFS analysis request
type Request struct {
	ImagePath string
	Target    app.GenerationTarget

	// FileTablePath is an optional File-Table dictionary (YAML).
	FileTablePath string

	// Export destinations. Empty values skip the export. RecordDB is
	// always a path on the OS filesystem.
	OutputDir string
	RecordDB  string

	// IncludeRecords keeps the visited record log in the response.
	IncludeRecords bool

	// Fs is used for the image, the dictionary and the tree export.
	// Defaults to the OS filesystem.
	Fs afero.Fs
}

// Response represents analysis results
type Response struct {
	ImageID     string                   `json:"image_id" yaml:"image_id"`
	ImagePath   string                   `json:"image_path" yaml:"image_path"`
	Input       string                   `json:"input" yaml:"input"`
	Generation  string                   `json:"generation" yaml:"generation"`
	Layout      LayoutInfo               `json:"layout" yaml:"layout"`
	Volume      *VolumeInfo              `json:"volume,omitempty" yaml:"volume,omitempty"`
	Pages       PageStats                `json:"pages" yaml:"pages"`
	Files       []FileResult             `json:"files" yaml:"files"`
	Records     []RecordResult           `json:"records,omitempty" yaml:"records,omitempty"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Config      services.ConfigState     `json:"config_state" yaml:"config_state"`
	Export      *ExportResult            `json:"export,omitempty" yaml:"export,omitempty"`
	Duration    time.Duration            `json:"duration" yaml:"duration"`
}

// LayoutInfo describes the record layouts used for decoding
type LayoutInfo struct {
	Home      string `json:"home" yaml:"home"`
	Integrity string `json:"integrity" yaml:"integrity"`
	Config    string `json:"config" yaml:"config"`
}

// VolumeInfo represents the decoded Volume Header
type VolumeInfo struct {
	Signature       string `json:"signature" yaml:"signature"`
	Size            uint32 `json:"size" yaml:"size"`
	FileRecordCount uint16 `json:"file_record_count" yaml:"file_record_count"`
	FileTable       bool   `json:"file_table" yaml:"file_table"`
	Platform        uint8  `json:"platform" yaml:"platform"`
	Dictionary      uint8  `json:"dictionary" yaml:"dictionary"`
	SystemChunks    int    `json:"system_chunks" yaml:"system_chunks"`
	DataChunks      int    `json:"data_chunks" yaml:"data_chunks"`
}

// PageStats counts classified pages
type PageStats struct {
	Total       int `json:"total" yaml:"total"`
	System      int `json:"system" yaml:"system"`
	Data        int `json:"data" yaml:"data"`
	Scratch     int `json:"scratch" yaml:"scratch"`
	CRCFailures int `json:"crc_failures" yaml:"crc_failures"`
}

// FileResult represents one reconstructed file
type FileResult struct {
	Path          string `json:"path" yaml:"path"`
	Type          string `json:"type" yaml:"type"`
	Source        string `json:"source" yaml:"source"`
	Size          int    `json:"size" yaml:"size"`
	LowLevelIndex int    `json:"low_level_index" yaml:"low_level_index"`
	FileID        uint32 `json:"file_id,omitempty" yaml:"file_id,omitempty"`
	Mode          string `json:"mode" yaml:"mode"`
	Owner         uint16 `json:"owner" yaml:"owner"`
	Group         uint16 `json:"group" yaml:"group"`
	Integrity     bool   `json:"integrity" yaml:"integrity"`
	SVN           uint8  `json:"svn,omitempty" yaml:"svn,omitempty"`
}

// RecordResult represents one visited structural record
type RecordResult struct {
	Sequence int    `json:"sequence" yaml:"sequence"`
	Source   string `json:"source" yaml:"source"`
	Folder   string `json:"folder" yaml:"folder"`
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	FileID   uint32 `json:"file_id" yaml:"file_id"`
	Mode     string `json:"mode" yaml:"mode"`
	Owner    uint16 `json:"owner" yaml:"owner"`
	Group    uint16 `json:"group" yaml:"group"`
}

// ExportResult summarizes what was written
type ExportResult struct {
	OutputDir   string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Files       int    `json:"files" yaml:"files"`
	Directories int    `json:"directories" yaml:"directories"`
	Bytes       int64  `json:"bytes" yaml:"bytes"`
	RecordDB    string `json:"record_db,omitempty" yaml:"record_db,omitempty"`
	DBRecords   int    `json:"db_records,omitempty" yaml:"db_records,omitempty"`
}

// Count returns the number of diagnostics of one severity
func (r *Response) Count(severity diagnostics.Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// FormatSize returns a human-readable size string
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
