package analyze

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
)

func sampleResponse() *Response {
	return &Response{
		ImageID:    "6f1c2a9e-0000-5000-8000-000000000000",
		ImagePath:  "mfs.bin",
		Input:      "partition",
		Generation: "CSME 11.0",
		Layout:     LayoutInfo{Home: "0x18", Integrity: "0x28", Config: "0x1C"},
		Volume:     &VolumeInfo{Signature: "0x724F6201", Size: 0x5B00, FileRecordCount: 16, SystemChunks: 120, DataChunks: 244},
		Pages:      PageStats{Total: 4, System: 1, Data: 2, Scratch: 1},
		Files: []FileResult{
			{Path: "home", Type: "directory", Source: "home", LowLevelIndex: 8, Mode: "d---rwxr-x---"},
			{Path: "home/policy", Type: "file", Source: "home", Size: 12, LowLevelIndex: 10, Mode: "----rw-r-----", Integrity: true, SVN: 3},
		},
		Records: []RecordResult{
			{Sequence: 0, Source: "home", Folder: "home", Name: ".", Type: "folder", FileID: 8},
		},
		Diagnostics: []diagnostics.Diagnostic{
			{Severity: diagnostics.SeverityAdvisory, Component: diagnostics.ComponentPages, Message: "page 1 header CRC-8 mismatch"},
		},
	}
}

func TestFormatOutput(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		view     string
		wantErr  bool
		validate func(*testing.T, string)
	}{
		{
			name:   "table summary",
			format: "table",
			view:   ViewSummary,
			validate: func(t *testing.T, output string) {
				assert.Contains(t, output, "MFS image 6f1c2a9e")
				assert.Contains(t, output, "Generation:  CSME 11.0 (home 0x18, integrity 0x28, config 0x1C)")
				assert.Contains(t, output, "home/policy")
				assert.Contains(t, output, "ADVISORY")
				assert.Contains(t, output, "2 files, 1 advisory")
			},
		},
		{
			name:   "table records",
			format: "table",
			view:   ViewRecords,
			validate: func(t *testing.T, output string) {
				assert.Contains(t, output, "SEQ")
				assert.Contains(t, output, "1 records")
				assert.NotContains(t, output, "Generation:")
			},
		},
		{
			name:   "json format",
			format: "json",
			validate: func(t *testing.T, output string) {
				var decoded map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(output), &decoded))
				assert.Equal(t, "CSME 11.0", decoded["generation"])
				diags := decoded["diagnostics"].([]interface{})
				assert.Equal(t, "ADVISORY", diags[0].(map[string]interface{})["severity"])
			},
		},
		{
			name:   "yaml format",
			format: "yaml",
			validate: func(t *testing.T, output string) {
				var decoded map[string]interface{}
				require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
				assert.Equal(t, "partition", decoded["input"])
				assert.Len(t, decoded["files"], 2)
			},
		},
		{
			name:    "unsupported format",
			format:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := &Formatter{Out: &buf, NoColor: true}
			err := f.FormatOutput(sampleResponse(), tt.format, tt.view)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, buf.String())
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "12 B", FormatSize(12))
	assert.Equal(t, "22.8 KB", FormatSize(0x5B00))
	assert.Equal(t, "1.0 MB", FormatSize(1<<20))
}
