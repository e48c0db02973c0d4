package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-mfs/pkg/app"
)

func TestRequest_Validate(t *testing.T) {
	csme := app.GenerationTarget{Variant: "CSME", Major: 12}

	tests := []struct {
		name    string
		request Request
		wantErr bool
	}{
		{"valid request", Request{ImagePath: "mfs.bin", Target: csme}, false},
		{"valid with exports", Request{ImagePath: "mfs.bin", Target: csme, OutputDir: "out", RecordDB: "mfs.db"}, false},
		{"missing image path", Request{Target: csme}, true},
		{"missing variant", Request{ImagePath: "mfs.bin"}, true},
		{"unknown variant", Request{ImagePath: "mfs.bin", Target: app.GenerationTarget{Variant: "AMT", Major: 11}}, true},
		{"unsupported version", Request{ImagePath: "mfs.bin", Target: app.GenerationTarget{Variant: "TXE", Major: 2}}, true},
		{"negative version", Request{ImagePath: "mfs.bin", Target: app.GenerationTarget{Variant: "CSME", Major: -1}}, true},
		{"output over image", Request{ImagePath: "./mfs.bin", Target: csme, OutputDir: "mfs.bin"}, true},
		{"record db over image", Request{ImagePath: "mfs.bin", Target: csme, RecordDB: "mfs.bin"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, app.ErrCodeInvalidInput, app.ErrorCode(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, format := range []string{"table", "json", "yaml"} {
		assert.NoError(t, ValidateFormat(format), format)
	}
	assert.Error(t, ValidateFormat("xml"))
}
