package analyze

import (
	"path/filepath"

	"github.com/deploymenttheory/go-mfs/pkg/app"
)

// Validate validates an analysis request
func (r *Request) Validate() error {
	if r.ImagePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "image path is required", nil)
	}

	if err := r.Target.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid firmware generation", err)
	}

	if r.OutputDir != "" && filepath.Clean(r.OutputDir) == filepath.Clean(r.ImagePath) {
		return app.NewError(app.ErrCodeInvalidInput, "output directory cannot be the image file", nil)
	}
	if r.RecordDB != "" && filepath.Clean(r.RecordDB) == filepath.Clean(r.ImagePath) {
		return app.NewError(app.ErrCodeInvalidInput, "record database cannot be the image file", nil)
	}

	return nil
}

// ValidateFormat checks an output format name
func ValidateFormat(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	default:
		return app.NewError(app.ErrCodeInvalidInput, "unsupported output format: "+format, nil)
	}
}
