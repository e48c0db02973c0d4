package export

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"github.com/deploymenttheory/go-mfs/internal/services"
)

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// TreeStats summarizes one tree export.
type TreeStats struct {
	Directories int
	Files       int
	Bytes       int64
}

// TreeWriter writes a reconstructed file tree below a root directory.
type TreeWriter struct {
	fs   afero.Fs
	root string
}

// NewTreeWriter creates a writer rooted at root on fs.
func NewTreeWriter(fs afero.Fs, root string) *TreeWriter {
	return &TreeWriter{fs: fs, root: root}
}

// Write stores every node of files. Parent directories are created as
// needed; a node whose path escapes the root is rejected.
func (w *TreeWriter) Write(files []*services.FileNode) (TreeStats, error) {
	var stats TreeStats

	if err := w.fs.MkdirAll(w.root, dirMode); err != nil {
		return stats, fmt.Errorf("failed to create output directory %s: %w", w.root, err)
	}

	for _, node := range files {
		target, err := w.target(node.Path)
		if err != nil {
			return stats, err
		}

		if node.IsDirectory {
			if err := w.fs.MkdirAll(target, dirMode); err != nil {
				return stats, fmt.Errorf("failed to create directory %s: %w", node.Path, err)
			}
			stats.Directories++
			continue
		}

		if err := w.fs.MkdirAll(filepath.Dir(target), dirMode); err != nil {
			return stats, fmt.Errorf("failed to create directory for %s: %w", node.Path, err)
		}
		if err := afero.WriteFile(w.fs, target, node.Data, fileMode); err != nil {
			return stats, fmt.Errorf("failed to write %s: %w", node.Path, err)
		}
		glog.V(2).Infof("wrote %s (%d bytes)", target, len(node.Data))
		stats.Files++
		stats.Bytes += int64(len(node.Data))
	}

	glog.V(1).Infof("exported %d files and %d directories to %s", stats.Files, stats.Directories, w.root)
	return stats, nil
}

func (w *TreeWriter) target(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" || strings.Contains(p, "\x00") {
		return "", fmt.Errorf("invalid output path %q", p)
	}
	return filepath.Join(w.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
