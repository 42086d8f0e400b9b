package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
)

const workspacePrefix = "job-"

// workspace is the private directory tree of one normalization job.
//
//	<root>/job-<id>-<rand>/in     staged upload
//	<root>/job-<id>-<rand>/pass1  first converter output
//	<root>/job-<id>-<rand>/pass2  second converter output
type workspace struct {
	root string
}

func newWorkspace(base, jobID string) (*workspace, error) {
	if err := os.MkdirAll(base, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create work dir: %w", domain.ErrStagingFailed, err)
	}

	root, err := os.MkdirTemp(base, workspacePrefix+jobID+"-")
	if err != nil {
		return nil, fmt.Errorf("%w: create workspace: %w", domain.ErrStagingFailed, err)
	}

	ws := &workspace{root: root}
	for _, sub := range []string{ws.inputDir(), ws.passDir(1), ws.passDir(2)} {
		if err := os.Mkdir(sub, 0o750); err != nil {
			_ = os.RemoveAll(root)
			return nil, fmt.Errorf("%w: create %s: %w", domain.ErrStagingFailed, filepath.Base(sub), err)
		}
	}
	return ws, nil
}

func (w *workspace) inputDir() string { return filepath.Join(w.root, "in") }

func (w *workspace) passDir(pass int) string {
	return filepath.Join(w.root, fmt.Sprintf("pass%d", pass))
}

// stage copies r into a freshly created file with the given extension and
// returns its path and size. The name is chosen by os.CreateTemp, never by
// the client.
func (w *workspace) stage(r io.Reader, ext string) (string, int64, error) {
	f, err := os.CreateTemp(w.inputDir(), "upload-*."+ext)
	if err != nil {
		return "", 0, fmt.Errorf("%w: create input file: %w", domain.ErrStagingFailed, err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return "", 0, fmt.Errorf("%w: write input file: %w", domain.ErrStagingFailed, copyErr)
	}
	if closeErr != nil {
		return "", 0, fmt.Errorf("%w: close input file: %w", domain.ErrStagingFailed, closeErr)
	}
	return f.Name(), n, nil
}

func (w *workspace) remove() error {
	return os.RemoveAll(w.root)
}
