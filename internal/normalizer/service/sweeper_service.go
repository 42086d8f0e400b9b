package service

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthanhphan/gosdk/logger"
)

// sweeperService removes workspaces left behind by a crashed process.
type sweeperService struct {
	core *NormalizeServiceImpl
	now  func() time.Time
}

// newSweeperService creates workspace sweeper use-case service.
func newSweeperService(core *NormalizeServiceImpl) *sweeperService {
	return &sweeperService{core: core, now: time.Now}
}

// start sweeps once, then on every tick until context cancellation.
func (s *sweeperService) start(ctx context.Context, interval time.Duration) {
	s.sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep deletes job workspaces older than the configured max age.
func (s *sweeperService) sweep() (int, int64) {
	root := s.core.cfg.Normalizer.WorkRoot()
	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnw("Workspace sweep skipped", "work_dir", root, "error", err.Error())
		}
		return 0, 0
	}

	cutoff := s.now().Add(-s.core.cfg.Sweeper.MaxAge())
	var removed int
	var reclaimed int64

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(root, entry.Name())
		size := dirSize(path)
		if err := os.RemoveAll(path); err != nil {
			logger.Warnw("Stale workspace removal failed", "workspace", path, "error", err.Error())
			continue
		}
		removed++
		reclaimed += size
	}

	if removed > 0 {
		logger.Infow("Workspace sweep finished", "removed_workspaces", removed, "bytes_reclaimed", reclaimed)
	}
	return removed, reclaimed
}

func dirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil && info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total
}
