package orchestrator

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfbw/internal/transcoder"
)

// CleanupTemps removes staging directories and downloaded inputs under dir
// (os.TempDir when empty) older than maxAge. These are only left behind when
// a process is killed mid-conversion. Returns the number of entries removed.
func CleanupTemps(dir string, maxAge time.Duration) int {
	if dir == "" {
		dir = os.TempDir()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("temp cleanup skipped")
		return 0
	}
	now := time.Now()
	removed := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), transcoder.StagingPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Str("dir", dir).Msg("removed stale temp files")
	}
	return removed
}
