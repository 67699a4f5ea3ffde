package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/spectrum.report/internal/fsutil"
	"github.com/banshee-data/spectrum.report/internal/security"
	"github.com/banshee-data/spectrum.report/internal/spectro"
)

// DefaultFilename returns the timestamped name used when the caller does
// not supply one.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("spectrum-%s.csv", now.Format("20060102-150405"))
}

// SaveCSV writes the samples as a CSV file named name inside dir,
// refusing names that would escape dir. It returns the path written.
func SaveCSV(fsys fsutil.FileSystem, dir, name string, samples []spectro.Sample) (string, error) {
	name = security.SanitizeFilename(name)
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}

	dest := filepath.Join(dir, name)
	if err := security.ValidatePathWithinDirectory(dest, dir); err != nil {
		return "", err
	}

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := fsys.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteCSV(f, samples); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize export file: %w", err)
	}
	return dest, nil
}
