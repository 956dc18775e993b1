package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/onrus/powermax-logins/internal/report"
)

// WriteReport stores one login report under dir using the standard
// report file name. The text lands in a uniquely named temp file first
// and is renamed into place, so an interrupted collection never leaves a
// truncated report where the parser would pick it up.
func WriteReport(dir, arrayID string, collectedAt time.Time, text string) (string, error) {
	path := filepath.Join(dir, report.ReportFilename(arrayID, collectedAt))

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}
	return path, nil
}
