package report

import (
	"fmt"
	"regexp"
	"time"
)

// Report files are named logins-<arrayID>-<timestamp>.txt, one collection
// run per array per second.
const filenameTimeLayout = "20060102-150405"

var filenamePattern = regexp.MustCompile(`^logins-(\d+)-(\d{8}-\d{6})\.txt$`)

// ReportFilename builds the report file name for an array collected at t.
func ReportFilename(arrayID string, t time.Time) string {
	return fmt.Sprintf("logins-%s-%s.txt", arrayID, t.Format(filenameTimeLayout))
}

// ParseReportFilename extracts the array identifier and the collection
// time from a file name produced by ReportFilename.
func ParseReportFilename(name string) (string, time.Time, error) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", time.Time{}, fmt.Errorf("not a login report file name: %s", name)
	}

	collectedAt, err := time.ParseInLocation(filenameTimeLayout, m[2], time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("bad timestamp in file name %s: %w", name, err)
	}
	return m[1], collectedAt, nil
}
