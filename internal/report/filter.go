package report

import (
	"fmt"
	"regexp"

	"github.com/onrus/powermax-logins/internal/domain"
)

// FilterByPortWWN returns the records whose PortWWN matches the regular
// expression pattern, preserving order. An empty pattern keeps every
// record. Operationally the pattern is an OUI prefix such as
// "^100000051e" to isolate one HBA vendor.
func FilterByPortWWN(records []domain.LoginRecord, pattern string) ([]domain.LoginRecord, error) {
	if pattern == "" {
		return records, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid portWwn filter %q: %w", pattern, err)
	}

	var filtered []domain.LoginRecord
	for _, record := range records {
		if re.MatchString(record.PortWWN) {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}
