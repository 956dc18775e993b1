package collector

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/onrus/powermax-logins/internal/domain"
)

// ReportSource supplies the array inventory and raw login report text.
// The SYMCLI implementation shells out to the vendor tools; tests plug
// in fakes so nothing downstream needs an installed SYMCLI.
type ReportSource interface {
	// ArrayIDs enumerates the identifiers of all locally visible arrays.
	ArrayIDs(ctx context.Context) ([]string, error)

	// LoginReport returns the raw "symaccess list logins -v" output for
	// one array.
	LoginReport(ctx context.Context, arrayID string) (string, error)
}

// SymCLISource implements ReportSource on top of the SYMCLI tools.
// symcfg is resolved from the directory symaccess lives in and is only
// invoked when discovery is actually needed.
type SymCLISource struct {
	symaccessPath string
	symcfgPath    string
	inventoryRe   *regexp.Regexp
}

// NewSymCLISource builds a source around a verified symaccess path.
// families are the array family tags recognized in the symcfg inventory.
func NewSymCLISource(symaccessPath string, families []string) *SymCLISource {
	return &SymCLISource{
		symaccessPath: symaccessPath,
		symcfgPath:    companionTool(symaccessPath, "symcfg"),
		inventoryRe:   inventoryPattern(families),
	}
}

// ArrayIDs runs "symcfg list" and extracts the array identifiers from
// its inventory output.
func (s *SymCLISource) ArrayIDs(ctx context.Context) ([]string, error) {
	out, err := runTool(ctx, s.symcfgPath, "list")
	if err != nil {
		return nil, &domain.ExternalToolError{Tool: "symcfg", Err: err}
	}

	ids := parseInventory(out, s.inventoryRe)
	log.Debug().Strs("arrays", ids).Msg("Discovered arrays")
	return ids, nil
}

// LoginReport runs "symaccess -sid <id> list logins -v" and returns its
// stdout as the report text.
func (s *SymCLISource) LoginReport(ctx context.Context, arrayID string) (string, error) {
	out, err := runTool(ctx, s.symaccessPath, "-sid", arrayID, "list", "logins", "-v")
	if err != nil {
		return "", &domain.ExternalToolError{Tool: "symaccess", Err: err}
	}
	return out, nil
}

// inventoryPattern matches an inventory line: a 12-digit array id
// followed later on the line by one of the family tags (the tag opens
// the model column, e.g. "PowerMax_2000" or "VMAX250F").
func inventoryPattern(families []string) *regexp.Regexp {
	quoted := make([]string, len(families))
	for i, family := range families {
		quoted[i] = regexp.QuoteMeta(family)
	}
	return regexp.MustCompile(`\b(\d{12})\b.*\b(?:` + strings.Join(quoted, "|") + `)`)
}

// parseInventory scans inventory output line-wise, collapsing duplicate
// ids and keeping first-seen order.
func parseInventory(text string, re *regexp.Regexp) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
	}
	return ids
}

// runTool executes one SYMCLI invocation, capturing stdout as the result
// and folding stderr into the error on failure.
func runTool(ctx context.Context, path string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().
		Str("tool", path).
		Strs("args", args).
		Msg("Running SYMCLI command")

	if err := cmd.Run(); err != nil {
		name := filepath.Base(path)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}
