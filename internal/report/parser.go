package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/onrus/powermax-logins/internal/domain"
)

// Label identifiers for the recognized report lines, in dispatch priority
// order. Lines are matched against the patterns first to last and only the
// first match is applied.
const (
	labelArrayID = iota
	labelDirectorID
	labelDirectorPort
	labelDirectorWWPN
	labelNodeWWN
	labelPortWWN
	labelInitiatorName
	labelFCID
	labelLoggedIn
	labelOnFabric
	labelLastLogin
)

// Report lines have the shape "<Label> : <value>" with arbitrary whitespace
// around the colon. Values are a single non-whitespace run except for
// "Last Active Log-In", which is free text to end of line. A label line
// without a value matches nothing and is ignored.
var labelPatterns = []struct {
	label int
	re    *regexp.Regexp
}{
	{labelArrayID, regexp.MustCompile(`^Symmetrix ID\s*:\s*(\S+)`)},
	{labelDirectorID, regexp.MustCompile(`^Director Identification\s*:\s*(\S+)`)},
	{labelDirectorPort, regexp.MustCompile(`^Director Port\s*:\s*(\S+)`)},
	{labelDirectorWWPN, regexp.MustCompile(`^WWN Port Name\s*:\s*(\S+)`)},
	{labelNodeWWN, regexp.MustCompile(`^Originator Node wwn\s*:\s*(\S+)`)},
	{labelPortWWN, regexp.MustCompile(`^Originator Port wwn\s*:\s*(\S+)`)},
	{labelInitiatorName, regexp.MustCompile(`^User-generated Name\s*:\s*(\S+)`)},
	{labelFCID, regexp.MustCompile(`^FCID\s*:\s*(\S+)`)},
	{labelLoggedIn, regexp.MustCompile(`^Logged In\s*:\s*(\S+)`)},
	{labelOnFabric, regexp.MustCompile(`^On Fabric\s*:\s*(\S+)`)},
	{labelLastLogin, regexp.MustCompile(`^Last Active Log-In\s*:\s*(.+)$`)},
}

// initiatorPlaceholder is printed by the array when no user-generated name
// is set for a login.
const initiatorPlaceholder = "/"

// Parser reads login reports block by block, carrying director and array
// context forward between blocks. Context established in one file applies
// to subsequent files parsed by the same Parser; only the in-progress
// record is dropped at a file boundary.
type Parser struct {
	array        string
	directorPair string
	directorPort string // re-stringified without leading zeros
	directorWWPN string

	current *domain.LoginRecord
}

// NewParser returns a Parser with empty carried context.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts the login records of one report file. Records are
// returned in order of appearance. On a format error the records finalized
// before the failing line are returned together with a
// *domain.ParseFormatError and the remainder of the file is skipped.
func (p *Parser) Parse(sourceFile, text string) ([]domain.LoginRecord, error) {
	// A record never survives a file boundary; carried context does.
	p.current = nil

	var records []domain.LoginRecord
	for _, block := range splitBlocks(text) {
		for _, line := range block {
			record, err := p.applyLine(sourceFile, line)
			if err != nil {
				return records, err
			}
			if record != nil {
				records = append(records, *record)
			}
		}
	}
	return records, nil
}

// applyLine dispatches one trimmed, non-empty line against the label
// patterns and applies the side effect of the first match. It returns a
// record when the line finalizes one.
func (p *Parser) applyLine(sourceFile string, line reportLine) (*domain.LoginRecord, error) {
	for _, lp := range labelPatterns {
		m := lp.re.FindStringSubmatch(line.text)
		if m == nil {
			continue
		}
		value := m[1]

		switch lp.label {
		case labelArrayID:
			p.array = value
		case labelDirectorID:
			p.directorPair = directorPair(value)
		case labelDirectorPort:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, &domain.ParseFormatError{
					File:  sourceFile,
					Line:  line.no,
					Label: "Director Port",
					Value: value,
					Err:   err,
				}
			}
			p.directorPort = strconv.Itoa(n)
		case labelDirectorWWPN:
			p.directorWWPN = value
		case labelNodeWWN:
			// Begins a new record; an unfinalized one is dropped.
			p.current = &domain.LoginRecord{
				Array:        p.array,
				DirectorPort: p.directorPortName(),
				DirectorWWPN: p.directorWWPN,
				NodeWWN:      value,
				SourceFile:   sourceFile,
			}
		case labelPortWWN:
			if p.current != nil {
				p.current.PortWWN = value
			}
		case labelInitiatorName:
			if p.current != nil && value != initiatorPlaceholder {
				p.current.InitiatorName = value
			}
		case labelFCID:
			if p.current != nil {
				p.current.FCID = value
			}
		case labelLoggedIn:
			if p.current != nil {
				p.current.LoggedIn = value
			}
		case labelOnFabric:
			if p.current != nil {
				p.current.OnFabric = value
			}
		case labelLastLogin:
			if p.current != nil {
				p.current.LogTime = strings.TrimSpace(value)
				record := p.current
				p.current = nil
				return record, nil
			}
		}
		return nil, nil // first match wins
	}
	return nil, nil // unrecognized lines are ignored
}

// directorPortName combines the carried pair and port into the composite
// descriptor, or returns "" while either part is missing. Computed at
// record creation, never retroactively.
func (p *Parser) directorPortName() string {
	if p.directorPair == "" || p.directorPort == "" {
		return ""
	}
	return p.directorPair + "-" + p.directorPort
}

// directorPair extracts the two-character pair from a director
// identification value, e.g. "FA-1D" -> "1D". The pair sits at byte offset
// 3 of the "XX-Y.." identification format; shorter values yield what is
// there, values without an offset-3 byte yield no pair.
func directorPair(id string) string {
	if len(id) <= 3 {
		return ""
	}
	end := 5
	if len(id) < end {
		end = len(id)
	}
	return id[3:end]
}

// reportLine is a trimmed, non-empty line with its 1-based position in the
// source file.
type reportLine struct {
	no   int
	text string
}

// splitBlocks splits a report into blocks on runs of blank lines and each
// block into trimmed, non-empty lines. Blank here means empty after
// trimming, so "\r\n" endings and whitespace-only separators behave like
// plain blank lines.
func splitBlocks(text string) [][]reportLine {
	var blocks [][]reportLine
	var block []reportLine
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			if len(block) > 0 {
				blocks = append(blocks, block)
				block = nil
			}
			continue
		}
		block = append(block, reportLine{no: i + 1, text: line})
	}
	if len(block) > 0 {
		blocks = append(blocks, block)
	}
	return blocks
}
