package report

import (
	"errors"
	"testing"

	"github.com/onrus/powermax-logins/internal/domain"
)

const sampleBlock = `Symmetrix ID            : 000197901042
Director Identification : FA-1D
Director Port           : 004
WWN Port Name           : 50000973b0104804

Originator Node wwn : 200000051efd0ba0
Originator Port wwn : 100000051efd0ba0
User-generated Name : /
FCID                : 798d40
Logged In           : No
On Fabric           : Yes
Last Active Log-In  : 11:34:07 PM on Wed May 25,2022
`

func TestParse_SingleCompleteEntry(t *testing.T) {
	records, err := NewParser().Parse("logins-000197901042-20220525-233407.txt", sampleBlock)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Parse() returned %d records, want 1", len(records))
	}

	got := records[0]
	want := domain.LoginRecord{
		Array:         "000197901042",
		DirectorPort:  "1D-4",
		DirectorWWPN:  "50000973b0104804",
		NodeWWN:       "200000051efd0ba0",
		PortWWN:       "100000051efd0ba0",
		InitiatorName: "",
		FCID:          "798d40",
		LoggedIn:      "No",
		OnFabric:      "Yes",
		LogTime:       "11:34:07 PM on Wed May 25,2022",
		SourceFile:    "logins-000197901042-20220525-233407.txt",
	}
	if got != want {
		t.Errorf("Parse() record = %+v, want %+v", got, want)
	}
}

func TestParse_RecordRules(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		checks  func(t *testing.T, records []domain.LoginRecord)
	}{
		{
			name: "record without last active login is dropped",
			text: `Symmetrix ID : 000197901042

Originator Node wwn : 200000051efd0ba0
Originator Port wwn : 100000051efd0ba0
Logged In           : Yes
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if len(records) != 0 {
					t.Errorf("got %d records, want 0 (never finalized)", len(records))
				}
			},
		},
		{
			name: "new node wwn drops the unfinalized predecessor",
			text: `Originator Node wwn : 2000000000000001
Originator Port wwn : 1000000000000001

Originator Node wwn : 2000000000000002
Originator Port wwn : 1000000000000002
Last Active Log-In  : 09:00:00 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if len(records) != 1 {
					t.Fatalf("got %d records, want 1", len(records))
				}
				if records[0].NodeWWN != "2000000000000002" {
					t.Errorf("NodeWWN = %s, want 2000000000000002", records[0].NodeWWN)
				}
			},
		},
		{
			name: "initiator name kept when not the placeholder",
			text: `Originator Node wwn : 2000000000000001
User-generated Name : esx01/vmhba2
Last Active Log-In  : 09:00:00 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if len(records) != 1 {
					t.Fatalf("got %d records, want 1", len(records))
				}
				if records[0].InitiatorName != "esx01/vmhba2" {
					t.Errorf("InitiatorName = %q, want esx01/vmhba2", records[0].InitiatorName)
				}
			},
		},
		{
			name: "director port missing leaves directorPort empty",
			text: `Symmetrix ID            : 000197901042
Director Identification : FA-1D

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:00 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if records[0].DirectorPort != "" {
					t.Errorf("DirectorPort = %q, want empty", records[0].DirectorPort)
				}
			},
		},
		{
			name: "director identification missing leaves directorPort empty",
			text: `Director Port : 004

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:00 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if records[0].DirectorPort != "" {
					t.Errorf("DirectorPort = %q, want empty", records[0].DirectorPort)
				}
			},
		},
		{
			name: "port number loses leading zeros",
			text: `Director Identification : FA-2B
Director Port           : 010

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:00 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if records[0].DirectorPort != "2B-10" {
					t.Errorf("DirectorPort = %q, want 2B-10", records[0].DirectorPort)
				}
			},
		},
		{
			name: "status lines before any record are ignored",
			text: `FCID                : deadbe
Logged In           : Yes
On Fabric           : Yes

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:00 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if len(records) != 1 {
					t.Fatalf("got %d records, want 1", len(records))
				}
				if records[0].FCID != "" || records[0].LoggedIn != "" {
					t.Errorf("stray status lines leaked into record: %+v", records[0])
				}
			},
		},
		{
			name: "unrecognized and valueless labels are ignored",
			text: `Symmetrix ID :
Total Logins : 5
SYMMETRIX ID : 999999999999

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:00 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if records[0].Array != "" {
					t.Errorf("Array = %q, want empty (no valid Symmetrix ID line)", records[0].Array)
				}
			},
		},
		{
			name: "context persists across five blocks",
			text: `Symmetrix ID            : 000197901042
Director Identification : FA-1D
Director Port           : 004

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:01 AM on Mon Jan 10,2022

Originator Node wwn : 2000000000000002
Last Active Log-In  : 09:00:02 AM on Mon Jan 10,2022

Originator Node wwn : 2000000000000003
Last Active Log-In  : 09:00:03 AM on Mon Jan 10,2022

Originator Node wwn : 2000000000000004
Last Active Log-In  : 09:00:04 AM on Mon Jan 10,2022

Originator Node wwn : 2000000000000005
Last Active Log-In  : 09:00:05 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if len(records) != 5 {
					t.Fatalf("got %d records, want 5", len(records))
				}
				for i, r := range records {
					if r.Array != "000197901042" {
						t.Errorf("record %d Array = %q, want 000197901042", i, r.Array)
					}
					if r.DirectorPort != "1D-4" {
						t.Errorf("record %d DirectorPort = %q, want 1D-4", i, r.DirectorPort)
					}
				}
			},
		},
		{
			name: "director context change applies to later records only",
			text: `Director Identification : FA-1D
Director Port           : 004

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:01 AM on Mon Jan 10,2022

Director Identification : FA-2B
Director Port           : 012

Originator Node wwn : 2000000000000002
Last Active Log-In  : 09:00:02 AM on Mon Jan 10,2022
`,
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if len(records) != 2 {
					t.Fatalf("got %d records, want 2", len(records))
				}
				if records[0].DirectorPort != "1D-4" {
					t.Errorf("record 0 DirectorPort = %q, want 1D-4", records[0].DirectorPort)
				}
				if records[1].DirectorPort != "2B-12" {
					t.Errorf("record 1 DirectorPort = %q, want 2B-12", records[1].DirectorPort)
				}
			},
		},
		{
			name: "windows line endings",
			text: "Symmetrix ID : 000197901042\r\n\r\nOriginator Node wwn : 2000000000000001\r\nLast Active Log-In  : 09:00:00 AM on Mon Jan 10,2022\r\n",
			checks: func(t *testing.T, records []domain.LoginRecord) {
				if len(records) != 1 {
					t.Fatalf("got %d records, want 1", len(records))
				}
				if records[0].Array != "000197901042" {
					t.Errorf("Array = %q, want 000197901042", records[0].Array)
				}
				if records[0].LogTime != "09:00:00 AM on Mon Jan 10,2022" {
					t.Errorf("LogTime = %q", records[0].LogTime)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := NewParser().Parse("test.txt", tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.checks != nil {
				tt.checks(t, records)
			}
		})
	}
}

func TestParse_DirectorPortFormatError(t *testing.T) {
	text := `Director Identification : FA-1D
Director Port           : 004

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:01 AM on Mon Jan 10,2022

Director Port           : abc

Originator Node wwn : 2000000000000002
Last Active Log-In  : 09:00:02 AM on Mon Jan 10,2022
`

	p := NewParser()
	records, err := p.Parse("bad.txt", text)
	if err == nil {
		t.Fatal("Parse() error = nil, want ParseFormatError")
	}

	var pfe *domain.ParseFormatError
	if !errors.As(err, &pfe) {
		t.Fatalf("Parse() error = %v, want *domain.ParseFormatError", err)
	}
	if pfe.File != "bad.txt" || pfe.Label != "Director Port" || pfe.Value != "abc" {
		t.Errorf("ParseFormatError = %+v", pfe)
	}

	// Records finalized before the failing line survive; the rest of the
	// file is skipped.
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].NodeWWN != "2000000000000001" {
		t.Errorf("NodeWWN = %s, want 2000000000000001", records[0].NodeWWN)
	}

	// The same parser still handles subsequent files.
	more, err := p.Parse("next.txt", "Originator Node wwn : 2000000000000003\nLast Active Log-In : 10:00:00 AM on Tue Jan 11,2022\n")
	if err != nil {
		t.Fatalf("Parse() after format error = %v", err)
	}
	if len(more) != 1 {
		t.Fatalf("got %d records from next file, want 1", len(more))
	}
}

func TestParse_ContextCarriesAcrossFiles(t *testing.T) {
	p := NewParser()

	first := `Symmetrix ID            : 000197901042
Director Identification : FA-1D
Director Port           : 004
WWN Port Name           : 50000973b0104804

Originator Node wwn : 2000000000000001
Last Active Log-In  : 09:00:01 AM on Mon Jan 10,2022

Originator Node wwn : 2000000000000009
Originator Port wwn : 1000000000000009
`
	firstRecords, err := p.Parse("first.txt", first)
	if err != nil {
		t.Fatalf("Parse(first) error = %v", err)
	}
	if len(firstRecords) != 1 {
		t.Fatalf("first file: got %d records, want 1", len(firstRecords))
	}

	// The second file has no header lines of its own. Its record inherits
	// the director/array context left over from the first file; the
	// unfinalized record from the first file stays dropped even though this
	// file starts with a finalizing line.
	second := `Last Active Log-In  : 11:00:00 AM on Mon Jan 10,2022

Originator Node wwn : 2000000000000002
Last Active Log-In  : 11:30:00 AM on Mon Jan 10,2022
`
	secondRecords, err := p.Parse("second.txt", second)
	if err != nil {
		t.Fatalf("Parse(second) error = %v", err)
	}
	if len(secondRecords) != 1 {
		t.Fatalf("second file: got %d records, want 1", len(secondRecords))
	}

	got := secondRecords[0]
	if got.Array != "000197901042" {
		t.Errorf("Array = %q, want inherited 000197901042", got.Array)
	}
	if got.DirectorPort != "1D-4" {
		t.Errorf("DirectorPort = %q, want inherited 1D-4", got.DirectorPort)
	}
	if got.DirectorWWPN != "50000973b0104804" {
		t.Errorf("DirectorWWPN = %q, want inherited 50000973b0104804", got.DirectorWWPN)
	}
	if got.SourceFile != "second.txt" {
		t.Errorf("SourceFile = %q, want second.txt", got.SourceFile)
	}
	if got.NodeWWN != "2000000000000002" {
		t.Errorf("NodeWWN = %s, want 2000000000000002", got.NodeWWN)
	}
}

func TestDirectorPair(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"FA-1D", "1D"},
		{"FA-10D", "10"},
		{"SE-2B", "2B"},
		{"FA-1", "1"},
		{"FA-", ""},
		{"FA", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := directorPair(tt.id); got != tt.want {
				t.Errorf("directorPair(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestSplitBlocks(t *testing.T) {
	text := "a : 1\nb : 2\n\n\n  \nc : 3\r\n\r\nd : 4"
	blocks := splitBlocks(text)

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if len(blocks[0]) != 2 || blocks[0][0].text != "a : 1" || blocks[0][1].text != "b : 2" {
		t.Errorf("block 0 = %+v", blocks[0])
	}
	if blocks[0][1].no != 2 {
		t.Errorf("block 0 line 1 number = %d, want 2", blocks[0][1].no)
	}
	if len(blocks[1]) != 1 || blocks[1][0].text != "c : 3" {
		t.Errorf("block 1 = %+v", blocks[1])
	}
	if blocks[1][0].no != 6 {
		t.Errorf("block 1 line number = %d, want 6", blocks[1][0].no)
	}
	if len(blocks[2]) != 1 || blocks[2][0].text != "d : 4" {
		t.Errorf("block 2 = %+v", blocks[2])
	}
}
