package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/onrus/powermax-logins/internal/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logins.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter() error = %v", err)
	}

	records := []domain.LoginRecord{
		{
			Array:        "000197901042",
			DirectorPort: "1D-4",
			DirectorWWPN: "50000973b0104804",
			NodeWWN:      "200000051efd0ba0",
			PortWWN:      "100000051efd0ba0",
			FCID:         "798d40",
			LoggedIn:     "No",
			OnFabric:     "Yes",
			LogTime:      "11:34:07 PM on Wed May 25,2022",
			SourceFile:   "logins-000197901042-20220525-233407.txt",
		},
		{
			Array:         "000197901042",
			NodeWWN:       "2000000000000002",
			InitiatorName: "esx01/vmhba2",
			LoggedIn:      "Yes",
			OnFabric:      "Yes",
			LogTime:       "09:00:00 AM on Mon Jan 10,2022",
			SourceFile:    "logins-000197901042-20220525-233407.txt",
		},
	}
	if err := w.Write(context.Background(), records); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 records", len(rows))
	}

	wantHeader := "array,directorPort,directorWwpn,nodeWwn,portWwn,initiatorName,fcid,loggedIn,onFabric,logTime,sourceFile"
	for i, col := range rows[0] {
		if i >= len(csvColumns) || col != csvColumns[i] {
			t.Fatalf("header = %v, want %s", rows[0], wantHeader)
		}
	}

	if rows[1][1] != "1D-4" || rows[1][9] != "11:34:07 PM on Wed May 25,2022" {
		t.Errorf("row 1 = %v", rows[1])
	}
	// Absent fields serialize as empty cells.
	if rows[1][5] != "" {
		t.Errorf("row 1 initiatorName = %q, want empty cell", rows[1][5])
	}
	if rows[2][1] != "" || rows[2][2] != "" {
		t.Errorf("row 2 director cells = %q/%q, want empty", rows[2][1], rows[2][2])
	}
	if rows[2][5] != "esx01/vmhba2" {
		t.Errorf("row 2 initiatorName = %q", rows[2][5])
	}
}

func TestCSVWriter_ZeroRecordsHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logins.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter() error = %v", err)
	}
	if err := w.Write(context.Background(), nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 1 {
		t.Errorf("got %d rows, want header only", len(rows))
	}
}

func TestCSVWriter_OverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logins.csv")
	if err := os.WriteFile(path, []byte("stale content\n"), 0o644); err != nil {
		t.Fatalf("seeding existing file: %v", err)
	}

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter() error = %v", err)
	}
	if err := w.Write(context.Background(), []domain.LoginRecord{{NodeWWN: "2000000000000001"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1 record", len(rows))
	}
	if rows[0][0] != "array" {
		t.Errorf("stale content survived the overwrite: %v", rows[0])
	}
}

func TestCSVWriter_UncreatablePath(t *testing.T) {
	if _, err := NewCSVWriter(filepath.Join(t.TempDir(), "missing", "logins.csv")); err == nil {
		t.Fatal("NewCSVWriter() error = nil, want failure for missing directory")
	}
}
