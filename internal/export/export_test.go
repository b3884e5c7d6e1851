package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/kairu/internal/store"
)

func sampleSessions() []store.FocusSession {
	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)
	return []store.FocusSession{
		{
			ID:                    "a1",
			StartTime:             start.UnixMilli(),
			EndTime:               start.Add(time.Hour).UnixMilli(),
			ActualDurationSeconds: 3600,
			TargetDurationSeconds: 3600,
			Tags:                  []string{"Maths", "Deep Work"},
			Status:                store.StatusCompleted,
			Date:                  "2026-10-15",
		},
		{
			ID:                    "b2",
			StartTime:             start.Add(-24 * time.Hour).UnixMilli(),
			EndTime:               start.Add(-24*time.Hour + 10*time.Minute).UnixMilli(),
			ActualDurationSeconds: 600,
			TargetDurationSeconds: 1500,
			Status:                store.StatusPartial,
			Date:                  "2026-10-14",
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sampleSessions(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(records))
	}

	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "a1" {
		t.Fatalf("ID = %q, want a1", row[0])
	}
	if row[1] != "2026-10-15" {
		t.Fatalf("Date = %q", row[1])
	}
	if row[5] != "3600" {
		t.Fatalf("Actual (s) = %q, want 3600", row[5])
	}
	if row[6] != "01:00:00" {
		t.Fatalf("Duration = %q, want 01:00:00", row[6])
	}
	if row[7] != "completed" {
		t.Fatalf("Status = %q", row[7])
	}
	if row[8] != "Maths;Deep Work" {
		t.Fatalf("Tags = %q", row[8])
	}

	partial := records[2]
	if partial[7] != "partial" || partial[8] != "" {
		t.Fatalf("unexpected partial row: %v", partial)
	}
}

func TestToCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	sessions := sampleSessions()[:1]
	sessions[0].Tags = []string{`say "hi"`, "a,b"}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sessions); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][8] != `say "hi";a,b` {
		t.Fatalf("tags mangled: %q", records[1][8])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleSessions(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 2 {
		t.Fatalf("count = %d, want 2", result.Count)
	}
	if result.TotalSec != 4200 {
		t.Fatalf("totalSeconds = %d, want 4200", result.TotalSec)
	}

	s := result.Sessions[0]
	if s.ID != "a1" {
		t.Fatalf("ID = %q, want a1", s.ID)
	}
	if s.Duration != "01:00:00" {
		t.Fatalf("Duration = %q, want 01:00:00", s.Duration)
	}
	if len(s.Tags) != 2 {
		t.Fatalf("Tags = %v", s.Tags)
	}
	if result.Sessions[1].Tags == nil {
		t.Fatal("untagged session should export an empty tag list")
	}
	if !strings.Contains(string(data), `"actualDurationSeconds": 3600`) {
		t.Fatal("expected stored document field names in export")
	}
}

func TestToJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"sessions": []`) {
		t.Fatalf("expected empty sessions array, got %s", buf.String())
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	var buf bytes.Buffer
	WriteJSON(&buf, sampleSessions(), time.Now())

	var result jsonExport
	json.Unmarshal(buf.Bytes(), &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exportedAt is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, s := range result.Sessions {
		if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
			t.Fatalf("start is not valid RFC3339: %q", s.Start)
		}
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
