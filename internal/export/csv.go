package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sadopc/kairu/internal/store"
)

var csvHeader = []string{"ID", "Date", "Start", "End", "Target (s)", "Actual (s)", "Duration", "Status", "Tags"}

// ToCSV writes sessions to path, or to stdout when path is "-".
func ToCSV(sessions []store.FocusSession, path string) error {
	return toFile(path, "csv", func(w io.Writer) error { return WriteCSV(w, sessions) })
}

func WriteCSV(out io.Writer, sessions []store.FocusSession) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			s.ID,
			s.Date,
			formatMillis(s.StartTime),
			formatMillis(s.EndTime),
			fmt.Sprintf("%d", s.TargetDurationSeconds),
			fmt.Sprintf("%d", s.ActualDurationSeconds),
			formatDuration(s.ActualDurationSeconds),
			string(s.Status),
			strings.Join(s.Tags, ";"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func toFile(path, kind string, write func(io.Writer) error) error {
	if path == "-" || path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s file: %w", kind, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s file: %w", kind, err)
	}
	return f.Close()
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format(time.RFC3339)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
