package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/kairu/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exportedAt"`
	Count      int           `json:"count"`
	TotalSec   int64         `json:"totalSeconds"`
	Sessions   []jsonSession `json:"sessions"`
}

// jsonSession is the stored document plus readable timestamps.
type jsonSession struct {
	store.FocusSession
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
}

// ToJSON writes sessions to path, or to stdout when path is "-".
func ToJSON(sessions []store.FocusSession, path string) error {
	return toFile(path, "json", func(w io.Writer) error { return WriteJSON(w, sessions, time.Now()) })
}

func WriteJSON(w io.Writer, sessions []store.FocusSession, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   []jsonSession{},
	}

	for _, s := range sessions {
		if s.Tags == nil {
			s.Tags = []string{}
		}
		export.TotalSec += s.ActualDurationSeconds
		export.Sessions = append(export.Sessions, jsonSession{
			FocusSession: s,
			Start:        formatMillis(s.StartTime),
			End:          formatMillis(s.EndTime),
			Duration:     formatDuration(s.ActualDurationSeconds),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
