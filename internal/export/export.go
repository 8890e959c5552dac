// Package export serializes raw usage records for external tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"git.home.luguber.info/inful/appusage/internal/store"
)

// Format selects the export serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat maps user input to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or csv)", s)
	}
}

// record is the JSON shape of one exported row.
type record struct {
	App        string `json:"app"`
	Start      string `json:"start"`
	End        string `json:"end"`
	DurationMS int64  `json:"duration_ms"`
	SessionID  string `json:"session_id,omitempty"`
}

// Write serializes records to w in the requested format.
func Write(w io.Writer, format Format, records []store.Record) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatCSV:
		return writeCSV(w, records)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeJSON(w io.Writer, records []store.Record) error {
	out := make([]record, 0, len(records))
	for _, rec := range records {
		out = append(out, record{
			App:        rec.App,
			Start:      rec.Start.UTC().Format(time.RFC3339Nano),
			End:        rec.End.UTC().Format(time.RFC3339Nano),
			DurationMS: rec.Duration.Milliseconds(),
			SessionID:  rec.SessionID,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, records []store.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"app", "start", "end", "duration_ms", "session_id"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.App,
			rec.Start.UTC().Format(time.RFC3339Nano),
			rec.End.UTC().Format(time.RFC3339Nano),
			strconv.FormatInt(rec.Duration.Milliseconds(), 10),
			rec.SessionID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
