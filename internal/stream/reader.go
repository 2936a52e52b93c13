package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// Record is one decoded event-stream record. Data keeps the raw JSON of the
// envelope's data field so callers can decode it into the matching type.
type Record struct {
	Type domain.EventType `json:"type"`
	Data json.RawMessage  `json:"data"`
}

// RecordHandler is called for each record read from a stream.
type RecordHandler func(rec Record) error

// Read parses an event stream and calls handler for every record.
// Comment lines and fields other than data are ignored.
func Read(r io.Reader, handler RecordHandler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var data strings.Builder

	flush := func() error {
		if data.Len() == 0 {
			return nil
		}
		var rec Record
		if err := json.Unmarshal([]byte(data.String()), &rec); err != nil {
			return fmt.Errorf("failed to parse record: %w", err)
		}
		data.Reset()
		return handler(rec)
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line marks end of record
		if line == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}

		if strings.HasPrefix(line, "data:") {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// Handle a record not followed by a blank line
	return flush()
}

// ReadAll collects every record of a stream.
func ReadAll(r io.Reader) ([]Record, error) {
	var records []Record
	err := Read(r, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	return records, err
}

// Decode unmarshals the record data into v.
func (r Record) Decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", r.Type, err)
	}
	return nil
}
