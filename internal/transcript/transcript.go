// Package transcript appends finished chat exchanges to a CSV file.
package transcript

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/finai-dev/finai/internal/chat"
	"github.com/finai-dev/finai/internal/model"
)

// Entry is one row in the transcript.
type Entry struct {
	Timestamp time.Time
	Session   string
	Role      model.Role
	Content   string
	Outcome   string // empty for user rows
}

// Header is the CSV header of a transcript file.
const Header = "timestamp,session,role,content,outcome"

const (
	numFields    = 5
	colTimestamp = 0
	colSession   = 1
	colRole      = 2
	colContent   = 3
	colOutcome   = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSession] = e.Session
	row[colRole] = string(e.Role)
	row[colContent] = e.Content
	row[colOutcome] = e.Outcome
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		Session:   record[colSession],
		Role:      model.Role(record[colRole]),
		Content:   record[colContent],
		Outcome:   record[colOutcome],
	}, nil
}

// Entries converts a finished turn to its user and assistant rows.
func Entries(turn chat.Turn) []Entry {
	return []Entry{
		{Timestamp: turn.At, Session: turn.SessionID, Role: model.RoleUser, Content: turn.Question},
		{Timestamp: turn.At, Session: turn.SessionID, Role: model.RoleAssistant, Content: turn.Answer, Outcome: turn.Phase.String()},
	}
}

// Append writes entries to path, creating the file and header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating transcript dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries in path, or nil if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transcript CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// File is a chat.Recorder writing to one CSV file.
type File struct {
	mu   sync.Mutex
	path string
}

var _ chat.Recorder = (*File)(nil)

// NewFile returns a recorder appending to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path is the transcript location.
func (f *File) Path() string {
	return f.path
}

// Record appends the turn's two rows.
func (f *File) Record(turn chat.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Append(f.path, Entries(turn))
}
