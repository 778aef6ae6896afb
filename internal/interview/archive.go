package interview

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ArchiveEntry is the durable record of one completed interview.
type ArchiveEntry struct {
	SessionID        string    `json:"session_id" mapstructure:"session_id"`
	CandidateProfile string    `json:"candidate_profile" mapstructure:"candidate_profile"`
	FeedbackReports  []string  `json:"feedback_reports" mapstructure:"feedback_reports"`
	FinalReport      string    `json:"final_report" mapstructure:"final_report"`
	Questions        int       `json:"questions" mapstructure:"questions"`
	StartedAt        time.Time `json:"started_at" mapstructure:"started_at"`
	CompletedAt      time.Time `json:"completed_at" mapstructure:"completed_at"`
}

// Archive appends completed interviews to a JSON-lines file so reports
// survive session-store cleanup.
type Archive struct {
	path string

	mu sync.Mutex
}

// NewArchive creates an archive writing to the given path. An empty path
// disables archiving.
func NewArchive(path string) *Archive {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return &Archive{path: path}
}

// Append writes one entry as a single JSON line.
func (a *Archive) Append(entry ArchiveEntry) error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open archive file: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal archive entry: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write archive entry: %w", err)
	}

	return nil
}

// LoadArchiveEntries reads every entry from a JSON-lines archive file.
// Lines are decoded loosely and mapped onto the typed entry, so files written
// by older builds with extra fields still load.
func LoadArchiveEntries(path string) ([]ArchiveEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	defer file.Close()

	var entries []ArchiveEntry

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw map[string]any
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("parse archive line: %w", err)
		}

		var entry ArchiveEntry
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			Result:     &entry,
		})
		if err != nil {
			return nil, fmt.Errorf("build archive decoder: %w", err)
		}
		if err := decoder.Decode(raw); err != nil {
			return nil, fmt.Errorf("decode archive entry: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read archive file: %w", err)
	}

	return entries, nil
}
