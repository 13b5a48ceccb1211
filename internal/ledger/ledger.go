// Package ledger reads, compares and updates the versions.json ledger:
// the shared mapping of release-channel keys to version records. The
// ledger is an external resource; a reconciliation run holds it only as
// an immutable snapshot, and keys are never removed here.
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Error variables for ledger errors
var (
	// ErrMalformed is returned when the ledger JSON cannot be parsed
	ErrMalformed = errors.New("ledger content is not valid JSON")
	// ErrEmptyVersion is returned when a candidate version is empty
	ErrEmptyVersion = errors.New("candidate version is empty")
	// ErrNotObject is returned when an entry is not a JSON object but the
	// field mode requires one
	ErrNotObject = errors.New("ledger entry is not a JSON object")
)

// FieldMode selects how the version field is read from a ledger entry.
// Two conventions exist across the ledgers and both must be accepted.
type FieldMode int

const (
	// FieldFullVersion reads the "fullversion" field of an entry object.
	FieldFullVersion FieldMode = iota
	// FieldDirect treats the entry value itself as the version string.
	FieldDirect
)

// ParseFieldMode maps the config spelling to a FieldMode.
func ParseFieldMode(s string) (FieldMode, error) {
	switch s {
	case "", "fullversion":
		return FieldFullVersion, nil
	case "direct":
		return FieldDirect, nil
	}
	return 0, fmt.Errorf("unknown ledger field mode %q", s)
}

// Ledger is a parsed ledger snapshot. Entry values are kept as raw JSON
// so that a re-serialized ledger stays byte-comparable with what the
// other automation writes.
type Ledger struct {
	entries map[string]json.RawMessage
	mode    FieldMode
}

// Parse decodes ledger JSON. A decode failure wraps ErrMalformed so
// callers can distinguish "unreadable ledger" from "version absent".
func Parse(data []byte, mode FieldMode) (*Ledger, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if entries == nil {
		entries = make(map[string]json.RawMessage)
	}
	return &Ledger{entries: entries, mode: mode}, nil
}

// Load reads and parses a ledger file.
func Load(path string, mode FieldMode) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, mode)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Keys returns the channel keys in descending ledger order.
func (l *Ledger) Keys() []string {
	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

// entryVersion extracts the version field of one entry according to the
// field mode. ok is false when the entry does not carry a version in
// the expected shape; such entries are skipped by Contains rather than
// failing the whole comparison, matching how the ledgers mix shapes.
func (l *Ledger) entryVersion(raw json.RawMessage) (string, bool) {
	switch l.mode {
	case FieldDirect:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", false
		}
		return v, true
	default:
		var rec struct {
			FullVersion string `json:"fullversion"`
		}
		if err := json.Unmarshal(raw, &rec); err != nil || rec.FullVersion == "" {
			return "", false
		}
		return rec.FullVersion, true
	}
}

// Contains reports whether some entry's version field equals candidate
// byte-for-byte. No normalization or semantic comparison is applied:
// the ledger stores exact extracted tokens including the build hash, so
// two builds are the same only if their full tokens are identical.
func (l *Ledger) Contains(candidate string) bool {
	for _, raw := range l.entries {
		if v, ok := l.entryVersion(raw); ok && v == candidate {
			return true
		}
	}
	return false
}

// Version returns the version field of the entry at key.
func (l *Ledger) Version(key string) (string, bool) {
	raw, ok := l.entries[key]
	if !ok {
		return "", false
	}
	return l.entryVersion(raw)
}

// Set inserts or replaces the entry at key. Existing keys are never
// removed, only overwritten.
func (l *Ledger) Set(key string, entry json.RawMessage) error {
	if !json.Valid(entry) {
		return fmt.Errorf("%w: entry for %q", ErrMalformed, key)
	}
	l.entries[key] = compactRaw(entry)
	return nil
}

// SetWithBuildType inserts the entry at key with a leading buildType
// field spliced into the record. buildType values of "" or "false" mean
// the label was undetermined and the entry is stored unchanged.
func (l *Ledger) SetWithBuildType(key string, entry json.RawMessage, buildType string) error {
	if buildType == "" || buildType == "false" {
		return l.Set(key, entry)
	}

	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return fmt.Errorf("%w: entry for %q", ErrNotObject, key)
	}

	label, err := json.Marshal(buildType)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"buildType":`)
	buf.Write(label)
	inner := bytes.TrimSpace(trimmed[1 : len(trimmed)-1])
	if len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return l.Set(key, buf.Bytes())
}

// MarshalIndent renders the ledger as indented JSON with keys in
// descending numeric-aware order. encoding/json would re-sort map keys
// lexically, so the object is written manually.
func (l *Ledger) MarshalIndent() ([]byte, error) {
	keys := l.Keys()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteString(": ")

		var vb bytes.Buffer
		if err := json.Indent(&vb, l.entries[k], "  ", "  "); err != nil {
			return nil, fmt.Errorf("%w: entry for %q", ErrMalformed, k)
		}
		buf.Write(vb.Bytes())
	}
	if len(keys) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Save writes the sorted ledger to path atomically.
func (l *Ledger) Save(path string) error {
	data, err := l.MarshalIndent()
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename ledger file: %w", err)
	}
	return nil
}

// compactRaw strips insignificant whitespace so stored entries re-indent
// consistently regardless of how the caller formatted them.
func compactRaw(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return json.RawMessage(buf.Bytes())
}
