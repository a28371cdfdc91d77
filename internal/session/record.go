package session

import (
	"bytes"
	"encoding/json"
	"fmt"

	"eer/internal/source"
)

// record is the on-disk form of one location: [file, line, column].
// Files written by older releases stored line and column as strings and
// used "" for a missing column; both forms decode.
type record source.Location

func (r record) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.File, r.Line, r.Column})
}

func (r *record) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("record has %d fields, want 3", len(parts))
	}
	var file string
	if err := json.Unmarshal(parts[0], &file); err != nil {
		return fmt.Errorf("record file: %w", err)
	}
	line, err := scalarText(parts[1])
	if err != nil {
		return fmt.Errorf("record line: %w", err)
	}
	column, err := scalarText(parts[2])
	if err != nil {
		return fmt.Errorf("record column: %w", err)
	}
	loc, err := source.ParseLocation(file, line, column)
	if err != nil {
		return err
	}
	*r = record(loc)
	return nil
}

// scalarText accepts a JSON number or string and returns its text.
func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// packedRecord is the msgpack form; it encodes as a 3-element array.
type packedRecord struct {
	_msgpack struct{} `msgpack:",as_array"`

	File   string
	Line   uint32
	Column uint32
}
