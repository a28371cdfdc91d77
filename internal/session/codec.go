package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/vmihailenco/msgpack/v5"

	"eer/internal/index"
	"eer/internal/source"
)

// Format selects the session file encoding.
type Format uint8

const (
	FormatAuto    Format = iota // by file extension, JSON otherwise
	FormatJSON                  // readable, compatible with older session files
	FormatMsgpack               // compact binary
)

// String returns the string representation of Format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return FormatAuto, fmt.Errorf("invalid session format: %q (expected: auto|json|msgpack)", s)
	}
}

// resolve picks a concrete format for path.
func (f Format) resolve(path string) Format {
	if f != FormatAuto {
		return f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

type codec interface {
	encode(ix index.Index) ([]byte, error)
	decode(data []byte) (index.Index, error)
}

func codecFor(f Format) codec {
	if f == FormatMsgpack {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

var prettyOptions = &pretty.Options{Width: 80, Indent: "    ", SortKeys: true}

type jsonCodec struct{}

func (jsonCodec) encode(ix index.Index) ([]byte, error) {
	doc := make(map[string]record, len(ix))
	for tag, loc := range ix {
		doc[tag] = record(loc)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(data, prettyOptions), nil
}

func (jsonCodec) decode(data []byte) (index.Index, error) {
	var doc map[string]record
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("session document is not an object")
	}
	ix := make(index.Index, len(doc))
	for tag, r := range doc {
		ix[tag] = source.Location(r)
	}
	return ix, nil
}

type msgpackCodec struct{}

func (msgpackCodec) encode(ix index.Index) ([]byte, error) {
	doc := make(map[string]packedRecord, len(ix))
	for tag, loc := range ix {
		doc[tag] = packedRecord{File: loc.File, Line: loc.Line, Column: loc.Column}
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) decode(data []byte) (index.Index, error) {
	var doc map[string]packedRecord
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("session document is not a map")
	}
	ix := make(index.Index, len(doc))
	for tag, r := range doc {
		if r.File == "" || r.Line == 0 {
			return nil, fmt.Errorf("tag %q: %w", tag, source.ErrBadLocation)
		}
		ix[tag] = source.Location{File: r.File, Line: r.Line, Column: r.Column}
	}
	return ix, nil
}
