// Package records reads the forum crawl: newline-delimited JSON objects with a
// nested author object, flattened into one map per post.
package records

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
)

const (
	authorKey    = "author"
	authorPrefix = "author_"

	// maxLineBytes bounds a single post; forum posts with embedded quotes
	// can run well past bufio's 64KiB default.
	maxLineBytes = 16 << 20
)

var errTrailingData = errors.New("trailing data after object")

// Record is one flattened post. Numbers keep their literal form (json.Number).
type Record map[string]any

// MalformedRecordError reports a line that is not a usable post object.
// Load sets Line, the 1-based physical input line. Posts works on records
// already stripped of blank lines and sets Record, the 1-based record index,
// instead.
type MalformedRecordError struct {
	Line   int
	Record int
	Reason string
	Err    error
}

// Position names where the bad record sits: "line N" or "record N".
func (e *MalformedRecordError) Position() string {
	if e.Line == 0 && e.Record > 0 {
		return fmt.Sprintf("record %d", e.Record)
	}
	return fmt.Sprintf("line %d", e.Line)
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Position(), e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Position(), e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// LoadFile reads every record in path.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses one JSON object per line. Blank lines are skipped; any other
// line that fails to parse or lacks an author object aborts the load.
func Load(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []Record
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		rec, err := parseLine(raw)
		if err != nil {
			err.Line = line
			return nil, err
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return out, nil
}

func parseLine(raw []byte) (Record, *MalformedRecordError) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, &MalformedRecordError{Reason: "invalid json", Err: err}
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return nil, &MalformedRecordError{Reason: "invalid json", Err: errTrailingData}
	}
	if obj == nil {
		return nil, &MalformedRecordError{Reason: "not a json object"}
	}

	nested, ok := obj[authorKey]
	if !ok {
		return nil, &MalformedRecordError{Reason: "missing author field"}
	}
	author, ok := nested.(map[string]any)
	if !ok {
		return nil, &MalformedRecordError{Reason: "author is not an object"}
	}
	return Flatten(obj, author), nil
}

// Flatten promotes every author key into the parent record, prefixed with
// "author_" unless it already starts with "author", and drops the nested
// object. Promoted keys overwrite top-level keys of the same name.
func Flatten(obj, author map[string]any) Record {
	rec := make(Record, len(obj)+len(author))
	for k, v := range obj {
		if k == authorKey {
			continue
		}
		rec[k] = v
	}
	for k, v := range author {
		if !strings.HasPrefix(k, authorKey) {
			k = authorPrefix + k
		}
		rec[k] = v
	}
	return rec
}

// String renders a scalar cell the way it appeared in the input. Missing and
// null cells are reported with ok=false.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x), true
		}
		return string(b), true
	}
}

// Int reads an integral numeric cell. Numeric strings are accepted too.
func (r Record) Int(key string) (int64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%s: missing", key)
	}
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = x
	default:
		return 0, fmt.Errorf("%s: not a number (%T)", key, v)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	// 1.4e12 style timestamps
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return int64(f), nil
}

// Posts projects flat records onto domain posts. A record without an author id
// or a parseable created_at is malformed; its 1-based index is reported as
// the record number.
func Posts(recs []Record) ([]domain.Post, error) {
	out := make([]domain.Post, 0, len(recs))
	for i, rec := range recs {
		p, err := ToPost(rec)
		if err != nil {
			return nil, &MalformedRecordError{Record: i + 1, Reason: "invalid post", Err: err}
		}
		out = append(out, p)
	}
	return out, nil
}

// ToPost converts a single flat record.
func ToPost(rec Record) (domain.Post, error) {
	id, ok := rec.String("author_id")
	if !ok {
		return domain.Post{}, fmt.Errorf("author_id: missing")
	}
	ts, err := rec.Int("created_at")
	if err != nil {
		return domain.Post{}, err
	}
	p := domain.Post{AuthorID: id, CreatedAt: ts}
	p.AuthorUsername, _ = rec.String("author_username")
	p.AuthorLocation, _ = rec.String("author_location")
	p.Content, _ = rec.String("content")
	return p, nil
}

// ReadPosts is LoadFile followed by Posts.
func ReadPosts(path string) ([]Record, []domain.Post, error) {
	recs, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	posts, err := Posts(recs)
	if err != nil {
		return nil, nil, err
	}
	return recs, posts, nil
}

// FromPost rebuilds a flat record from a stored post. Empty optional fields
// are left out, as they would be missing from the crawl.
func FromPost(p domain.Post) Record {
	rec := Record{
		"author_id":  p.AuthorID,
		"created_at": json.Number(strconv.FormatInt(p.CreatedAt, 10)),
		"content":    p.Content,
	}
	if p.AuthorUsername != "" {
		rec["author_username"] = p.AuthorUsername
	}
	if p.AuthorLocation != "" {
		rec["author_location"] = p.AuthorLocation
	}
	return rec
}
