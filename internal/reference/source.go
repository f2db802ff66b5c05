package reference

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Source encodings accepted by LoadSource.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
	EncodingLatin9      = "iso-8859-15"
)

const utf8BOM = "\ufeff"

// Record is one data line of a source keyed by header name. Missing cells
// (empty or whitespace-only) have no entry.
type Record map[string]string

// Get returns the trimmed cell value for column and whether it is present.
func (r Record) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Source is a delimited file loaded as named fields.
type Source struct {
	Path    string
	Header  []string
	Records []Record
	// Lines holds the 1-based file line of each record, for error messages.
	Lines []int
}

// HasColumn reports whether the header declares column.
func (s *Source) HasColumn(column string) bool {
	for _, h := range s.Header {
		if h == column {
			return true
		}
	}
	return false
}

// line returns the file line of record i, or 0 when unknown.
func (s *Source) line(i int) int {
	if i < len(s.Lines) {
		return s.Lines[i]
	}
	return 0
}

// MissingColumns returns the entries of want that the header does not declare.
func (s *Source) MissingColumns(want []string) []string {
	var missing []string
	for _, c := range want {
		if !s.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// LoadSource reads the delimited file at path. The first line is the header.
// Rows shorter than the header are padded with missing cells and extra
// trailing cells are dropped.
func LoadSource(path string, delimiter rune, encoding string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference source: %w", err)
	}
	defer f.Close()

	src, err := ReadSource(f, delimiter, encoding)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	src.Path = path
	return src, nil
}

// ReadSource parses a delimited stream; see LoadSource.
func ReadSource(r io.Reader, delimiter rune, encoding string) (*Source, error) {
	decoded, err := decode(r, encoding)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(decoded)
	if bom, _ := br.Peek(len(utf8BOM)); string(bom) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	src := &Source{Header: header}
	for {
		fields, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("parsing record: %w", readErr)
		}
		line, _ := cr.FieldPos(0)

		rec := make(Record, len(header))
		for i, name := range header {
			if i >= len(fields) {
				break
			}
			if v := strings.TrimSpace(fields[i]); v != "" {
				rec[name] = v
			}
		}
		if len(rec) == 0 {
			// Blank or all-delimiter lines carry nothing.
			continue
		}
		src.Records = append(src.Records, rec)
		src.Lines = append(src.Lines, line)
	}
	return src, nil
}

// CheckEncoding returns ErrUnknownEncoding unless LoadSource accepts encoding.
func CheckEncoding(encoding string) error {
	_, err := decode(strings.NewReader(""), encoding)
	return err
}

func decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		return r, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	case EncodingLatin1, "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case EncodingLatin9, "latin9":
		return charmap.ISO8859_15.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
}
