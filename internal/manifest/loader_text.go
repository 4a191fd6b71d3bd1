package manifest

// loader_text.go reads delimited text exports.
//
// Carrier text files arrive in latin-1 as often as in UTF-8. Valid UTF-8 is
// kept as is (minus a BOM); anything else is decoded as ISO-8859-1, which
// maps every byte and therefore never fails.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// delimiterCandidates are tried by sniffDelimiter in preference order.
var delimiterCandidates = []rune{';', ',', '\t', '|'}

// sniffLines bounds how many non-empty lines the delimiter sniffer inspects.
const sniffLines = 20

var (
	errEmptyFile    = errors.New("empty file")
	errBinaryFile   = errors.New("binary content is not delimited text")
	utf8BOM         = []byte{0xEF, 0xBB, 0xBF}
	binaryProbeSize = 4096
)

// LoadText parses path as delimited text. A zero delim sniffs the delimiter.
func (l *Loader) LoadText(path string, delim rune) (RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawTable{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return RawTable{}, errEmptyFile
	}
	if looksBinary(data) {
		return RawTable{}, errBinaryFile
	}

	text := decodeText(data)
	if delim == 0 {
		delim = sniffDelimiter(text)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return RawTable{}, fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) == 0 {
		return RawTable{}, errEmptyFile
	}
	return RawTable{Rows: rows}, nil
}

// ReadLines returns the decoded lines of a text file.
func (l *Loader) ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Cause: err}
	}
	text := strings.ReplaceAll(decodeText(data), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}

// readPrefix returns up to n decoded bytes from the start of path.
func readPrefix(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, n)
	m, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	data := buf[:m]
	if m == n {
		data = trimPartialRune(data)
	}
	return decodeText(data), nil
}

// trimPartialRune drops a UTF-8 sequence cut short at the end of data, so a
// truncated prefix of a UTF-8 file still validates as UTF-8.
func trimPartialRune(data []byte) []byte {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				return data[:i]
			}
			return data
		}
	}
	return data
}

// decodeText strips a UTF-8 BOM and decodes latin-1 when data is not UTF-8.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	s, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "?")
	}
	return string(s)
}

// looksBinary reports whether the leading bytes contain NUL, which never
// appears in carrier text exports.
func looksBinary(data []byte) bool {
	if len(data) > binaryProbeSize {
		data = data[:binaryProbeSize]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// sniffDelimiter picks the candidate that splits the leading lines most
// consistently. Ties go to the earlier candidate, so ';' beats decimal
// commas. Falls back to ',' when no candidate appears.
func sniffDelimiter(text string) rune {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == sniffLines {
			break
		}
	}

	best, bestConsistency := ',', 0
	for _, d := range delimiterCandidates {
		freq := make(map[int]int)
		for _, line := range lines {
			if n := countOutsideQuotes(line, d); n > 0 {
				freq[n]++
			}
		}
		consistency := 0
		for _, c := range freq {
			if c > consistency {
				consistency = c
			}
		}
		if consistency > bestConsistency {
			best, bestConsistency = d, consistency
		}
	}
	return best
}

// countOutsideQuotes counts d in line, ignoring double-quoted sections.
func countOutsideQuotes(line string, d rune) int {
	n, quoted := 0, false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}
