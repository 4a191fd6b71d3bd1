package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// Delimiter separates exported fields.
const Delimiter = ';'

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes records in the import format. Every field is quoted and
// embedded quotes are doubled.
func WriteCSV(w io.Writer, records []manifest.Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(utf8BOM); err != nil {
		return err
	}
	for _, r := range records {
		for i, field := range r.Fields() {
			if i > 0 {
				bw.WriteByte(Delimiter)
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(field, `"`, `""`))
			bw.WriteByte('"')
		}
		// CRLF matches what spreadsheet tools emit on the import side.
		if _, err := bw.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
