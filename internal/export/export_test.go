package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

var sampleRecords = []manifest.Record{
	{Item: 1, DocNumber: "004521", ExpectedDate: "05/03/2024 00:00", ActualDate: "06/03/2024 00:00"},
	{Item: 2, DocNumber: "000123", ExpectedDate: "", ActualDate: `a"b`},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "\xEF\xBB\xBF" +
		`"004521";"05/03/2024 00:00";"06/03/2024 00:00"` + "\r\n" +
		`"000123";"";"a""b"` + "\r\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := buf.String(); got != "\xEF\xBB\xBF" {
		t.Errorf("WriteCSV(nil) = %q, want only the BOM", got)
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"plain", "/tmp/relatorio.xlsx", "Logistica_relatorio_05-03-2024_14h07.csv"},
		{"unsafe characters", "Lista Cargas (março).xls", "Logistica_Lista_Cargas__março__05-03-2024_14h07.csv"},
		{"dash kept", "tnt-0312.csv", "Logistica_tnt-0312_05-03-2024_14h07.csv"},
		{"truncated", strings.Repeat("a", 50) + ".csv", "Logistica_" + strings.Repeat("a", 40) + "_05-03-2024_14h07.csv"},
		{"no source", "", "Logistica_Geral_05-03-2024_14h07.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.source, at, ".csv"); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestCounter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "contador.txt")
	c := NewCounter(path)

	if got := c.Current(); got != 0 {
		t.Errorf("Current() on missing file = %d, want 0", got)
	}
	if got := c.Next(); got != 1 {
		t.Errorf("Next() = %d, want 1", got)
	}

	if n, err := c.Advance(); err != nil || n != 1 {
		t.Fatalf("Advance() = (%d, %v), want (1, nil)", n, err)
	}
	if n, err := c.Advance(); err != nil || n != 2 {
		t.Fatalf("Advance() = (%d, %v), want (2, nil)", n, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read counter file: %v", err)
	}
	if string(data) != "2" {
		t.Errorf("counter file = %q, want %q", data, "2")
	}

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if got := c.Next(); got != 1 {
		t.Errorf("Next() after Reset = %d, want 1", got)
	}

	if err := os.WriteFile(path, []byte("lixo"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := c.Current(); got != 0 {
		t.Errorf("Current() on garbage = %d, want 0", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	buf, err := WriteXLSX(sampleRecords)
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][1] != manifest.ColumnTitles[0] {
		t.Errorf("header = %q, want %q", rows[0][1], manifest.ColumnTitles[0])
	}
	if rows[1][1] != "004521" {
		t.Errorf("doc cell = %q, want %q", rows[1][1], "004521")
	}
}

func TestService_Save(t *testing.T) {
	dir := t.TempDir()
	counter := NewCounter(filepath.Join(dir, "contador.txt"))
	s := NewService(filepath.Join(dir, "out"), counter, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }

	table := &manifest.Table{Source: "alfa.csv", Layout: manifest.LayoutAlfa, Records: sampleRecords}

	saved, err := s.Save(table, FormatCSV)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Name != "Logistica_alfa_05-03-2024_09h00.csv" {
		t.Errorf("Name = %q", saved.Name)
	}
	if saved.Number != 1 || saved.Rows != 2 {
		t.Errorf("Saved = %+v, want number 1 and 2 rows", saved)
	}
	if _, err := os.Stat(saved.Path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}

	if _, err := s.Save(&manifest.Table{Source: "x.csv"}, FormatCSV); err == nil {
		t.Error("Save() of an empty table succeeded")
	}
	if got := counter.Current(); got != 1 {
		t.Errorf("counter = %d after a rejected save, want 1", got)
	}

	saved, err = s.Save(table, FormatXLSX)
	if err != nil {
		t.Fatalf("Save(xlsx) error = %v", err)
	}
	if !strings.HasSuffix(saved.Name, ".xlsx") || saved.Number != 2 {
		t.Errorf("Saved = %+v, want .xlsx number 2", saved)
	}
}
