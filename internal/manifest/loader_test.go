package manifest

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"tab", "a\tb\tc\n1\t2\t3\n", '\t'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"semicolon with decimal commas", "doc;valor\n1;2,50\n2;3,75\n3;10,00\n", ';'},
		{"quoted commas ignored", "a;\"x,y\";c\n1;\"2,3\";4\n", ';'},
		{"no delimiter", "single\ncolumn\n", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffDelimiter(tt.text); got != tt.want {
				t.Errorf("sniffDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"utf8 kept", []byte("Série"), "Série"},
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Nota")...), "Nota"},
		{"latin1 decoded", []byte{'S', 0xE9, 'r', 'i', 'e'}, "Série"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeText(tt.data); got != tt.want {
				t.Errorf("decodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoader_LoadText(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(nil)

	t.Run("sniffs and keeps ragged rows", func(t *testing.T) {
		path := writeFile(t, dir, "ragged.csv", "titulo\r\na;b;c\r\n1;2\r\n")
		got, err := l.LoadText(path, 0)
		if err != nil {
			t.Fatalf("LoadText() error = %v", err)
		}
		want := [][]string{{"titulo"}, {"a", "b", "c"}, {"1", "2"}}
		if !reflect.DeepEqual(got.Rows, want) {
			t.Errorf("LoadText() rows = %q, want %q", got.Rows, want)
		}
	})

	t.Run("latin1 file", func(t *testing.T) {
		path := writeFile(t, dir, "latin1.csv", "Nota;S\xe9rie\n1;2\n")
		got, err := l.LoadText(path, 0)
		if err != nil {
			t.Fatalf("LoadText() error = %v", err)
		}
		if got.Rows[0][1] != "Série" {
			t.Errorf("header = %q, want %q", got.Rows[0][1], "Série")
		}
	})

	t.Run("fixed delimiter", func(t *testing.T) {
		path := writeFile(t, dir, "fixed.csv", "a;b,c\n")
		got, err := l.LoadText(path, ',')
		if err != nil {
			t.Fatalf("LoadText() error = %v", err)
		}
		if want := []string{"a;b", "c"}; !reflect.DeepEqual(got.Rows[0], want) {
			t.Errorf("row = %q, want %q", got.Rows[0], want)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.csv", " \n")
		if _, err := l.LoadText(path, 0); !errors.Is(err, errEmptyFile) {
			t.Errorf("LoadText() error = %v, want errEmptyFile", err)
		}
	})

	t.Run("binary file", func(t *testing.T) {
		path := writeFile(t, dir, "blob.bin", "abc\x00def")
		if _, err := l.LoadText(path, 0); !errors.Is(err, errBinaryFile) {
			t.Errorf("LoadText() error = %v, want errBinaryFile", err)
		}
	})
}

func TestLoader_Load_SheetSelection(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(nil)

	filler := func(name string) sheet {
		return sheet{name: name, rows: [][]any{{"capa", name}}}
	}

	t.Run("fourth sheet preferred", func(t *testing.T) {
		path := writeXLSX(t, dir, "quatro.xlsx",
			sheet{name: "A", rows: [][]any{{"CTRC", "N.FISCAL"}, {1, 2}}},
			filler("B"),
			filler("C"),
			sheet{name: "D", rows: [][]any{{"nfiscal", "entrega"}, {4582, "05/03/2024"}}},
		)
		got, err := l.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Rows[0][0] != "nfiscal" {
			t.Errorf("Load() picked sheet with header %q, want the fourth sheet", got.Rows[0])
		}
	})

	t.Run("first sheet with ctrc and fiscal", func(t *testing.T) {
		path := writeXLSX(t, dir, "ctrc.xlsx",
			filler("A"),
			sheet{name: "B", rows: [][]any{{"CTRC"}, {1}}},
			sheet{name: "C", rows: [][]any{{"CTRC", "NFISCAL"}, {1, 4582}}},
		)
		got, err := l.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		want := [][]string{{"CTRC", "NFISCAL"}, {"1", "4582"}}
		if !reflect.DeepEqual(got.Rows, want) {
			t.Errorf("Load() rows = %q, want %q", got.Rows, want)
		}
	})

	t.Run("defaults to first sheet", func(t *testing.T) {
		path := writeXLSX(t, dir, "plain.xlsx",
			sheet{name: "A", rows: [][]any{{"doc"}, {7}}},
			filler("B"),
		)
		got, err := l.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Rows[0][0] != "doc" {
			t.Errorf("Load() header = %q, want first sheet", got.Rows[0])
		}
	})

	t.Run("broken workbook falls back to text", func(t *testing.T) {
		path := writeFile(t, dir, "fake.xlsx", "PK\x03\x04;nota;data\n")
		got, err := l.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Width() != 3 {
			t.Errorf("Load() width = %d, want 3", got.Width())
		}
	})

	t.Run("nothing readable", func(t *testing.T) {
		path := writeFile(t, dir, "fake2.xlsx", "PK\x03\x04\x00\x00")
		_, err := l.Load(path)
		var readErr *ReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("Load() error = %v, want *ReadError", err)
		}
		if readErr.Path != path {
			t.Errorf("ReadError.Path = %q, want %q", readErr.Path, path)
		}
	})
}

func TestLoader_LoadHead(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(nil)

	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("a;b\n")
	}
	path := writeFile(t, dir, "long.csv", b.String())

	got, err := l.LoadHead(path, 20)
	if err != nil {
		t.Fatalf("LoadHead() error = %v", err)
	}
	if len(got.Rows) != 20 {
		t.Errorf("LoadHead() rows = %d, want 20", len(got.Rows))
	}
}

func TestLoader_LoadFirstSheet_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "all.csv", "a,b\n1,2\n3,4\n")

	got, err := NewLoader(nil).LoadFirstSheet(path, ',')
	if err != nil {
		t.Fatalf("LoadFirstSheet() error = %v", err)
	}
	want := [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("LoadFirstSheet() rows = %q, want %q", got.Rows, want)
	}
}

func TestRawTable_Head(t *testing.T) {
	table := RawTable{Rows: [][]string{{"a"}, {"b"}, {"c"}}}
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"zero keeps all", 0, 3},
		{"negative keeps all", -1, 3},
		{"bounded", 2, 2},
		{"larger than table", 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(table.Head(tt.n).Rows); got != tt.want {
				t.Errorf("Head(%d) rows = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

func TestTrimPartialRune(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"ascii", []byte("abc"), []byte("abc")},
		{"complete rune", []byte("sé"), []byte("sé")},
		{"cut two-byte rune", []byte("s\xc3"), []byte("s")},
		{"cut three-byte rune", []byte("s\xe2\x82"), []byte("s")},
		{"latin-1 byte kept", []byte("s\xe9x"), []byte("s\xe9x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimPartialRune(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("trimPartialRune(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoader_Scan(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(nil)

	t.Run("text prefix uppercased", func(t *testing.T) {
		path := writeFile(t, dir, "scan.txt", "transportes excellence\nnfiscal\n")
		got, err := l.Scan(path)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if !strings.Contains(got, "EXCELLENCE") || !strings.Contains(got, "NFISCAL") {
			t.Errorf("Scan() = %q, want uppercased content", got)
		}
	})

	t.Run("text prefix bounded", func(t *testing.T) {
		path := writeFile(t, dir, "big.txt", strings.Repeat("x", scanBytes)+"NRO.DOC")
		got, err := l.Scan(path)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if strings.Contains(got, "NRO.DOC") {
			t.Error("Scan() read past the byte limit")
		}
	})

	t.Run("utf-8 prefix cut inside a rune", func(t *testing.T) {
		head := "nota série\n"
		content := head + strings.Repeat("x", scanBytes-1-len(head)) + "é depois"
		path := writeFile(t, dir, "cut.txt", content)
		got, err := l.Scan(path)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if !strings.Contains(got, "NOTA SÉRIE") {
			t.Errorf("Scan() lost the UTF-8 header, got prefix %q", got[:len(head)])
		}
	})

	t.Run("workbook rows limited to three sheets", func(t *testing.T) {
		path := writeXLSX(t, dir, "scan.xlsx",
			sheet{name: "A", rows: [][]any{{"um"}}},
			sheet{name: "B", rows: [][]any{{"dois"}}},
			sheet{name: "C", rows: [][]any{{"tres"}}},
			sheet{name: "D", rows: [][]any{{"quatro"}}},
		)
		got, err := l.Scan(path)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if !strings.Contains(got, "TRES") || strings.Contains(got, "QUATRO") {
			t.Errorf("Scan() = %q, want the first three sheets only", got)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.txt", "")
		if _, err := l.Scan(path); !errors.Is(err, ErrUnreadableContent) {
			t.Errorf("Scan() error = %v, want ErrUnreadableContent", err)
		}
	})
}
