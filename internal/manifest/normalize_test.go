package manifest

import "testing"

func TestCleanDocNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"numeric cell artifact", "  123.0  ", "000123"},
		{"already canonical", "004521", "004521"},
		{"longer keeps last six", "4582931", "582931"},
		{"punctuation stripped", "NF 12.345-6", "123456"},
		{"nan marker", "nan", ""},
		{"NaN marker", "NaN", ""},
		{"empty", "   ", ""},
		{"no digits", "abc", ""},
		{"zero", "0", "000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDocNumber(tt.input); got != tt.want {
				t.Errorf("CleanDocNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanDocNumber_Shape(t *testing.T) {
	inputs := []string{
		"", "1", "12", "123456", "1234567", "12345678901234", "12.0", "x9y8z7",
		"000000", "nan", "  42  ", "3.14", "1-2-3", "ÇÃ123",
	}
	for _, in := range inputs {
		got := CleanDocNumber(in)
		if got == "" {
			continue
		}
		if len(got) != DocNumberWidth {
			t.Errorf("CleanDocNumber(%q) = %q, want %d characters", in, got, DocNumberWidth)
		}
		if digitsOnly(got) != got {
			t.Errorf("CleanDocNumber(%q) = %q, want digits only", in, got)
		}
		if again := CleanDocNumber(got); again != got {
			t.Errorf("CleanDocNumber(%q) = %q, not idempotent", got, again)
		}
	}
}

func TestCleanTNTDocNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"series suffix dropped", "12345-1", "012345"},
		{"long number not truncated", "1234567-2", "1234567"},
		{"numeric cell artifact", "987.0", "000987"},
		{"nan", "nan", ""},
		{"series only", "-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTNTDocNumber(tt.input); got != tt.want {
				t.Errorf("CleanTNTDocNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"day first slash", "05/03/2024", "05/03/2024 00:00"},
		{"iso", "2024-03-05", "05/03/2024 00:00"},
		{"day first dash", "05-03-2024", "05/03/2024 00:00"},
		{"year first slash", "2024/03/05", "05/03/2024 00:00"},
		{"spreadsheet timestamp", "2024-03-05 13:45:00", "05/03/2024 00:00"},
		{"single digit parts", "5/3/2024", "05/03/2024 00:00"},
		{"two digit year rejected", "05/03/24", ""},
		{"impossible day", "31/02/2024", ""},
		{"garbage", "amanhã", ""},
		{"empty", "", ""},
		{"NaT", "NaT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(tt.input); got != tt.want {
				t.Errorf("FormatDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDateLoose(t *testing.T) {
	pinClock(t, 2025)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"two digit year", "27/11/25", "27/11/2025 00:00"},
		{"two digit year high", "01/01/99", "01/01/2099 00:00"},
		{"four digit year", "27/11/2025", "27/11/2025 00:00"},
		{"iso with clock", "2025-11-27 08:30:00", "27/11/2025 00:00"},
		{"iso with T", "2025-11-27T08:30:00", "27/11/2025 00:00"},
		{"dotted", "27.11.2025", "27/11/2025 00:00"},
		{"compact", "20251127", "27/11/2025 00:00"},
		{"month name", "27 Nov 2025", "27/11/2025 00:00"},
		{"month name dashed short year", "27-Nov-25", "27/11/2025 00:00"},
		{"day first with clock", "27/11/2025 17:00", "27/11/2025 00:00"},
		{"garbage", "sem data", ""},
		{"empty", " ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDateLoose(tt.input); got != tt.want {
				t.Errorf("FormatDateLoose(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
