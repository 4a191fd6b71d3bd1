package export

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// maxNameRunes bounds the source-derived part of an export name.
	maxNameRunes = 40

	// stampLayout renders the save time, e.g. 05-03-2024_14h30.
	stampLayout = "02-01-2006_15h04"
)

// unsafeName matches characters that are not letters, digits, '_' or '-'.
var unsafeName = regexp.MustCompile(`[^\p{L}\p{N}_\-]`)

// FileName builds "Logistica_<name>_<dd-mm-yyyy_HHhMM><ext>" from the source
// file name, or "Logistica_Geral_<stamp><ext>" when there is no source.
// ext includes the dot.
func FileName(source string, at time.Time, ext string) string {
	stamp := at.Format(stampLayout)

	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if source == "" || name == "" || name == "." {
		return "Logistica_Geral_" + stamp + ext
	}

	name = unsafeName.ReplaceAllString(name, "_")
	if r := []rune(name); len(r) > maxNameRunes {
		name = string(r[:maxNameRunes])
	}
	return "Logistica_" + name + "_" + stamp + ext
}
