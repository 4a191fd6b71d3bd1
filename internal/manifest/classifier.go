package manifest

// classifier.go maps a file to a LayoutKind.
//
// Detection is two ordered rule lists evaluated top-down, first match wins:
//  1. filename rules against the uppercased base name
//  2. content rules against the uppercased raw scan (see Loader.Scan)
//
// Content rules need the spreadsheet engine, so when no filename rule matches
// and the engine is not ready the classifier answers LayoutPendingInit
// instead of blocking.
//
// The "LT" filename rule also matches names such as "RESULTADO.TXT". That
// over-match is long-standing carrier behavior and is kept as is.

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// Rule is one (predicate, result) step of a classification cascade.
type Rule struct {
	Name  string
	Match func(upper string) bool
	Kind  LayoutKind
}

// fiscalKeywords mark a fiscal (invoice) number in content.
var fiscalKeywords = []string{"N.FISCAL", "NFISCAL", "NOTAFISCAL", "NR_NFE"}

var filenameRules = []Rule{
	{Name: "lista_cargas", Kind: LayoutListaCargas, Match: func(s string) bool {
		return strings.Contains(s, "LISTA") && strings.Contains(s, "CARGAS")
	}},
	{Name: "excellence", Kind: LayoutTxtExcellence, Match: func(s string) bool {
		return strings.Contains(s, "EXCELLENCE")
	}},
	{Name: "lt_donizete", Kind: LayoutLT, Match: func(s string) bool {
		return containsAny(s, "LT", "DONIZETE")
	}},
	{Name: "age_mh", Kind: LayoutAGE, Match: func(s string) bool {
		return containsAny(s, "AGE", "MH")
	}},
	{Name: "alfa", Kind: LayoutAlfa, Match: func(s string) bool {
		return strings.Contains(s, "ALFA")
	}},
	{Name: "tnt", Kind: LayoutTNT, Match: func(s string) bool {
		return strings.Contains(s, "TNT")
	}},
}

var contentRules = []Rule{
	{Name: "excellence_banner", Kind: LayoutTxtExcellence, Match: func(s string) bool {
		return strings.Contains(s, "EXCELLENCE") && strings.Contains(s, "NFISCAL")
	}},
	{Name: "alfa_nro_doc", Kind: LayoutAlfa, Match: func(s string) bool {
		return strings.Contains(s, "NRO.DOC")
	}},
	{Name: "tnt_nota_serie", Kind: LayoutTNT, Match: func(s string) bool {
		notaSerie := strings.Contains(s, "NOTA") && containsAny(s, "SERIE", "SÉRIE")
		return notaSerie || strings.Contains(s, "FIL. ORIGEM")
	}},
	{Name: "lt_donizete", Kind: LayoutLT, Match: func(s string) bool {
		return strings.Contains(s, "DON") && containsAny(s, fiscalKeywords...)
	}},
	{Name: "age_ctrc_or_dates", Kind: LayoutAGE, Match: func(s string) bool {
		if !containsAny(s, fiscalKeywords...) {
			return false
		}
		dates := strings.Contains(s, "PREV") && strings.Contains(s, "ENTR")
		return strings.Contains(s, "CTRC") || dates
	}},
}

// FilenameRules returns a copy of the ordered filename cascade.
func FilenameRules() []Rule {
	return append([]Rule(nil), filenameRules...)
}

// ContentRules returns a copy of the ordered content cascade.
func ContentRules() []Rule {
	return append([]Rule(nil), contentRules...)
}

// evaluate returns the kind of the first matching rule.
func evaluate(rules []Rule, upper string) (Rule, bool) {
	for _, r := range rules {
		if r.Match(upper) {
			return r, true
		}
	}
	return Rule{}, false
}

// ClassifyName applies the filename rules to the base name of path.
func ClassifyName(path string) (LayoutKind, bool) {
	r, ok := evaluate(filenameRules, strings.ToUpper(filepath.Base(path)))
	return r.Kind, ok
}

// ClassifyContent applies the content rules to scanned text.
// Returns LayoutUnknown when no rule matches.
func ClassifyContent(text string) LayoutKind {
	if r, ok := evaluate(contentRules, strings.ToUpper(text)); ok {
		return r.Kind
	}
	return LayoutUnknown
}

// Classifier detects the layout of manifest files.
type Classifier struct {
	loader *Loader
	ready  *Readiness
	logger *slog.Logger
}

// NewClassifier creates a Classifier. A nil ready latch is treated as ready.
func NewClassifier(loader *Loader, ready *Readiness, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = NewLoader(logger)
	}
	if ready == nil {
		ready = ReadyNow()
	}
	return &Classifier{loader: loader, ready: ready, logger: logger}
}

// Classify returns the layout of path. It never fails: unreadable content
// yields LayoutError and an engine still warming up yields LayoutPendingInit.
func (c *Classifier) Classify(path string) LayoutKind {
	name := strings.ToUpper(filepath.Base(path))
	if r, ok := evaluate(filenameRules, name); ok {
		c.logger.Debug("classify.filename", "file", name, "rule", r.Name, "layout", r.Kind)
		return r.Kind
	}

	if !c.ready.Ready() {
		c.logger.Debug("classify.pending", "file", name, "state", c.ready.State().String())
		return LayoutPendingInit
	}

	text, err := c.loader.Scan(path)
	if err != nil {
		c.logger.Warn("classify.unreadable", "file", name, "error", err)
		return LayoutError
	}

	if r, ok := evaluate(contentRules, text); ok {
		c.logger.Debug("classify.content", "file", name, "rule", r.Name, "layout", r.Kind)
		return r.Kind
	}
	return LayoutUnknown
}
