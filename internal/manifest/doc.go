// Package manifest provides layout detection and normalization for carrier
// delivery manifests.
//
// This package is the heart of the normalizer, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// A processing request flows through four stages:
//
//   - Loader: turns a path into a headerless [RawTable], trying XLSX, legacy
//     XLS and finally delimited text decoded as latin-1.
//   - Classifier: maps a path to a [LayoutKind] using ordered filename rules,
//     then ordered content rules over a raw keyword scan.
//   - Extractors: one strategy per layout, registered in a table keyed by
//     [LayoutKind]. Each returns raw (document, expected, actual) triples.
//   - Pipeline: normalizes every triple with the layout's cleaners, drops
//     rows without a usable document number and renumbers the rest.
//
// # Readiness
//
// Content classification and spreadsheet extraction depend on the spreadsheet
// engine warm-up tracked by [Readiness]. Until it is ready the classifier
// answers [LayoutPendingInit] for files that no filename rule recognizes;
// callers retry with [Pipeline.ClassifyWhenReady].
//
// # Error Handling
//
// Loader exhaustion surfaces as [*ReadError], missing headers or columns as
// [*ExtractionError], and everything returned by [Pipeline.Process] is wrapped
// in [*ProcessingError]. Cell level problems never raise: an unparseable date
// becomes an empty string and an unusable document number drops the row.
// [MapError] converts any of these into operator-facing text with a code.
package manifest
