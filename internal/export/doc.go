// Package export writes canonical manifest tables for downstream systems.
//
// The delimited output is what the logistics system imports: one header-less
// row per record, three fields (document number, expected date, actual date),
// ';' separated, every field quoted, UTF-8 with a byte order mark. The item
// number is display only and never exported.
//
// A persisted sequential counter records how many saves have happened. It is
// a plain integer text file, advanced only after a file was fully written.
package export
