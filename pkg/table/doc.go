// Package table reads semicolon-delimited documents.
//
// The first record is the header row. Every following record must have the
// same number of fields as the header; a record that does not is reported as
// an [*ArityError] rather than padded or truncated.
package table
