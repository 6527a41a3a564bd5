// Package value implements the typed cell values that rules operate on.
//
// A [Value] is one of three kinds:
//   - [KindFloat]: a 64-bit floating point number.
//   - [KindString]: free text.
//   - [KindBool]: a boolean, only produced by literals and operator results.
//
// Raw cells are converted with [Coerce], which stores a Float when the whole
// cell parses as a number and a String otherwise.
package value
