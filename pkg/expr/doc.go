// Package expr compiles and evaluates rule expressions over a record's typed
// column values.
//
// The native rule language supports, from highest to lowest precedence:
//   - Primaries: column names, numbers, "strings", true/false, function
//     calls such as string_contains(A, "x"), and parenthesized expressions.
//   - Unary: ! (logical not) and - (negation).
//   - Multiplicative: * and /.
//   - Additive: + and -.
//   - Relational: <, <=, > and >=.
//   - Equality: == and !=.
//   - Logical AND: && (short-circuit).
//   - Logical OR: || (short-circuit).
//
// Column names that are not plain identifiers can be written between
// back-ticks, e.g. `First Name` == "Ada".
//
// Column names are resolved lazily against the [Context] passed to
// [Program.Eval], so a compiled [Program] can be shared by any number of
// goroutines and evaluated against records with different headers.
//
// Rules can alternatively be written in CEL (see [CompileCEL]), where the
// record is available as the `row` map.
package expr
