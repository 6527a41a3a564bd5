// Package rule loads rule documents and compiles them into predicates.
//
// A rule document is a list of rules, written as JSON (or YAML for files
// ending in .yaml or .yml):
//
//	[
//	  {"rule": "A == C"},
//	  {"rule": "string_contains(Name, \"Ada\")", "name": "ada"},
//	  {"rule": "row.A > 1.5", "lang": "cel"}
//	]
//
// Documents are validated against a JSON schema before decoding. Every rule
// is compiled up front, so a run never starts with a rule that cannot be
// evaluated.
package rule
