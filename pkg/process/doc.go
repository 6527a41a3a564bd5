// Package process applies compiled rules to every record of a document.
package process
