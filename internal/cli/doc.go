// Package cli runs one pixelmosh command-line invocation: read a PNG, mosh
// it one or more times, and write the results.
//
// Progress goes to a spinner on stderr when stderr is a terminal; the file
// name, seed and written paths are printed on stdout so they can be
// scripted against.
package cli
