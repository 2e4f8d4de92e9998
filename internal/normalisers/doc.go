// Package normalisers provides implementations of the Normaliser interface
// for the corpus formats. Each normaliser turns one raw file into the
// Documents it contains: a page, a row, a question and answer pair.
//
// Normalisers are registered with the Registry at startup.
package normalisers
