// Package connectors provides implementations of the Connector interface
// for corpus sources. A connector knows how to read raw source files
// from one kind of location; the filesystem connector is the only one
// the ingest pipeline ships with.
package connectors
