// Package domain holds the value types shared by every layer: the raw
// files and documents produced during ingest, the chunks and hits used at
// query time, pending questions and shortcuts, the fixed replies, and the
// sentinel errors callers match with errors.Is.
//
// It imports the standard library only.
package domain
