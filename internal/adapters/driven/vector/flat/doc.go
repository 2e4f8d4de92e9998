// Package flat provides an exact, brute-force vector index.
//
// The index stores unit-norm vectors and ranks by dot product, which is
// cosine similarity for normalised inputs. The corpus is small enough that
// exhaustive search is fast and, unlike an approximate graph index,
// deterministic.
//
// # Bundle layout
//
// An index is persisted as a directory:
//
//	vector_index/
//	  manifest.toml   format version, build ID, model, dimensions, chunk count
//	  index.db        SQLite: chunk rows with little-endian float32 vectors
//
// Save writes a sibling temporary directory and renames it into place, so
// readers see either the old bundle or the new one. Load validates the
// manifest against the rows and refuses partial bundles.
//
// # Hot swap
//
// Handle holds the current Index behind an atomic pointer. Watcher reloads
// the bundle when a rebuild replaces it and swaps the new Index in.
package flat
