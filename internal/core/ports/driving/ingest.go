package driving

import "context"

// IngestService builds the vector index from the corpus directory.
type IngestService interface {
	// Ingest reads every supported file under sourceDir, chunks and embeds
	// the content and persists the index bundle at indexPath.
	Ingest(ctx context.Context, sourceDir, indexPath string) (IngestReport, error)
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// FilesFound is the number of supported files discovered.
	FilesFound int

	// FilesSkipped is the number of files that failed to load.
	FilesSkipped int

	// Documents is the number of Documents produced.
	Documents int

	// Chunks is the number of Chunks embedded and indexed.
	Chunks int

	// IndexPath is where the bundle was written.
	IndexPath string
}

// IngestProgress receives progress counters while ingestion runs.
type IngestProgress interface {
	// FilesFound is called once the corpus walk completes.
	FilesFound(n int)

	// Chunked is called once splitting completes.
	Chunked(documents, chunks int)
}
