package services

import (
	"context"
	"fmt"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// ConnectorFactory opens a connector over a corpus directory.
type ConnectorFactory func(sourceDir string) driven.Connector

// IngestService runs the offline pipeline: walk, normalise, chunk,
// embed and persist.
type IngestService struct {
	connectors    ConnectorFactory
	registry      driven.NormaliserRegistry
	pipeline      driven.PostProcessorPipeline
	embedder      driven.EmbeddingService
	builder       driven.IndexBuilder
	requiredFiles []string
	progress      driving.IngestProgress
}

// NewIngestService creates an ingest service.
func NewIngestService(
	connectors ConnectorFactory,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	builder driven.IndexBuilder,
) *IngestService {
	return &IngestService{
		connectors: connectors,
		registry:   registry,
		pipeline:   pipeline,
		embedder:   embedder,
		builder:    builder,
	}
}

// SetRequiredFiles sets the reference files that must be present in the
// corpus, by source ID or base name.
func (s *IngestService) SetRequiredFiles(files []string) {
	s.requiredFiles = files
}

// SetProgress sets the receiver of progress counters.
func (s *IngestService) SetProgress(p driving.IngestProgress) {
	s.progress = p
}

// Ingest builds the index bundle at indexPath from the corpus at sourceDir.
// Per-file failures are logged and counted; missing corpus, missing
// reference files and an empty result are fatal.
func (s *IngestService) Ingest(ctx context.Context, sourceDir, indexPath string) (driving.IngestReport, error) {
	report := driving.IngestReport{IndexPath: indexPath}

	connector := s.connectors(sourceDir)
	if err := connector.Validate(ctx); err != nil {
		return report, fmt.Errorf("source directory %s: %w", sourceDir, err)
	}

	logger.Section("Loading documents")
	raws, readFailures, err := collect(ctx, connector)
	if err != nil {
		return report, err
	}
	report.FilesFound = len(raws) + readFailures
	report.FilesSkipped = readFailures
	if s.progress != nil {
		s.progress.FilesFound(report.FilesFound)
	}

	if err := checkRequired(raws, s.requiredFiles); err != nil {
		return report, err
	}

	var docs []domain.Document
	for i := range raws {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := s.registry.Normalise(ctx, &raws[i])
		if err != nil {
			logger.Warn("Skipping %s: %v", raws[i].SourceID, err)
			report.FilesSkipped++
			continue
		}
		logger.Debug("Loaded %s: %d documents", raws[i].SourceID, len(out))
		docs = append(docs, out...)
	}
	report.Documents = len(docs)

	logger.Section("Splitting")
	var chunks []domain.Chunk
	for i := range docs {
		out, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return report, fmt.Errorf("split %s#%d: %w", docs[i].SourceID, docs[i].Sequence, err)
		}
		chunks = append(chunks, out...)
	}
	report.Chunks = len(chunks)
	if s.progress != nil {
		s.progress.Chunked(report.Documents, report.Chunks)
	}
	if len(chunks) == 0 {
		return report, domain.ErrNoChunks
	}

	logger.Section("Embedding")
	logger.Info("Embedding %d chunks with %s", len(chunks), s.embedder.ModelName())
	if err := s.builder.BuildIndex(ctx, indexPath, chunks, s.embedder); err != nil {
		return report, fmt.Errorf("build index: %w", err)
	}

	logger.Info("Index written to %s", indexPath)
	return report, nil
}

// collect drains the connector, returning the files read and the number
// of files that could not be read.
func collect(ctx context.Context, connector driven.Connector) ([]domain.RawFile, int, error) {
	filesCh, errsCh := connector.FullSync(ctx)

	var raws []domain.RawFile
	failures := 0
	for filesCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			logger.Warn("Skipping unreadable file: %v", err)
			failures++

		case raw, ok := <-filesCh:
			if !ok {
				filesCh = nil
				continue
			}
			raws = append(raws, raw)
		}
	}
	return raws, failures, nil
}

func checkRequired(raws []domain.RawFile, required []string) error {
	for _, name := range required {
		found := false
		for _, raw := range raws {
			if raw.SourceID == name || raw.Name() == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: %w", name, domain.ErrMissingReference)
		}
	}
	return nil
}
