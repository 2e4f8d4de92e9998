package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
)

var (
	ingestSource string
	ingestIndex  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the knowledge base from the corpus",
	Long: `Reads every supported file (.txt, .csv, .json, .pdf) under the source
directory, splits it into overlapping chunks, embeds them and replaces the
vector index bundle.

The previous bundle stays in place when ingestion fails.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "corpus directory (default from config)")
	ingestCmd.Flags().StringVar(&ingestIndex, "index", "", "index bundle directory (default from config)")
	rootCmd.AddCommand(ingestCmd)
}

// ingestPrinter reports progress counters on the command output.
type ingestPrinter struct {
	cmd *cobra.Command
}

func (p ingestPrinter) FilesFound(n int) {
	p.cmd.Printf("Found %d files\n", n)
}

func (p ingestPrinter) Chunked(documents, chunks int) {
	p.cmd.Printf("Split %d documents into %d chunks\n", documents, chunks)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	source := cfg.Ingest.SourceDir
	if ingestSource != "" {
		source = ingestSource
	}
	index := cfg.Index.Path
	if ingestIndex != "" {
		index = ingestIndex
	}

	svc, closeFn, err := newIngester(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise ingestion: %w", err)
	}
	defer closeFn()

	var progress driving.IngestProgress = ingestPrinter{cmd: cmd}
	svc.SetProgress(progress)

	cmd.Printf("Ingesting %s\n", source)
	report, err := svc.Ingest(cmd.Context(), source, index)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	cmd.Println()
	cmd.Printf("Files found:   %d\n", report.FilesFound)
	cmd.Printf("Files skipped: %d\n", report.FilesSkipped)
	cmd.Printf("Documents:     %d\n", report.Documents)
	cmd.Printf("Chunks:        %d\n", report.Chunks)
	cmd.Printf("Knowledge base saved to %s\n", report.IndexPath)
	return nil
}
