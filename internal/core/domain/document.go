package domain

// Document is one logical record produced from a source file: a PDF page,
// a CSV row, a question/answer object or a whole text file.
// Documents are immutable after creation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourceID identifies the source file, relative to the corpus root.
	SourceID string

	// Sequence is the record's position within its source file
	// (page index, row number, record index).
	Sequence int

	// Content is the full text of the record before chunking.
	Content string

	// Metadata contains format-specific key-value pairs.
	Metadata map[string]any
}

// Chunk is a contiguous slice of a Document's content.
// Chunks are the unit of embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// SourceID is inherited from the parent Document.
	SourceID string

	// Sequence is inherited from the parent Document.
	Sequence int

	// Position is the ordinal position within the parent Document.
	Position int

	// Offset is the rune offset of Content within the parent Document's
	// trimmed content.
	Offset int

	// Content is the text content of this chunk.
	Content string
}

// RetrievalHit is a chunk returned by a similarity search.
// Hits are transient and never persisted.
type RetrievalHit struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity between query and chunk vectors.
	Score float64
}
