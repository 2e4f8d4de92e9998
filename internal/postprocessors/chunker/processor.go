// Package chunker provides a boundary-aware text chunking processor.
package chunker

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 600

// DefaultChunkOverlap is the default maximum number of overlapping runes.
const DefaultChunkOverlap = 200

// chunkNamespace seeds the name-based chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://newcadillacdatabase.org/chunk"))

// separators in order of preference.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune(" "),
}

// Processor splits document content into overlapping windows, cutting at
// the strongest boundary available inside each window.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the maximum overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the trimmed document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	text := []rune(strings.TrimSpace(doc.Content))
	if len(text) == 0 {
		return nil, nil
	}

	var chunks []domain.Chunk
	start, floor := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := len(text)
		last := end-start <= p.chunkSize
		if !last {
			end = p.cut(text, start, floor)
		}

		lo, hi := trimRange(text, start, end)
		if lo < hi {
			position := len(chunks)
			chunks = append(chunks, domain.Chunk{
				ID:       ChunkID(doc.SourceID, doc.Sequence, position),
				SourceID: doc.SourceID,
				Sequence: doc.Sequence,
				Position: position,
				Offset:   lo,
				Content:  string(text[lo:hi]),
			})
		}

		if last {
			break
		}
		start = p.nextStart(text, start, end)
		// The next chunk has to reach past what this one covered.
		floor = nextNonSpace(text, hi) + 1
	}

	return chunks, nil
}

// cut returns the end of the chunk beginning at start. The end always
// lies past start+overlap and at or past floor so the next chunk makes
// progress.
func (p *Processor) cut(text []rune, start, floor int) int {
	limit := start + p.chunkSize
	minEnd := max(start+p.overlap+1, floor)

	for _, sep := range separators {
		for i := limit - len(sep); i+len(sep) >= minEnd && i > start; i-- {
			if hasRunesAt(text, i, sep) {
				return i + len(sep)
			}
		}
	}
	return limit
}

// nextStart picks the first word start inside the overlap window before
// end, or the hard window start when there is none.
func (p *Processor) nextStart(text []rune, start, end int) int {
	from := end - p.overlap
	if from <= start {
		from = start + 1
	}
	for j := from; j < end; j++ {
		if unicode.IsSpace(text[j-1]) && !unicode.IsSpace(text[j]) {
			return j
		}
	}
	if nextNonSpace(text, from) < end {
		return from
	}
	// Blank window: start on the last rune of this chunk so the two still
	// share text, unless the gap ahead is too wide for one chunk.
	for j := from - 1; j > start; j-- {
		if unicode.IsSpace(text[j]) {
			continue
		}
		if nextNonSpace(text, end)-j < p.chunkSize {
			return j
		}
		break
	}
	return from
}

// nextNonSpace returns the index of the first non-space rune at or after
// i, or len(text).
func nextNonSpace(text []rune, i int) int {
	for i < len(text) && unicode.IsSpace(text[i]) {
		i++
	}
	return i
}

// ChunkID derives a stable identifier from a chunk's coordinates.
func ChunkID(sourceID string, sequence, position int) string {
	name := sourceID + "#" + strconv.Itoa(sequence) + "#" + strconv.Itoa(position)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

func hasRunesAt(text []rune, i int, sep []rune) bool {
	if i < 0 || i+len(sep) > len(text) {
		return false
	}
	for k, r := range sep {
		if text[i+k] != r {
			return false
		}
	}
	return true
}

func trimRange(text []rune, lo, hi int) (int, int) {
	for lo < hi && unicode.IsSpace(text[lo]) {
		lo++
	}
	for hi > lo && unicode.IsSpace(text[hi-1]) {
		hi--
	}
	return lo, hi
}
