package minilm

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Special tokens of the uncased BERT vocabulary.
const (
	tokenPad = "[PAD]"
	tokenUnk = "[UNK]"
	tokenCLS = "[CLS]"
	tokenSEP = "[SEP]"
)

// maxWordRunes is the longest word WordPiece will try to split.
const maxWordRunes = 100

// Tokenizer is an uncased BERT WordPiece tokenizer producing fixed-length
// rows: [CLS] tokens [SEP] then padding up to maxLen.
type Tokenizer struct {
	vocab  map[string]int64
	maxLen int
	pad    int64
	unk    int64
	cls    int64
	sep    int64
}

// Encoding is one tokenized row.
type Encoding struct {
	IDs           []int64
	AttentionMask []int64
	TypeIDs       []int64
}

// LoadTokenizer reads a vocab.txt file with one token per line; the line
// number is the token ID.
func LoadTokenizer(vocabPath string, maxLen int) (*Tokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	var tokens []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		tokens = append(tokens, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return NewTokenizer(tokens, maxLen)
}

// NewTokenizer builds a tokenizer from an ordered token list.
func NewTokenizer(tokens []string, maxLen int) (*Tokenizer, error) {
	if maxLen < 2 {
		return nil, fmt.Errorf("max sequence length %d leaves no room for [CLS] and [SEP]", maxLen)
	}
	vocab := make(map[string]int64, len(tokens))
	for i, tok := range tokens {
		if _, dup := vocab[tok]; !dup {
			vocab[tok] = int64(i)
		}
	}

	t := &Tokenizer{vocab: vocab, maxLen: maxLen}
	for _, special := range []struct {
		name string
		dst  *int64
	}{
		{tokenPad, &t.pad},
		{tokenUnk, &t.unk},
		{tokenCLS, &t.cls},
		{tokenSEP, &t.sep},
	} {
		id, ok := vocab[special.name]
		if !ok {
			return nil, fmt.Errorf("vocabulary lacks %s", special.name)
		}
		*special.dst = id
	}
	return t, nil
}

// MaxLen returns the fixed row length.
func (t *Tokenizer) MaxLen() int {
	return t.maxLen
}

// Encode tokenizes text into a padded row, truncating to fit.
func (t *Tokenizer) Encode(text string) Encoding {
	ids := make([]int64, t.maxLen)
	mask := make([]int64, t.maxLen)
	types := make([]int64, t.maxLen)

	pieces := t.Tokenize(text)
	if limit := t.maxLen - 2; len(pieces) > limit {
		pieces = pieces[:limit]
	}

	ids[0], mask[0] = t.cls, 1
	for i, p := range pieces {
		ids[i+1], mask[i+1] = p, 1
	}
	end := len(pieces) + 1
	ids[end], mask[end] = t.sep, 1
	for i := end + 1; i < t.maxLen; i++ {
		ids[i] = t.pad
	}
	return Encoding{IDs: ids, AttentionMask: mask, TypeIDs: types}
}

// Tokenize returns the WordPiece IDs of text without special tokens.
func (t *Tokenizer) Tokenize(text string) []int64 {
	var out []int64
	for _, word := range basicTokenize(text) {
		out = append(out, t.wordPiece(word)...)
	}
	return out
}

// wordPiece splits one word greedily into the longest vocabulary entries.
func (t *Tokenizer) wordPiece(word string) []int64 {
	rs := []rune(word)
	if len(rs) > maxWordRunes {
		return []int64{t.unk}
	}

	var ids []int64
	for start := 0; start < len(rs); {
		end := len(rs)
		var id int64 = -1
		for end > start {
			piece := string(rs[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if v, ok := t.vocab[piece]; ok {
				id = v
				break
			}
			end--
		}
		if id < 0 {
			return []int64{t.unk}
		}
		ids = append(ids, id)
		start = end
	}
	return ids
}

// stripAccents decomposes and drops combining marks.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// basicTokenize cleans, lower-cases, strips accents and splits on
// whitespace and punctuation. Punctuation runes become their own words.
func basicTokenize(text string) []string {
	cleaned, _, err := transform.String(stripAccents, strings.ToLower(text))
	if err != nil {
		cleaned = strings.ToLower(text)
	}

	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	for _, r := range cleaned {
		switch {
		case r == 0 || r == unicode.ReplacementChar || (unicode.IsControl(r) && !unicode.IsSpace(r)):
			continue
		case unicode.IsSpace(r):
			flush()
		case isPunctuation(r) || isCJK(r):
			flush()
			words = append(words, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// isPunctuation treats all non-alphanumeric ASCII as punctuation, as BERT does.
func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r)
}
