package domain

// RawFile represents the bytes of one source file before normalisation.
type RawFile struct {
	// SourceID is the path of the file relative to the corpus root,
	// using forward slashes.
	SourceID string

	// Path is the absolute or working-directory-relative file path.
	Path string

	// Extension is the lower-cased file extension including the dot.
	Extension string

	// Content is the raw bytes.
	Content []byte
}

// Name returns the base name of the file.
func (r RawFile) Name() string {
	for i := len(r.SourceID) - 1; i >= 0; i-- {
		if r.SourceID[i] == '/' {
			return r.SourceID[i+1:]
		}
	}
	return r.SourceID
}
