package services

import "strings"

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 0
)

// Chunker splits text into word windows of at most Size words. Consecutive
// windows share Overlap words.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker normalises the window settings: size <= 0 falls back to the
// default and an overlap outside [0, size) is treated as 0.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// Split tokenises text on whitespace and joins each window with single spaces.
// Empty or whitespace-only text yields no chunks.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := c.Size - c.Overlap
	chunks := make([]string, 0, len(words)/stride+1)

	for i := 0; i < len(words); i += stride {
		end := i + c.Size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}

	return chunks
}
