package engine

import (
	"bytes"
	"io"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the read window used when none is configured.
	DefaultChunkSize = 1 << 20
	// MinChunkSize is the smallest window the reader accepts.
	MinChunkSize = 8
	// maxTail bounds the carry when a window contains no newline.
	maxTail = 100
)

// Chunk is one read window of a file. Content[:Limit] is the region owned by
// this chunk; a match is reported here only when it starts inside it.
// Content[Limit:] is carried and re-read at the head of the next chunk.
type Chunk struct {
	Content  string
	Start    int64
	Limit    int
	LineBase int64
	Final    bool
}

// pendingTail is the number of bytes the cursor has to be rewound before the
// next read.
type pendingTail struct {
	n int
}

// ChunkReader streams a file in fixed-size windows. It is owned by a single
// goroutine.
type ChunkReader struct {
	r      io.ReadSeeker
	size   int64
	buf    []byte
	offset int64
	lines  int64
	tail   pendingTail
	done   bool
}

// NewChunkReader reads r, whose total length is size, in windows of
// chunkSize bytes. Sizes below MinChunkSize are raised to it; zero or negative
// selects DefaultChunkSize.
func NewChunkReader(r io.ReadSeeker, size int64, chunkSize int) *ChunkReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < MinChunkSize {
		chunkSize = MinChunkSize
	}
	return &ChunkReader{r: r, size: size, buf: make([]byte, chunkSize)}
}

// Next returns the next chunk. ok is false once the file is exhausted; an
// empty file yields no chunks at all.
func (c *ChunkReader) Next() (ch Chunk, ok bool, err error) {
	if c.done {
		return Chunk{}, false, nil
	}
	if c.tail.n > 0 {
		if _, err := c.r.Seek(-int64(c.tail.n), io.SeekCurrent); err != nil {
			return Chunk{}, false, err
		}
		c.tail.n = 0
	}

	n, err := io.ReadFull(c.r, c.buf)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
	default:
		return Chunk{}, false, err
	}
	if n == 0 {
		c.done = true
		return Chunk{}, false, nil
	}
	final := err != nil || c.offset+int64(n) >= c.size

	window := c.buf[:n]
	keep := n
	if !final {
		keep = cutPoint(window)
	}

	ch = Chunk{
		Content:  string(window),
		Start:    c.offset,
		Limit:    keep,
		LineBase: c.lines,
		Final:    final,
	}
	c.lines += int64(bytes.Count(window[:keep], []byte{'\n'}))
	c.offset += int64(keep)
	if final {
		c.done = true
	} else {
		c.tail.n = n - keep
	}
	return ch, true, nil
}

// Offset is the absolute offset of the first byte not yet owned by a chunk.
func (c *ChunkReader) Offset() int64 { return c.offset }

// cutPoint returns the length of the owned region of a full, non-final
// window. The owned region ends after the last newline unless that would
// carry more than half the window; otherwise a short tail is carried,
// moved back by at most three bytes to a rune start.
func cutPoint(window []byte) int {
	n := len(window)
	half := n / 2
	if i := bytes.LastIndexByte(window, '\n'); i >= 0 && n-(i+1) <= half {
		return i + 1
	}
	tail := maxTail
	if tail > half {
		tail = half
	}
	keep := n - tail
	for back := 0; back < utf8.UTFMax && keep-back > 0; back++ {
		if utf8.RuneStart(window[keep-back]) {
			return keep - back
		}
	}
	return keep
}
