package photons3d

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression is picked from the file name: .zst is zstd, .sz is snappy
// framing, anything else is plain JSON lines.
func compressionOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		return "zstd"
	case ".sz":
		return "snappy"
	}
	return ""
}

// HitWriter streams hits as one JSON object per line.
type HitWriter struct {
	file   *os.File
	stream io.WriteCloser // compressor, nil for plain files
	buf    *bufio.Writer
	enc    *json.Encoder
	n      int
}

func NewHitWriter(path string) (*HitWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &HitWriter{file: f}
	var sink io.Writer = f
	switch compressionOf(path) {
	case "zstd":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		w.stream, sink = zw, zw
	case "snappy":
		sw := snappy.NewBufferedWriter(f)
		w.stream, sink = sw, sw
	}
	w.buf = bufio.NewWriter(sink)
	w.enc = json.NewEncoder(w.buf)
	return w, nil
}

// Write appends one hit.
func (w *HitWriter) Write(h ChannelHit) error {
	if err := w.enc.Encode(h); err != nil {
		return fmt.Errorf("write hit %d: %w", w.n, err)
	}
	w.n++
	return nil
}

// WriteAll appends hits in order.
func (w *HitWriter) WriteAll(hits []ChannelHit) error {
	for _, h := range hits {
		if err := w.Write(h); err != nil {
			return err
		}
	}
	return nil
}

// Count is the number of hits written so far.
func (w *HitWriter) Count() int { return w.n }

// Close flushes every layer and closes the file, reporting the first failure.
func (w *HitWriter) Close() error {
	if w == nil {
		return nil
	}
	var firstErr error
	if err := w.buf.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	if w.stream != nil {
		if err := w.stream.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := w.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// WriteHits writes hits to path in one go.
func WriteHits(path string, hits []ChannelHit) error {
	w, err := NewHitWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteAll(hits); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadHits reads a file written by HitWriter.
func ReadHits(path string) ([]ChannelHit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch compressionOf(path) {
	case "zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case "snappy":
		r = snappy.NewReader(f)
	}

	var hits []ChannelHit
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		var h ChannelHit
		err := dec.Decode(&h)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: hit %d: %w", path, len(hits), err)
		}
		hits = append(hits, h)
	}
	return hits, nil
}
