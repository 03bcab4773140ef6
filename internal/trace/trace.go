// Package trace implements the optional processed-event audit trail
// referenced by domain stack: a zstd-compressed JSONL sink
// a matcher.Matcher can be given via matcher.WithTraceSink, appending one
// compressed line per ProcessedEvent so a host process can durably record
// every matcher decision without the unbounded disk cost of uncompressed
// JSON.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/0x4d31/matcherd/internal/processed"
)

// Sink appends processed events to a zstd-compressed JSONL file. It is
// safe for concurrent use by multiple Matcher.Process callers.
type Sink struct {
	mu  sync.Mutex
	f   *os.File
	buf *bufio.Writer
	enc *zstd.Encoder
}

// Open creates (or truncates) path and wraps it in a buffered zstd
// encoder. Callers must Close the Sink to flush the final zstd frame.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	enc, err := zstd.NewWriter(buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("trace: new zstd encoder: %w", err)
	}
	return &Sink{f: f, buf: buf, enc: enc}, nil
}

// Write appends one JSON line for ev to the trace file, matching the
// same MarshalJSON diagnostic shape a caller would see from
// processed.Event.MarshalJSON directly.
func (s *Sink) Write(ev *processed.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("trace: marshal processed event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.enc.Write(data); err != nil {
		return fmt.Errorf("trace: write: %w", err)
	}
	if _, err := s.enc.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("trace: write newline: %w", err)
	}
	return nil
}

// Close flushes the zstd encoder and the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Close(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("trace: close zstd encoder: %w", err)
	}
	if err := s.buf.Flush(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("trace: flush: %w", err)
	}
	return s.f.Close()
}

// Reader decodes a zstd-compressed JSONL trace file previously written by
// Sink, for offline inspection tooling. The matcherd CLI has no
// subcommand that uses it.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
}

// OpenReader opens an existing trace file for sequential reading.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("trace: new zstd decoder: %w", err)
	}
	sc := bufio.NewScanner(dec.IOReadCloser())
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{f: f, dec: dec, sc: sc}, nil
}

// Next decodes the next trace line into a generic map (the processed-event
// JSON shape is recursive and best inspected untyped by CLI tooling). It
// returns io.EOF once the file is exhausted.
func (r *Reader) Next() (map[string]any, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var out map[string]any
	if err := json.Unmarshal(r.sc.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("trace: decode line: %w", err)
	}
	return out, nil
}

// Close releases the underlying file and zstd decoder.
func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
