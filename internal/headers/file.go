package headers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// ReadFile loads a header file: a JSON array ordered by height, the array
// index being the height. Heights are assigned from the position in the
// array.
func ReadFile(path string) ([]Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read header file: %w", err)
	}
	var headers []Header
	if err := json.Unmarshal(data, &headers); err != nil {
		return nil, fmt.Errorf("parse header file %s: %w", path, err)
	}
	for i := range headers {
		headers[i].Height = uint64(i)
	}
	return headers, nil
}

// WriteFile saves headers as a JSON array ordered by height. Heights are not
// serialized, the array position carries them.
func WriteFile(path string, headers []Header) error {
	data, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("encode headers: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write header file: %w", err)
	}
	return nil
}

// SliceSource serves headers out of memory. It backs file-based runs and
// tests.
type SliceSource struct {
	headers []Header
}

// NewSliceSource creates a SliceSource over headers, which must be ordered
// by height starting at the headers' own Height fields.
func NewSliceSource(headers []Header) *SliceSource {
	return &SliceSource{headers: headers}
}

// NewFileSource loads path and serves its headers from memory.
func NewFileSource(path string) (*SliceSource, error) {
	headers, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewSliceSource(headers), nil
}

// LatestHeight returns the height of the last header.
func (s *SliceSource) LatestHeight(_ context.Context) (uint64, error) {
	if len(s.headers) == 0 {
		return 0, fmt.Errorf("header source is empty")
	}
	return s.headers[len(s.headers)-1].Height, nil
}

// HeaderAt returns the header at the given height.
func (s *SliceSource) HeaderAt(_ context.Context, height uint64) (Header, error) {
	if len(s.headers) == 0 {
		return Header{}, fmt.Errorf("header source is empty")
	}
	first := s.headers[0].Height
	if height < first || height > s.headers[len(s.headers)-1].Height {
		return Header{}, fmt.Errorf("height %d out of range", height)
	}
	return s.headers[height-first], nil
}

// FetchRange returns the headers for heights from..to inclusive.
func (s *SliceSource) FetchRange(ctx context.Context, from, to uint64) ([]Header, error) {
	if to < from {
		return nil, fmt.Errorf("invalid header range %d..%d", from, to)
	}
	headers := make([]Header, 0, to-from+1)
	for h := from; h <= to; h++ {
		header, err := s.HeaderAt(ctx, h)
		if err != nil {
			return nil, err
		}
		headers = append(headers, header)
	}
	return headers, nil
}
