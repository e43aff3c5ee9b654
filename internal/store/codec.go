package store

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	markerPlain   byte = 0
	markerGzipped byte = 1

	compressThreshold = 4096
)

var errEmptyBlob = errors.New("empty blob")

// encode packs v with msgpack, gzipping payloads above compressThreshold.
// The first byte records which form follows.
func encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blob: %w", err)
	}
	if len(data) < compressThreshold {
		return append([]byte{markerPlain}, data...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(markerGzipped)
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress blob: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress blob: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(blob []byte, v any) error {
	if len(blob) == 0 {
		return errEmptyBlob
	}

	payload := blob[1:]
	switch blob[0] {
	case markerPlain:
	case markerGzipped:
		gz, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to decompress blob: %w", err)
		}
		defer gz.Close()
		if payload, err = io.ReadAll(gz); err != nil {
			return fmt.Errorf("failed to decompress blob: %w", err)
		}
	default:
		return fmt.Errorf("unknown blob marker %d", blob[0])
	}

	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to decode blob: %w", err)
	}
	return nil
}
