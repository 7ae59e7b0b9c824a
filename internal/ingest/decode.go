package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrTooLarge means the payload, after decompression, exceeds the upload
	// limit.
	ErrTooLarge = errors.New("payload too large")
	// ErrCorrupt means the payload looked compressed but could not be
	// decoded.
	ErrCorrupt = errors.New("corrupt compressed payload")

	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Decompress returns data unchanged unless it starts with a gzip or zstd
// frame header, in which case the decompressed payload is returned. At most
// limit bytes are produced; a larger payload is ErrTooLarge.
func Decompress(data []byte, limit int64) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip header: %v", ErrCorrupt, err)
		}
		defer zr.Close()
		return readLimited(zr, limit, "gzip")
	case bytes.HasPrefix(data, zstdMagic):
		zr, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd header: %v", ErrCorrupt, err)
		}
		defer zr.Close()
		return readLimited(zr, limit, "zstd")
	}
	return data, nil
}

func readLimited(r io.Reader, limit int64, codec string) ([]byte, error) {
	if limit <= 0 {
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s body: %v", ErrCorrupt, codec, err)
		}
		return out, nil
	}
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s body: %v", ErrCorrupt, codec, err)
	}
	if int64(len(out)) > limit {
		return nil, ErrTooLarge
	}
	return out, nil
}
