package seedstore

import (
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec compresses seed files on their way into a Store.
type Codec interface {
	// Name identifies the codec ("none", "zstd", "lz4").
	Name() string

	// NewWriter wraps w with a compressing writer. Closing the returned
	// writer flushes the codec frame but not w.
	NewWriter(w io.Writer) (io.WriteCloser, error)

	// NewReader wraps r with a decompressing reader.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// CodecByName returns the codec for a command-line name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "none":
		return NoneCodec{}, nil
	case "zstd":
		return ZstdCodec{}, nil
	case "lz4":
		return LZ4Codec{}, nil
	default:
		return nil, fmt.Errorf("seedstore: unknown codec %q", name)
	}
}

// NoneCodec passes data through unchanged.
type NoneCodec struct{}

func (NoneCodec) Name() string { return "none" }

func (NoneCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (NoneCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// ZstdCodec compresses with zstandard at the default level.
type ZstdCodec struct{}

func (ZstdCodec) Name() string { return "zstd" }

func (ZstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr.IOReadCloser(), nil
}

// LZ4Codec compresses with the lz4 frame format.
type LZ4Codec struct{}

func (LZ4Codec) Name() string { return "lz4" }

func (LZ4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (LZ4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

// WithCompression wraps a Store so that every seed file passes through the
// codec. A NoneCodec wrapper behaves like the inner store.
func WithCompression(inner Store, codec Codec) Store {
	return &compressedStore{inner: inner, codec: codec}
}

type compressedStore struct {
	inner Store
	codec Codec
}

func (s *compressedStore) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	cw, err := s.codec.NewWriter(w)
	if err != nil {
		w.Close()
		return nil, err
	}
	return &compressedWriter{cw: cw, w: w}, nil
}

func (s *compressedStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	cr, err := s.codec.NewReader(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &compressedReader{cr: cr, r: r}, nil
}

type compressedWriter struct {
	cw io.WriteCloser
	w  io.WriteCloser
}

func (c *compressedWriter) Write(p []byte) (int, error) {
	return c.cw.Write(p)
}

func (c *compressedWriter) Close() error {
	if err := c.cw.Close(); err != nil {
		c.w.Close()
		return err
	}
	return c.w.Close()
}

type compressedReader struct {
	cr io.ReadCloser
	r  io.ReadCloser
}

func (c *compressedReader) Read(p []byte) (int, error) {
	return c.cr.Read(p)
}

func (c *compressedReader) Close() error {
	if err := c.cr.Close(); err != nil {
		c.r.Close()
		return err
	}
	return c.r.Close()
}
