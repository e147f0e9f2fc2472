package grpc

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"google.golang.org/grpc/encoding"
)

func TestZstdCompressor_Registered(t *testing.T) {
	c := encoding.GetCompressor(CompressionZstd)
	if c == nil {
		t.Fatal("zstd compressor not registered")
	}
	if c.Name() != "zstd" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestZstdCompressor_RoundTrip(t *testing.T) {
	c := encoding.GetCompressor(CompressionZstd)
	payload := []byte(strings.Repeat("log entry payload ", 512))

	// Run twice so pooled encoders and decoders are reused.
	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		w, err := c.Compress(&buf)
		if err != nil {
			t.Fatalf("Compress() error = %v", err)
		}
		if _, err := w.Write(payload); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if buf.Len() >= len(payload) {
			t.Errorf("compressed %d bytes into %d", len(payload), buf.Len())
		}

		r, err := c.Decompress(&buf)
		if err != nil {
			t.Fatalf("Decompress() error = %v", err)
		}
		got, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("round trip mismatch on pass %d", i)
		}
	}
}
