package graph

import (
	"encoding/binary"
	"log/slog"

	"github.com/hupe1980/navigo/resource"
)

// Compression selects the frame Encode wraps the stream in.
type Compression uint8

const (
	// CompressionNone writes the raw format.
	CompressionNone Compression = iota
	// CompressionZSTD wraps the stream in a zstd frame.
	CompressionZSTD
	// CompressionLZ4 wraps the stream in an LZ4 frame.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

type codecOptions struct {
	order       binary.ByteOrder
	compression Compression
	rc          *resource.Controller
	logger      *slog.Logger
}

func defaultCodecOptions() codecOptions {
	return codecOptions{order: binary.BigEndian}
}

// Option configures Decode, Load, LoadBlob and Encode.
type Option func(*codecOptions)

// WithByteOrder sets the byte order of the integer and real fields.
// The default is big-endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *codecOptions) {
		if order != nil {
			o.order = order
		}
	}
}

// WithCompression sets the frame Encode writes. Decode ignores it and
// detects compression itself.
func WithCompression(c Compression) Option {
	return func(o *codecOptions) {
		o.compression = c
	}
}

// WithIOLimiter throttles decoding to the controller's IO rate.
func WithIOLimiter(rc *resource.Controller) Option {
	return func(o *codecOptions) {
		o.rc = rc
	}
}

// WithDecodeLogger logs decode progress and results.
func WithDecodeLogger(l *slog.Logger) Option {
	return func(o *codecOptions) {
		o.logger = l
	}
}
