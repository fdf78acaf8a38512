package graph

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/hupe1980/navigo/blobstore"
	"github.com/hupe1980/navigo/resource"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	nodeHeaderSize = 4 + 8 + 8 + 4
	edgeSize       = 4 + 8

	// Upper bound for slice preallocation from untrusted counts.
	maxPrealloc = 1 << 20

	ctxCheckInterval = 4096
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Load decodes the graph file at path.
func Load(ctx context.Context, path string, opts ...Option) (*Store, error) {
	return LoadBlob(ctx, blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path), opts...)
}

// LoadBlob decodes the graph stored under name in store.
func LoadBlob(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Store, error) {
	rc, _, err := blobstore.OpenReader(ctx, store, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Decode(ctx, rc, opts...)
}

// Decode reads a graph from r. zstd and LZ4 frames are detected and
// decompressed transparently. Malformed input yields a *LoadError.
func Decode(ctx context.Context, r io.Reader, opts ...Option) (*Store, error) {
	o := defaultCodecOptions()
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()

	if o.rc != nil {
		r = resource.NewRateLimitedReader(ctx, r, o.rc)
	}
	br := bufio.NewReaderSize(r, 1<<16)

	compression := CompressionNone
	if magic, _ := br.Peek(4); len(magic) == 4 {
		switch {
		case bytes.Equal(magic, zstdMagic):
			compression = CompressionZSTD
		case bytes.Equal(magic, lz4Magic):
			compression = CompressionLZ4
		}
	}

	var src io.Reader = br
	switch compression {
	case CompressionZSTD:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, &LoadError{Reason: "zstd frame", cause: err}
		}
		defer dec.Close()
		src = bufio.NewReaderSize(dec, 1<<16)
	case CompressionLZ4:
		src = bufio.NewReaderSize(lz4.NewReader(br), 1<<16)
	}

	d := &decoder{r: src, order: o.order}
	s, err := d.decode(ctx)
	if err != nil {
		if o.logger != nil {
			o.logger.LogAttrs(ctx, slog.LevelError, "graph decode failed",
				slog.Int64("offset", d.off),
				slog.String("compression", compression.String()),
				slog.String("error", err.Error()))
		}
		return nil, err
	}

	if o.logger != nil {
		o.logger.LogAttrs(ctx, slog.LevelInfo, "graph decoded",
			slog.Int("nodes", s.Len()),
			slog.Int("edges", s.EdgeCount()),
			slog.Int64("bytes", d.off),
			slog.String("compression", compression.String()),
			slog.Duration("duration", time.Since(start)))
	}
	return s, nil
}

type decoder struct {
	r     io.Reader
	order binary.ByteOrder
	off   int64
	buf   [nodeHeaderSize]byte
}

func (d *decoder) read(n int, what string) ([]byte, error) {
	p := d.buf[:n]
	if _, err := io.ReadFull(d.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &LoadError{Offset: d.off, Reason: "truncated " + what, cause: io.ErrUnexpectedEOF}
		}
		return nil, &LoadError{Offset: d.off, Reason: "read " + what, cause: err}
	}
	d.off += int64(n)
	return p, nil
}

func (d *decoder) decode(ctx context.Context) (*Store, error) {
	p, err := d.read(4, "node count")
	if err != nil {
		return nil, err
	}
	count := int32(d.order.Uint32(p))
	if count < 0 {
		return nil, &LoadError{Offset: 0, Reason: "negative node count"}
	}

	b := newBuilder(min(int(count), maxPrealloc))

	for i := range int(count) {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		recordOff := d.off
		p, err := d.read(nodeHeaderSize, "node record")
		if err != nil {
			return nil, err
		}

		n := &Node{
			ID: NodeID(int64(int32(d.order.Uint32(p[0:4])))),
			Coord: Coordinate{
				Lat: float32(math.Float64frombits(d.order.Uint64(p[4:12]))),
				Lon: float32(math.Float64frombits(d.order.Uint64(p[12:20]))),
			},
		}

		edges := int32(d.order.Uint32(p[20:24]))
		if edges < 0 {
			return nil, &LoadError{Offset: recordOff, Reason: "negative edge count"}
		}

		hint := min(int(edges), maxPrealloc)
		n.Targets = make([]NodeID, 0, hint)
		n.Weights = make([]float32, 0, hint)

		for range int(edges) {
			edgeOff := d.off
			p, err := d.read(edgeSize, "edge record")
			if err != nil {
				return nil, err
			}
			w := float32(math.Float64frombits(d.order.Uint64(p[4:12])))
			if w < 0 || w != w {
				return nil, &LoadError{Offset: edgeOff, Reason: "invalid edge weight", cause: ErrNegativeWeight}
			}
			n.Targets = append(n.Targets, NodeID(int64(int32(d.order.Uint32(p[0:4])))))
			n.Weights = append(n.Weights, w)
		}

		b.add(n)
	}

	return b.build(), nil
}
