package graph

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Encode writes s in the binary graph format, nodes in load order.
// Returns ErrIDOutOfRange if an id or edge target does not fit in int32.
func Encode(w io.Writer, s *Store, opts ...Option) (err error) {
	o := defaultCodecOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var frame io.WriteCloser
	switch o.compression {
	case CompressionZSTD:
		frame, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
	case CompressionLZ4:
		frame = lz4.NewWriter(w)
	}
	if frame != nil {
		defer func() {
			if cerr := frame.Close(); err == nil {
				err = cerr
			}
		}()
		w = frame
	}

	bw := bufio.NewWriterSize(w, 1<<16)
	var buf [nodeHeaderSize]byte

	count := s.Len()
	if count > math.MaxInt32 {
		return fmt.Errorf("graph: %d nodes exceed format limit", count)
	}
	o.order.PutUint32(buf[:4], uint32(count))
	if _, err := bw.Write(buf[:4]); err != nil {
		return err
	}

	for _, id := range s.ids {
		n := s.nodes[id]
		raw, ok := toInt32(id)
		if !ok {
			return fmt.Errorf("node %d: %w", id, ErrIDOutOfRange)
		}

		o.order.PutUint32(buf[0:4], uint32(raw))
		o.order.PutUint64(buf[4:12], math.Float64bits(float64(n.Coord.Lat)))
		o.order.PutUint64(buf[12:20], math.Float64bits(float64(n.Coord.Lon)))
		o.order.PutUint32(buf[20:24], uint32(int32(n.EdgeCount())))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}

		for i, t := range n.Targets {
			raw, ok := toInt32(t)
			if !ok {
				return fmt.Errorf("node %d edge target %d: %w", id, t, ErrIDOutOfRange)
			}
			o.order.PutUint32(buf[0:4], uint32(raw))
			o.order.PutUint64(buf[4:12], math.Float64bits(float64(n.Weights[i])))
			if _, err := bw.Write(buf[:edgeSize]); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// toInt32 maps an id back to the file's signed field, undoing the sign
// extension applied on load.
func toInt32(id NodeID) (int32, bool) {
	v := int64(id)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}
