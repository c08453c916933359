// Package source provides position-tracked, little-endian byte readers over
// an underlying io.Reader, used as the innermost layer of the FBX binary
// pull parser.
package source

import (
	"io"
	"math"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Source is the minimal read surface the pull parser needs: sequential,
// position-tracked, little-endian primitive reads plus a forward-only skip.
type Source interface {
	// Position returns the number of bytes consumed so far.
	Position() uint64
	// ReadExact fills buf entirely or returns an error.
	ReadExact(buf []byte) error
	// SkipTo advances the stream to the given absolute position. dest must
	// not be smaller than Position().
	SkipTo(dest uint64) error

	ReadU8() (uint8, error)
	ReadU32() (uint32, error)
	ReadU64() (uint64, error)
	ReadI16() (int16, error)
	ReadI32() (int32, error)
	ReadI64() (int64, error)
	ReadF32() (float32, error)
	ReadF64() (float64, error)
}

// SeekSource is a Source additionally capable of seeking, used when the
// caller supplies an io.ReadSeeker so SkipTo need not discard bytes.
type SeekSource interface {
	Source
	io.Seeker
}

const discardChunk = 256

// Basic wraps any io.Reader. SkipTo discards bytes by reading and throwing
// them away in fixed-size chunks, since a plain io.Reader cannot seek.
type Basic struct {
	r   *bitio.Reader
	pos uint64
}

// NewBasic builds a Source over an arbitrary io.Reader.
func NewBasic(r io.Reader) *Basic {
	return &Basic{r: bitio.NewReader(r)}
}

func (b *Basic) Position() uint64 { return b.pos }

func (b *Basic) ReadExact(buf []byte) error {
	start := b.pos
	for i := range buf {
		c, err := b.r.ReadByte()
		if err != nil {
			return errors.Wrapf(err, "source: read %d bytes at offset %d", len(buf), start)
		}
		buf[i] = c
		b.pos++
	}
	return nil
}

func (b *Basic) SkipTo(dest uint64) error {
	if dest < b.pos {
		return errors.Errorf("source: cannot skip backward from %d to %d", b.pos, dest)
	}
	remaining := dest - b.pos
	buf := make([]byte, discardChunk)
	for remaining > 0 {
		n := discardChunk
		if remaining < discardChunk {
			n = int(remaining)
		}
		if err := b.ReadExact(buf[:n]); err != nil {
			return err
		}
		remaining -= uint64(n)
	}
	return nil
}

func (b *Basic) ReadU8() (uint8, error) {
	var buf [1]byte
	if err := b.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (b *Basic) ReadU32() (uint32, error) {
	var buf [4]byte
	if err := b.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return le32(buf[:]), nil
}

func (b *Basic) ReadU64() (uint64, error) {
	var buf [8]byte
	if err := b.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return le64(buf[:]), nil
}

func (b *Basic) ReadI16() (int16, error) {
	var buf [2]byte
	if err := b.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return int16(le16(buf[:])), nil
}

func (b *Basic) ReadI32() (int32, error) {
	v, err := b.ReadU32()
	return int32(v), err
}

func (b *Basic) ReadI64() (int64, error) {
	v, err := b.ReadU64()
	return int64(v), err
}

func (b *Basic) ReadF32() (float32, error) {
	v, err := b.ReadU32()
	return math.Float32frombits(v), err
}

func (b *Basic) ReadF64() (float64, error) {
	v, err := b.ReadU64()
	return math.Float64frombits(v), err
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func le64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
