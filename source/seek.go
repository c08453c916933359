package source

import (
	"io"
	"math"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Seek wraps an io.ReadSeeker so SkipTo becomes a real seek instead of a
// discard loop.
type Seek struct {
	rs  io.ReadSeeker
	r   *bitio.Reader
	pos uint64
}

// NewSeek builds a SeekSource over a seekable reader, assumed to be
// positioned at offset 0.
func NewSeek(rs io.ReadSeeker) *Seek {
	return &Seek{rs: rs, r: bitio.NewReader(rs)}
}

func (s *Seek) Position() uint64 { return s.pos }

func (s *Seek) ReadExact(buf []byte) error {
	start := s.pos
	for i := range buf {
		c, err := s.r.ReadByte()
		if err != nil {
			return errors.Wrapf(err, "source: read %d bytes at offset %d", len(buf), start)
		}
		buf[i] = c
		s.pos++
	}
	return nil
}

func (s *Seek) SkipTo(dest uint64) error {
	if dest < s.pos {
		return errors.Errorf("source: cannot skip backward from %d to %d", s.pos, dest)
	}
	if _, err := s.rs.Seek(int64(dest), io.SeekStart); err != nil {
		return errors.Wrapf(err, "source: seek to %d", dest)
	}
	s.pos = dest
	s.r = bitio.NewReader(s.rs)
	return nil
}

func (s *Seek) Seek(offset int64, whence int) (int64, error) {
	n, err := s.rs.Seek(offset, whence)
	if err != nil {
		return n, err
	}
	s.pos = uint64(n)
	s.r = bitio.NewReader(s.rs)
	return n, nil
}

func (s *Seek) ReadU8() (uint8, error) {
	var buf [1]byte
	if err := s.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (s *Seek) ReadU32() (uint32, error) {
	var buf [4]byte
	if err := s.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return le32(buf[:]), nil
}

func (s *Seek) ReadU64() (uint64, error) {
	var buf [8]byte
	if err := s.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return le64(buf[:]), nil
}

func (s *Seek) ReadI16() (int16, error) {
	var buf [2]byte
	if err := s.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return int16(le16(buf[:])), nil
}

func (s *Seek) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

func (s *Seek) ReadI64() (int64, error) {
	v, err := s.ReadU64()
	return int64(v), err
}

func (s *Seek) ReadF32() (float32, error) {
	v, err := s.ReadU32()
	return math.Float32frombits(v), err
}

func (s *Seek) ReadF64() (float64, error) {
	v, err := s.ReadU64()
	return math.Float64frombits(v), err
}
