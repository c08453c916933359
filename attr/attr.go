// Package attr decodes FBX node attribute values (the payload that follows a
// node header) off a source.Source cursor.
package attr

import (
	"bytes"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/source"
)

// Type codes as they appear on the wire, one leading byte per attribute.
const (
	TypeBool    = 'C'
	TypeI16     = 'Y'
	TypeI32     = 'I'
	TypeI64     = 'L'
	TypeF32     = 'F'
	TypeF64     = 'D'
	TypeArrBool = 'b'
	TypeArrI32  = 'i'
	TypeArrI64  = 'l'
	TypeArrF32  = 'f'
	TypeArrF64  = 'd'
	TypeBinary  = 'R'
	TypeString  = 'S'
)

// ErrUnknownTypeCode is returned when a leading attribute type byte doesn't
// match any known FBX attribute type.
var ErrUnknownTypeCode = errors.New("attr: unknown attribute type code")

// ErrUnknownArrayEncoding is returned for an array attribute header whose
// encoding field is neither 0 (raw) nor 1 (zlib).
var ErrUnknownArrayEncoding = errors.New("attr: unknown array attribute encoding")

// ErrReaderDetached is returned by an Array whose owning Decoder has moved
// on to the next attribute (or was finished); the unread payload bytes are
// gone.
var ErrReaderDetached = errors.New("attr: array reader detached from its attribute")

// ErrElementTypeMismatch is returned when an Array element read doesn't
// match the array's element type.
var ErrElementTypeMismatch = errors.New("attr: array element type mismatch")

// Primitive holds one scalar (non-array, non-special) attribute value.
type Primitive struct {
	Bool bool
	I16  int16
	I32  int32
	I64  int64
	F32  float32
	F64  float64
	Kind byte // one of TypeBool, TypeI16, TypeI32, TypeI64, TypeF32, TypeF64
}

// AsF32 narrows or passes through a float-kind primitive to float32, the
// lossy direction of the loose float coercions.
func (p Primitive) AsF32() (float32, bool) {
	switch p.Kind {
	case TypeF32:
		return p.F32, true
	case TypeF64:
		return float32(p.F64), true
	}
	return 0, false
}

// AsF64 widens a float-kind primitive to float64.
func (p Primitive) AsF64() (float64, bool) {
	switch p.Kind {
	case TypeF32:
		return float64(p.F32), true
	case TypeF64:
		return p.F64, true
	}
	return 0, false
}

// SpecialKind distinguishes the two length-prefixed "special" attribute
// types: opaque binary blobs and (nominally) UTF-8 strings.
type SpecialKind int

const (
	SpecialBinary SpecialKind = iota
	SpecialString
)

// Special is a length-prefixed string or binary attribute. Bytes holds the
// raw payload; callers decide whether to treat it as UTF-8.
type Special struct {
	Kind  SpecialKind
	Bytes []byte
}

// Reader returns a seekable view over the payload window.
func (s Special) Reader() *bytes.Reader { return bytes.NewReader(s.Bytes) }

// ArrayHeader is the fixed-size header preceding every array attribute's
// payload.
type ArrayHeader struct {
	NumElements     uint32
	Encoding        uint32 // 0 = raw, 1 = zlib
	ByteLenElements uint32
}

func readArrayHeader(src source.Source) (ArrayHeader, error) {
	var h ArrayHeader
	var err error
	if h.NumElements, err = src.ReadU32(); err != nil {
		return h, err
	}
	if h.Encoding, err = src.ReadU32(); err != nil {
		return h, err
	}
	if h.ByteLenElements, err = src.ReadU32(); err != nil {
		return h, err
	}
	return h, nil
}

// Warner receives non-fatal diagnostics discovered while decoding
// attributes (invalid booleans, and so on).
type Warner interface {
	Warn(msg string)
}

// Decoder is a cursor over one node's attribute region. It reads attributes
// one at a time in wire order and keeps enough bookkeeping to forward-skip
// unread attributes (primitives, arrays, or special values) when the parser
// moves on before consuming everything.
type Decoder struct {
	src     source.Source
	warner  Warner
	numAttr uint32
	read    uint32
	// endOffset is the absolute end offset of the attribute currently being
	// read, used to skip past an unread or partially-read array body.
	endOffset uint64
	open      bool
	// cur is the live Array reader handed out by the last Next, invalidated
	// when the cursor moves past it.
	cur *Array
}

// NewDecoder starts a Decoder over numAttributes attributes at the source's
// current position.
func NewDecoder(src source.Source, numAttributes uint32, warner Warner) *Decoder {
	return &Decoder{src: src, warner: warner, numAttr: numAttributes}
}

// Remaining reports how many attributes have not yet been consumed.
func (d *Decoder) Remaining() uint32 { return d.numAttr - d.read }

func (d *Decoder) closeCurrent() error {
	if d.cur != nil {
		d.cur.detached = true
		d.cur = nil
	}
	if d.open {
		if err := d.src.SkipTo(d.endOffset); err != nil {
			return err
		}
		d.open = false
	}
	return nil
}

// Finish forward-skips any attribute left un-consumed (including a
// partially-read array body), leaving the source positioned right after the
// last attribute.
func (d *Decoder) Finish() error {
	if err := d.closeCurrent(); err != nil {
		return err
	}
	for d.read < d.numAttr {
		if _, err := d.Next(); err != nil {
			return err
		}
		if err := d.closeCurrent(); err != nil {
			return err
		}
	}
	return nil
}

// Value is a decoded attribute: exactly one of Prim, Array or Spec is set,
// matching the wire type code that was read.
type Value struct {
	Kind  byte
	Prim  Primitive
	Array *Array
	Spec  Special
}

// Next decodes and returns the next attribute off the cursor. An Array
// value returned by a previous call becomes unusable.
func (d *Decoder) Next() (Value, error) {
	if d.read >= d.numAttr {
		return Value{}, errors.New("attr: no more attributes")
	}
	if err := d.closeCurrent(); err != nil {
		return Value{}, err
	}
	code, err := d.src.ReadU8()
	if err != nil {
		return Value{}, errors.Wrap(err, "attr: read type code")
	}
	d.read++

	switch code {
	case TypeBool:
		raw, err := d.src.ReadU8()
		if err != nil {
			return Value{}, err
		}
		var b bool
		switch raw {
		case 'T':
			b = true
		case 'Y':
			b = false
		default:
			if d.warner != nil {
				d.warner.Warn("attr: non-canonical boolean attribute byte")
			}
			b = (raw & 0x01) == 1
		}
		return Value{Kind: code, Prim: Primitive{Kind: TypeBool, Bool: b}}, nil
	case TypeI16:
		v, err := d.src.ReadI16()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: code, Prim: Primitive{Kind: TypeI16, I16: v}}, nil
	case TypeI32:
		v, err := d.src.ReadI32()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: code, Prim: Primitive{Kind: TypeI32, I32: v}}, nil
	case TypeI64:
		v, err := d.src.ReadI64()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: code, Prim: Primitive{Kind: TypeI64, I64: v}}, nil
	case TypeF32:
		v, err := d.src.ReadF32()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: code, Prim: Primitive{Kind: TypeF32, F32: v}}, nil
	case TypeF64:
		v, err := d.src.ReadF64()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: code, Prim: Primitive{Kind: TypeF64, F64: v}}, nil
	case TypeArrBool, TypeArrI32, TypeArrI64, TypeArrF32, TypeArrF64:
		arr, end, err := d.openArray(code)
		if err != nil {
			return Value{}, err
		}
		d.endOffset = end
		d.open = true
		d.cur = arr
		return Value{Kind: code, Array: arr}, nil
	case TypeString, TypeBinary:
		spec, err := d.readSpecial(code)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: code, Spec: spec}, nil
	default:
		return Value{}, errors.Wrapf(ErrUnknownTypeCode, "attr: code %q at offset %d", code, d.src.Position())
	}
}

func (d *Decoder) readSpecial(code byte) (Special, error) {
	length, err := d.src.ReadU32()
	if err != nil {
		return Special{}, err
	}
	buf := make([]byte, length)
	if err := d.src.ReadExact(buf); err != nil {
		return Special{}, err
	}
	kind := SpecialBinary
	if code == TypeString {
		kind = SpecialString
	}
	return Special{Kind: kind, Bytes: buf}, nil
}

// boundedSource adapts the attribute's payload window to io.Reader for the
// zlib inflater and the raw fast path.
type boundedSource struct {
	src       source.Source
	remaining uint64
}

func (b *boundedSource) Read(p []byte) (int, error) {
	if b.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	if err := b.src.ReadExact(p); err != nil {
		return 0, err
	}
	b.remaining -= uint64(len(p))
	return len(p), nil
}

func elemSize(code byte) int {
	switch code {
	case TypeArrBool:
		return 1
	case TypeArrI32, TypeArrF32:
		return 4
	default:
		return 8
	}
}

func (d *Decoder) openArray(code byte) (*Array, uint64, error) {
	header, err := readArrayHeader(d.src)
	if err != nil {
		return nil, 0, err
	}
	end := d.src.Position() + uint64(header.ByteLenElements)

	var body io.Reader = &boundedSource{src: d.src, remaining: uint64(header.ByteLenElements)}
	switch header.Encoding {
	case 0:
		// raw little-endian, read straight off the source
	case 1:
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, 0, errors.Wrap(err, "attr: open zlib array payload")
		}
		body = zr
	default:
		return nil, 0, errors.Wrapf(ErrUnknownArrayEncoding, "attr: encoding %d", header.Encoding)
	}

	return &Array{Kind: code, Len: header.NumElements, body: body}, end, nil
}

// Array reads one array attribute's elements lazily: payloads can hold
// millions of elements (vertex positions, indices), so nothing is decoded
// until asked for, either one bulk read at a time or all at once. The
// reader is only valid until its Decoder produces the next attribute or the
// parser moves to the next event.
type Array struct {
	// Kind is the array's wire type code ('b', 'i', 'l', 'f', 'd').
	Kind byte
	// Len is the total element count declared by the array header.
	Len uint32

	body     io.Reader
	read     uint32
	detached bool
	scratch  []byte
}

// Remaining reports how many elements have not been read yet.
func (a *Array) Remaining() uint32 { return a.Len - a.read }

// fill reads the wire bytes for n elements into the scratch buffer.
func (a *Array) fill(n int) ([]byte, error) {
	if a.detached {
		return nil, ErrReaderDetached
	}
	byteLen := n * elemSize(a.Kind)
	if cap(a.scratch) < byteLen {
		a.scratch = make([]byte, byteLen)
	}
	buf := a.scratch[:byteLen]
	if _, err := io.ReadFull(a.body, buf); err != nil {
		return nil, errors.Wrap(err, "attr: read array payload")
	}
	a.read += uint32(n)
	return buf, nil
}

func (a *Array) clamp(want int) int {
	if rest := int(a.Remaining()); want > rest {
		return rest
	}
	return want
}

// ReadBools bulk-reads up to len(dst) elements, returning how many were
// produced; 0 means the array is exhausted. Wire bytes are masked with 0x1.
func (a *Array) ReadBools(dst []bool) (int, error) {
	if a.Kind != TypeArrBool {
		return 0, errors.Wrapf(ErrElementTypeMismatch, "want %q, array is %q", TypeArrBool, a.Kind)
	}
	n := a.clamp(len(dst))
	buf, err := a.fill(n)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		dst[i] = (buf[i] & 0x1) == 1
	}
	return n, nil
}

// ReadI32s bulk-reads up to len(dst) int32 elements.
func (a *Array) ReadI32s(dst []int32) (int, error) {
	if a.Kind != TypeArrI32 {
		return 0, errors.Wrapf(ErrElementTypeMismatch, "want %q, array is %q", TypeArrI32, a.Kind)
	}
	n := a.clamp(len(dst))
	buf, err := a.fill(n)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		dst[i] = int32(le32(buf[i*4:]))
	}
	return n, nil
}

// ReadI64s bulk-reads up to len(dst) int64 elements.
func (a *Array) ReadI64s(dst []int64) (int, error) {
	if a.Kind != TypeArrI64 {
		return 0, errors.Wrapf(ErrElementTypeMismatch, "want %q, array is %q", TypeArrI64, a.Kind)
	}
	n := a.clamp(len(dst))
	buf, err := a.fill(n)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		dst[i] = int64(le64(buf[i*8:]))
	}
	return n, nil
}

// ReadF32s bulk-reads up to len(dst) float32 elements.
func (a *Array) ReadF32s(dst []float32) (int, error) {
	if a.Kind != TypeArrF32 {
		return 0, errors.Wrapf(ErrElementTypeMismatch, "want %q, array is %q", TypeArrF32, a.Kind)
	}
	n := a.clamp(len(dst))
	buf, err := a.fill(n)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		dst[i] = math.Float32frombits(le32(buf[i*4:]))
	}
	return n, nil
}

// ReadF64s bulk-reads up to len(dst) float64 elements.
func (a *Array) ReadF64s(dst []float64) (int, error) {
	if a.Kind != TypeArrF64 {
		return 0, errors.Wrapf(ErrElementTypeMismatch, "want %q, array is %q", TypeArrF64, a.Kind)
	}
	n := a.clamp(len(dst))
	buf, err := a.fill(n)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		dst[i] = math.Float64frombits(le64(buf[i*8:]))
	}
	return n, nil
}

// Bools materializes every remaining element.
func (a *Array) Bools() ([]bool, error) {
	out := make([]bool, a.Remaining())
	if _, err := a.ReadBools(out); err != nil {
		return nil, err
	}
	return out, nil
}

// I32s materializes every remaining element.
func (a *Array) I32s() ([]int32, error) {
	out := make([]int32, a.Remaining())
	if _, err := a.ReadI32s(out); err != nil {
		return nil, err
	}
	return out, nil
}

// I64s materializes every remaining element.
func (a *Array) I64s() ([]int64, error) {
	out := make([]int64, a.Remaining())
	if _, err := a.ReadI64s(out); err != nil {
		return nil, err
	}
	return out, nil
}

// F32s materializes every remaining element.
func (a *Array) F32s() ([]float32, error) {
	out := make([]float32, a.Remaining())
	if _, err := a.ReadF32s(out); err != nil {
		return nil, err
	}
	return out, nil
}

// F64s materializes every remaining element.
func (a *Array) F64s() ([]float64, error) {
	out := make([]float64, a.Remaining())
	if _, err := a.ReadF64s(out); err != nil {
		return nil, err
	}
	return out, nil
}

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
