package attr

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lo48576/fbxcel-legacy/source"
)

func TestDecodePrimitives(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(TypeBool)
	buf.WriteByte('Y')
	buf.WriteByte(TypeI32)
	binary.Write(&buf, binary.LittleEndian, int32(42))
	buf.WriteByte(TypeF64)
	binary.Write(&buf, binary.LittleEndian, float64(3.5))

	src := source.NewBasic(bytes.NewReader(buf.Bytes()))
	d := NewDecoder(src, 3, nil)

	v, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, byte(TypeBool), v.Kind)
	require.False(t, v.Prim.Bool)

	v, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, int32(42), v.Prim.I32)

	v, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, 3.5, v.Prim.F64)

	require.Zero(t, d.Remaining())
}

func TestDecodeZlibArray(t *testing.T) {
	var payload bytes.Buffer
	for _, f := range []float64{1, 2, 3} {
		binary.Write(&payload, binary.LittleEndian, f)
	}
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(payload.Bytes())
	zw.Close()

	var buf bytes.Buffer
	buf.WriteByte(TypeArrF64)
	binary.Write(&buf, binary.LittleEndian, uint32(3))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, uint32(compressed.Len()))
	buf.Write(compressed.Bytes())

	src := source.NewBasic(bytes.NewReader(buf.Bytes()))
	d := NewDecoder(src, 1, nil)
	v, err := d.Next()
	require.NoError(t, err)
	got, err := v.Array.F64s()
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, got)
}

// A zlib-packed array of 1000 zeroes read in two bulk chunks: a 500-slot
// buffer fills completely and leaves the other 500 elements readable.
func TestBulkReadZlibArrayInChunks(t *testing.T) {
	var payload bytes.Buffer
	for i := 0; i < 1000; i++ {
		binary.Write(&payload, binary.LittleEndian, float64(0))
	}
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(payload.Bytes())
	zw.Close()

	var buf bytes.Buffer
	buf.WriteByte(TypeArrF64)
	binary.Write(&buf, binary.LittleEndian, uint32(1000))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, uint32(compressed.Len()))
	buf.Write(compressed.Bytes())

	src := source.NewBasic(bytes.NewReader(buf.Bytes()))
	d := NewDecoder(src, 1, nil)
	v, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, uint32(1000), v.Array.Len)

	half := make([]float64, 500)
	n, err := v.Array.ReadF64s(half)
	require.NoError(t, err)
	require.Equal(t, 500, n)
	require.Equal(t, uint32(500), v.Array.Remaining())

	rest, err := v.Array.F64s()
	require.NoError(t, err)
	require.Len(t, rest, 500)
	for _, f := range rest {
		require.Zero(t, f)
	}
	require.Zero(t, v.Array.Remaining())
}

// Moving the decoder past a live array reader detaches it.
func TestArrayReaderDetachedAfterNext(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(TypeArrI32)
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(8))
	binary.Write(&buf, binary.LittleEndian, int32(1))
	binary.Write(&buf, binary.LittleEndian, int32(2))
	buf.WriteByte(TypeI32)
	binary.Write(&buf, binary.LittleEndian, int32(7))

	src := source.NewBasic(bytes.NewReader(buf.Bytes()))
	d := NewDecoder(src, 2, nil)
	v, err := d.Next()
	require.NoError(t, err)
	arr := v.Array

	v, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, int32(7), v.Prim.I32)

	_, err = arr.I32s()
	require.ErrorIs(t, err, ErrReaderDetached)
}

func TestFinishSkipsUnreadAttribute(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(TypeString)
	binary.Write(&buf, binary.LittleEndian, uint32(5))
	buf.WriteString("hello")
	buf.WriteByte(TypeI32)
	binary.Write(&buf, binary.LittleEndian, int32(7))

	src := source.NewBasic(bytes.NewReader(buf.Bytes()))
	d := NewDecoder(src, 2, nil)
	require.NoError(t, d.Finish())
	require.Equal(t, uint64(buf.Len()), src.Position())
}

type collectWarner struct{ msgs []string }

func (w *collectWarner) Warn(msg string) { w.msgs = append(w.msgs, msg) }

func TestInvalidBooleanWarns(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(TypeBool)
	buf.WriteByte(0x00)

	w := &collectWarner{}
	src := source.NewBasic(bytes.NewReader(buf.Bytes()))
	d := NewDecoder(src, 1, w)
	v, err := d.Next()
	require.NoError(t, err)
	require.False(t, v.Prim.Bool)
	require.Len(t, w.msgs, 1)
}
