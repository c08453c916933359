package proptree

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lo48576/fbxcel-legacy/pull"
)

const magicText = "Kaydara FBX Binary  \x00"

func writeMagic(b *bytes.Buffer, version uint32) {
	b.WriteString(magicText)
	b.WriteByte(0x1a)
	b.WriteByte(0x00)
	binary.Write(b, binary.LittleEndian, version)
}

func writeNullHeader(b *bytes.Buffer) {
	binary.Write(b, binary.LittleEndian, uint32(0))
	binary.Write(b, binary.LittleEndian, uint32(0))
	binary.Write(b, binary.LittleEndian, uint32(0))
	b.WriteByte(0)
}

func writeWellFormedFooter(b *bytes.Buffer, version uint32) {
	var unknown1 [16]byte
	b.Write(unknown1[:])
	pos := uint64(b.Len())
	padding := int((16 - (pos & 0x0f)) & 0x0f)
	b.Write(make([]byte, padding))
	b.Write(make([]byte, 4))
	binary.Write(b, binary.LittleEndian, version)
	b.Write(make([]byte, 120))
	var unknown2 [16]byte
	for i := range unknown2 {
		unknown2[i] = 0xAB
	}
	b.Write(unknown2[:])
}

// writePNode writes a "P" node whose attribute tuple is
// (name, "", "", "") followed by extra float64 trailing values.
func writePNode(b *bytes.Buffer, name string, extra []float64) {
	var body bytes.Buffer
	writeStringAttr(&body, name)
	writeStringAttr(&body, "")
	writeStringAttr(&body, "")
	writeStringAttr(&body, "")
	for _, f := range extra {
		body.WriteByte('D')
		binary.Write(&body, binary.LittleEndian, f)
	}
	writeGenericNode(b, "P", body.Bytes(), len(extra)+4, nil)
}

func writeStringAttr(b *bytes.Buffer, s string) {
	b.WriteByte('S')
	binary.Write(b, binary.LittleEndian, uint32(len(s)))
	b.WriteString(s)
}

// writeGenericNode writes a node named name with the given raw attribute
// bytes (numAttrs attributes), then lets writeChildren (if non-nil) write
// the child nodes directly into b, so that their end offsets are absolute
// stream positions, and finally writes the node's own closing null header.
func writeGenericNode(b *bytes.Buffer, name string, attrBody []byte, numAttrs int, writeChildren func(*bytes.Buffer)) {
	headerStart := uint64(b.Len())
	binary.Write(b, binary.LittleEndian, uint32(0))
	binary.Write(b, binary.LittleEndian, uint32(numAttrs))
	binary.Write(b, binary.LittleEndian, uint32(len(attrBody)))
	b.WriteByte(byte(len(name)))
	b.WriteString(name)
	b.Write(attrBody)
	if writeChildren != nil {
		writeChildren(b)
	}
	endOffset := uint64(b.Len()) + 13
	raw := b.Bytes()
	binary.LittleEndian.PutUint32(raw[headerStart:], uint32(endOffset))
	writeNullHeader(b)
}

func TestLoadF64x3Property(t *testing.T) {
	var b bytes.Buffer
	writeMagic(&b, 7400)

	writeGenericNode(&b, "Properties70", nil, 0, func(b *bytes.Buffer) {
		writePNode(b, "Lcl Translation", []float64{1, 2, 3})
	})

	writeNullHeader(&b) // closes implicit root
	writeWellFormedFooter(&b, 7400)

	p := pull.New(bytes.NewReader(b.Bytes()))
	_, err := p.NextEvent() // StartFbx
	require.NoError(t, err)
	ev, err := p.NextEvent() // StartNode "Properties70"
	require.NoError(t, err)
	require.Equal(t, "Properties70", ev.NodeName)

	props70, err := Load(p.Subtree(), nil)
	require.NoError(t, err)
	require.Equal(t, [3]float64{1, 2, 3}, props70.F64x3["Lcl Translation"])
}

func TestLoadF64Property(t *testing.T) {
	var b bytes.Buffer
	writeMagic(&b, 7400)

	writeGenericNode(&b, "Properties70", nil, 0, func(b *bytes.Buffer) {
		writePNode(b, "FieldOfView", []float64{45})
	})

	writeNullHeader(&b)
	writeWellFormedFooter(&b, 7400)

	p := pull.New(bytes.NewReader(b.Bytes()))
	_, err := p.NextEvent()
	require.NoError(t, err)
	_, err = p.NextEvent()
	require.NoError(t, err)

	props70, err := Load(p.Subtree(), nil)
	require.NoError(t, err)
	require.Equal(t, 45.0, props70.F64["FieldOfView"])
}

// One leading f64 followed by 15 more lands in the 4x4 matrix slot.
func TestLoadMatrixProperty(t *testing.T) {
	var b bytes.Buffer
	writeMagic(&b, 7400)

	vals := make([]float64, 16)
	for i := range vals {
		vals[i] = float64(i)
	}
	writeGenericNode(&b, "Properties70", nil, 0, func(b *bytes.Buffer) {
		writePNode(b, "DefaultMatrix", vals)
	})

	writeNullHeader(&b)
	writeWellFormedFooter(&b, 7400)

	p := pull.New(bytes.NewReader(b.Bytes()))
	_, err := p.NextEvent()
	require.NoError(t, err)
	_, err = p.NextEvent()
	require.NoError(t, err)

	props70, err := Load(p.Subtree(), nil)
	require.NoError(t, err)
	m, ok := props70.F64x4x4["DefaultMatrix"]
	require.True(t, ok)
	require.Equal(t, 0.0, m[0][0])
	require.Equal(t, 5.0, m[1][1])
	require.Equal(t, 15.0, m[3][3])
}

// Trailing float counts that match no slot shape are an error.
func TestLoadInvalidShapeFails(t *testing.T) {
	var b bytes.Buffer
	writeMagic(&b, 7400)

	writeGenericNode(&b, "Properties70", nil, 0, func(b *bytes.Buffer) {
		writePNode(b, "Bogus", []float64{1, 2, 3, 4, 5})
	})

	writeNullHeader(&b)
	writeWellFormedFooter(&b, 7400)

	p := pull.New(bytes.NewReader(b.Bytes()))
	_, err := p.NextEvent()
	require.NoError(t, err)
	_, err = p.NextEvent()
	require.NoError(t, err)

	_, err = Load(p.Subtree(), nil)
	require.ErrorIs(t, err, ErrInvalidShape)
}

// A string property value with invalid UTF-8 bytes lands in the binary
// slot instead of failing the load.
func TestLoadInvalidUTF8StringFallsBackToBinary(t *testing.T) {
	var b bytes.Buffer
	writeMagic(&b, 7400)

	var body bytes.Buffer
	writeStringAttr(&body, "Comment")
	writeStringAttr(&body, "KString")
	writeStringAttr(&body, "")
	writeStringAttr(&body, "")
	writeStringAttr(&body, "\xff\xfe")

	writeGenericNode(&b, "Properties70", nil, 0, func(b *bytes.Buffer) {
		writeGenericNode(b, "P", body.Bytes(), 5, nil)
	})

	writeNullHeader(&b)
	writeWellFormedFooter(&b, 7400)

	p := pull.New(bytes.NewReader(b.Bytes()))
	_, err := p.NextEvent()
	require.NoError(t, err)
	_, err = p.NextEvent()
	require.NoError(t, err)

	props70, err := Load(p.Subtree(), nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xfe}, props70.Binary["Comment"])
	_, ok := props70.String["Comment"]
	require.False(t, ok)
}
