package pull

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeMagic(buf *bytes.Buffer, version uint32) {
	buf.WriteString(magicText)
	buf.WriteByte(0x1a)
	buf.WriteByte(0x00)
	binary.Write(buf, binary.LittleEndian, version)
}

// writeNodeHeader332 writes a pre-7500 (32-bit field) node header.
func writeNodeHeader332(buf *bytes.Buffer, endOffset, numAttrs, bytelenAttrs uint32, name string) {
	binary.Write(buf, binary.LittleEndian, endOffset)
	binary.Write(buf, binary.LittleEndian, numAttrs)
	binary.Write(buf, binary.LittleEndian, bytelenAttrs)
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
}

func writeNullHeader332(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.WriteByte(0)
}

// writeWellFormedFooter appends a footer with exactly the expected padding,
// following the same layout the parser's readFooter decodes.
func writeWellFormedFooter(buf *bytes.Buffer, version uint32) {
	var unknown1 [16]byte
	buf.Write(unknown1[:])

	pos := uint64(buf.Len())
	padding := int((16 - (pos & 0x0f)) & 0x0f)

	buf.Write(make([]byte, padding))
	buf.Write(make([]byte, 4))
	binary.Write(buf, binary.LittleEndian, version)
	buf.Write(make([]byte, 120))

	var unknown2 [16]byte
	for i := range unknown2 {
		unknown2[i] = 0xAB
	}
	buf.Write(unknown2[:])
}

func TestMinimalDocumentRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writeMagic(&buf, 7400)
	writeNodeHeader332(&buf, 0 /*patched below*/, 0, 0, "Foo")
	// Patch end_offset: node closes with a null header right after the name.
	nodeHeaderStart := uint64(27)
	nameEnd := uint64(buf.Len())
	endOffset := nameEnd + 13 // size of one null header
	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[nodeHeaderStart:], uint32(endOffset))

	writeNullHeader332(&buf) // closes "Foo"
	writeNullHeader332(&buf) // closes implicit root
	writeWellFormedFooter(&buf, 7400)

	p := New(bytes.NewReader(buf.Bytes()))

	ev, err := p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, StartFbx, ev.Kind)
	require.Equal(t, uint32(7400), ev.Version)

	ev, err = p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, StartNode, ev.Kind)
	require.Equal(t, "Foo", ev.NodeName)

	ev, err = p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, EndNode, ev.Kind)

	ev, err = p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, EndFbx, ev.Kind)
	require.NotNil(t, ev.Footer)
	require.Equal(t, uint32(7400), ev.Footer.Version)

	_, err = p.NextEvent()
	require.ErrorIs(t, err, ErrFinished)
}

func TestMagicMismatch(t *testing.T) {
	p := New(bytes.NewReader([]byte("not an fbx file at all..........")))
	_, err := p.NextEvent()
	require.ErrorIs(t, err, ErrMagicMismatch)
}

func TestFooterVersionMismatch(t *testing.T) {
	var buf bytes.Buffer
	writeMagic(&buf, 7400)
	writeNullHeader332(&buf) // closes implicit root immediately
	writeWellFormedFooter(&buf, 7401)

	p := New(bytes.NewReader(buf.Bytes()))
	_, err := p.NextEvent() // StartFbx
	require.NoError(t, err)
	_, err = p.NextEvent() // EndFbx -> footer mismatch
	require.ErrorIs(t, err, ErrHeaderFooterVersionMismatch)
}

func TestSkipCurrentNode(t *testing.T) {
	var buf bytes.Buffer
	writeMagic(&buf, 7400)

	// Outer node "A" containing child "B", both empty; after skipping "A"
	// via SkipCurrentNode, the stream should continue directly at the
	// implicit root's closing null header.
	outerStart := uint64(buf.Len())
	writeNodeHeader332(&buf, 0, 0, 0, "A")
	innerStart := uint64(buf.Len())
	writeNodeHeader332(&buf, 0, 0, 0, "B")
	innerNameEnd := uint64(buf.Len())
	innerEnd := innerNameEnd + 13
	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[innerStart:], uint32(innerEnd))
	writeNullHeader332(&buf) // closes "B"

	outerNameEnd := innerNameEnd
	_ = outerNameEnd
	outerEnd := uint64(buf.Len()) + 13
	raw = buf.Bytes()
	binary.LittleEndian.PutUint32(raw[outerStart:], uint32(outerEnd))
	writeNullHeader332(&buf) // closes "A"
	writeNullHeader332(&buf) // closes implicit root
	writeWellFormedFooter(&buf, 7400)

	p := New(bytes.NewReader(buf.Bytes()))
	_, err := p.NextEvent() // StartFbx
	require.NoError(t, err)
	ev, err := p.NextEvent() // StartNode "A"
	require.NoError(t, err)
	require.Equal(t, "A", ev.NodeName)

	ok, err := p.SkipCurrentNode()
	require.NoError(t, err)
	require.True(t, ok)

	ev, err = p.NextEvent() // EndFbx directly
	require.NoError(t, err)
	require.Equal(t, EndFbx, ev.Kind)
}

// A document with no nodes at all: just the magic, the implicit root's
// closing null header, and a clean footer.
func TestEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	writeMagic(&buf, 7400)
	writeNullHeader332(&buf) // closes implicit root
	writeWellFormedFooter(&buf, 7400)

	p := New(bytes.NewReader(buf.Bytes()))

	ev, err := p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, StartFbx, ev.Kind)
	require.Equal(t, uint32(7400), ev.Version)

	ev, err = p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, EndFbx, ev.Kind)
	require.NotNil(t, ev.Footer)
	require.Empty(t, p.Warnings())
}

// A Subtree stops at its own node's end and never leaks the events of the
// following sibling.
func TestSubtreeContainment(t *testing.T) {
	var buf bytes.Buffer
	writeMagic(&buf, 7400)

	// "A" with child "B", then sibling "C".
	aStart := uint64(buf.Len())
	writeNodeHeader332(&buf, 0, 0, 0, "A")
	bStart := uint64(buf.Len())
	writeNodeHeader332(&buf, 0, 0, 0, "B")
	bEnd := uint64(buf.Len()) + 13
	binary.LittleEndian.PutUint32(buf.Bytes()[bStart:], uint32(bEnd))
	writeNullHeader332(&buf) // closes "B"
	aEnd := uint64(buf.Len()) + 13
	binary.LittleEndian.PutUint32(buf.Bytes()[aStart:], uint32(aEnd))
	writeNullHeader332(&buf) // closes "A"

	cStart := uint64(buf.Len())
	writeNodeHeader332(&buf, 0, 0, 0, "C")
	cEnd := uint64(buf.Len()) + 13
	binary.LittleEndian.PutUint32(buf.Bytes()[cStart:], uint32(cEnd))
	writeNullHeader332(&buf) // closes "C"

	writeNullHeader332(&buf) // closes implicit root
	writeWellFormedFooter(&buf, 7400)

	p := New(bytes.NewReader(buf.Bytes()))
	_, err := p.NextEvent() // StartFbx
	require.NoError(t, err)
	ev, err := p.NextEvent() // StartNode "A"
	require.NoError(t, err)
	require.Equal(t, "A", ev.NodeName)

	sub := p.Subtree()

	ev, err = sub.NextEvent() // StartNode "B"
	require.NoError(t, err)
	require.Equal(t, StartNode, ev.Kind)
	require.Equal(t, "B", ev.NodeName)

	ev, err = sub.NextEvent() // EndNode "B"
	require.NoError(t, err)
	require.Equal(t, EndNode, ev.Kind)

	ev, err = sub.NextEvent() // EndNode "A": last event the view may emit
	require.NoError(t, err)
	require.Equal(t, EndNode, ev.Kind)

	_, err = sub.NextEvent()
	require.ErrorIs(t, err, ErrFinished)
	require.True(t, sub.Finished())

	// The root parser continues unharmed at the sibling.
	ev, err = p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, StartNode, ev.Kind)
	require.Equal(t, "C", ev.NodeName)
}
