package node

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lo48576/fbxcel-legacy/pull"
)

const magicText = "Kaydara FBX Binary  \x00"

func writeMagic(buf *bytes.Buffer, version uint32) {
	buf.WriteString(magicText)
	buf.WriteByte(0x1a)
	buf.WriteByte(0x00)
	binary.Write(buf, binary.LittleEndian, version)
}

func writeNodeHeader(buf *bytes.Buffer, endOffset, numAttrs, bytelenAttrs uint32, name string) {
	binary.Write(buf, binary.LittleEndian, endOffset)
	binary.Write(buf, binary.LittleEndian, numAttrs)
	binary.Write(buf, binary.LittleEndian, bytelenAttrs)
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
}

func writeNullHeader(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.WriteByte(0)
}

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

func TestLoadNestedNodes(t *testing.T) {
	var buf bytes.Buffer
	writeMagic(&buf, 7400)

	outerStart := uint64(buf.Len())
	writeNodeHeader(&buf, 0, 1, 5, "A")
	// One i32 attribute for "A".
	buf.WriteByte('I')
	binary.Write(&buf, binary.LittleEndian, int32(99))

	innerStart := uint64(buf.Len())
	writeNodeHeader(&buf, 0, 0, 0, "B")
	innerNameEnd := uint64(buf.Len())
	innerEnd := innerNameEnd + 13
	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[innerStart:], uint32(innerEnd))
	writeNullHeader(&buf) // closes "B"

	outerEnd := uint64(buf.Len()) + 13
	raw = buf.Bytes()
	binary.LittleEndian.PutUint32(raw[outerStart:], uint32(outerEnd))
	writeNullHeader(&buf) // closes "A"
	writeNullHeader(&buf) // closes implicit root
	writeWellFormedFooter(&buf, 7400)

	p := pull.New(bytes.NewReader(buf.Bytes()))
	_, err := p.NextEvent() // StartFbx
	require.NoError(t, err)

	nodes, footer, err := Load(p.Subtree())
	require.NoError(t, err)
	require.NotNil(t, footer)
	require.Len(t, nodes, 1)
	require.Equal(t, "A", nodes[0].Name)
	require.Len(t, nodes[0].Attributes, 1)
	require.Equal(t, int32(99), nodes[0].Attributes[0].I32)
	require.Len(t, nodes[0].Children, 1)
	require.Equal(t, "B", nodes[0].Children[0].Name)
}

// A string attribute with invalid UTF-8 keeps its raw bytes and reports
// Valid=false instead of being coerced.
func TestLoadInvalidUTF8StringAttribute(t *testing.T) {
	var buf bytes.Buffer
	writeMagic(&buf, 7400)

	nodeStart := uint64(buf.Len())
	writeNodeHeader(&buf, 0, 1, 11, "S")
	buf.WriteByte('S')
	binary.Write(&buf, binary.LittleEndian, uint32(6))
	buf.Write([]byte{'a', 0xff, 0xfe, 0xc0, 'z', 0x80})

	nodeEnd := uint64(buf.Len()) + 13
	binary.LittleEndian.PutUint32(buf.Bytes()[nodeStart:], uint32(nodeEnd))
	writeNullHeader(&buf) // closes "S"
	writeNullHeader(&buf) // closes implicit root
	writeWellFormedFooter(&buf, 7400)

	p := pull.New(bytes.NewReader(buf.Bytes()))
	_, err := p.NextEvent() // StartFbx
	require.NoError(t, err)

	nodes, _, err := Load(p.Subtree())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Attributes, 1)

	a := nodes[0].Attributes[0]
	require.False(t, a.Valid)
	require.Empty(t, a.String)
	require.Equal(t, []byte{'a', 0xff, 0xfe, 0xc0, 'z', 0x80}, a.Raw)
}
