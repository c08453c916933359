// Package fbxtest synthesizes FBX binary byte streams for tests, so test
// inputs stay readable Go instead of checked-in binary fixtures. Only the
// pre-7500 (32-bit node header) layout is produced.
package fbxtest

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/zlib"
)

const magic = "Kaydara FBX Binary  \x00"

// Attr is one already-encoded attribute (type code byte included).
type Attr []byte

// Node is a node tree to be rendered into FBX binary form.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []Node
}

// N is shorthand for building a Node.
func N(name string, attrs []Attr, children ...Node) Node {
	return Node{Name: name, Attrs: attrs, Children: children}
}

// A collects attributes for N.
func A(attrs ...Attr) []Attr { return attrs }

func Bool(v bool) Attr {
	b := byte('Y')
	if v {
		b = 'T'
	}
	return Attr{'C', b}
}

// RawBool encodes a boolean attribute with an arbitrary payload byte, for
// exercising the non-canonical-boolean leniency.
func RawBool(b byte) Attr { return Attr{'C', b} }

func I16(v int16) Attr {
	var buf bytes.Buffer
	buf.WriteByte('Y')
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func I32(v int32) Attr {
	var buf bytes.Buffer
	buf.WriteByte('I')
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func I64(v int64) Attr {
	var buf bytes.Buffer
	buf.WriteByte('L')
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func F32(v float32) Attr {
	var buf bytes.Buffer
	buf.WriteByte('F')
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func F64(v float64) Attr {
	var buf bytes.Buffer
	buf.WriteByte('D')
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func String(s string) Attr {
	var buf bytes.Buffer
	buf.WriteByte('S')
	binary.Write(&buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
	return buf.Bytes()
}

func Bytes(b []byte) Attr {
	var buf bytes.Buffer
	buf.WriteByte('R')
	binary.Write(&buf, binary.LittleEndian, uint32(len(b)))
	buf.Write(b)
	return buf.Bytes()
}

func I32Array(vs []int32) Attr {
	var body bytes.Buffer
	for _, v := range vs {
		binary.Write(&body, binary.LittleEndian, v)
	}
	return arrayAttr('i', uint32(len(vs)), 0, body.Bytes())
}

func I64Array(vs []int64) Attr {
	var body bytes.Buffer
	for _, v := range vs {
		binary.Write(&body, binary.LittleEndian, v)
	}
	return arrayAttr('l', uint32(len(vs)), 0, body.Bytes())
}

func F32Array(vs []float32) Attr {
	var body bytes.Buffer
	for _, v := range vs {
		binary.Write(&body, binary.LittleEndian, v)
	}
	return arrayAttr('f', uint32(len(vs)), 0, body.Bytes())
}

func F64Array(vs []float64) Attr {
	var body bytes.Buffer
	for _, v := range vs {
		binary.Write(&body, binary.LittleEndian, v)
	}
	return arrayAttr('d', uint32(len(vs)), 0, body.Bytes())
}

// F64ArrayZlib encodes a float64 array with the zlib (encoding 1) payload.
func F64ArrayZlib(vs []float64) Attr {
	var raw bytes.Buffer
	for _, v := range vs {
		binary.Write(&raw, binary.LittleEndian, v)
	}
	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	zw.Write(raw.Bytes())
	zw.Close()
	return arrayAttr('d', uint32(len(vs)), 1, packed.Bytes())
}

func BoolArray(vs []bool) Attr {
	var body bytes.Buffer
	for _, v := range vs {
		if v {
			body.WriteByte(1)
		} else {
			body.WriteByte(0)
		}
	}
	return arrayAttr('b', uint32(len(vs)), 0, body.Bytes())
}

func arrayAttr(code byte, n, encoding uint32, body []byte) Attr {
	var buf bytes.Buffer
	buf.WriteByte(code)
	binary.Write(&buf, binary.LittleEndian, n)
	binary.Write(&buf, binary.LittleEndian, encoding)
	binary.Write(&buf, binary.LittleEndian, uint32(len(body)))
	buf.Write(body)
	return buf.Bytes()
}

// NameClass encodes the combined "{name}\x00\x01{class}" object attribute.
func NameClass(name, class string) Attr {
	return String(name + "\x00\x01" + class)
}

// PropI64 builds a Properties70 "P" child holding an integer value.
func PropI64(name string, v int64) Node {
	return N("P", A(String(name), String("int"), String("Integer"), String(""), I64(v)))
}

// PropF64 builds a Properties70 "P" child holding one double.
func PropF64(name string, v float64) Node {
	return N("P", A(String(name), String("double"), String("Number"), String(""), F64(v)))
}

// PropF64x3 builds a Properties70 "P" child holding a 3-vector.
func PropF64x3(name string, x, y, z float64) Node {
	return N("P", A(String(name), String("Vector3D"), String("Vector"), String(""), F64(x), F64(y), F64(z)))
}

// PropString builds a Properties70 "P" child holding a string value.
func PropString(name, v string) Node {
	return N("P", A(String(name), String("KString"), String(""), String(""), String(v)))
}

// MinimalPrefix returns the smallest legal set of top-level sections
// preceding `Objects`, shared by loader tests.
func MinimalPrefix() []Node {
	return []Node{
		N("FBXHeaderExtension", nil,
			N("FBXHeaderVersion", A(I32(1003))),
			N("FBXVersion", A(I32(7400))),
			N("EncryptionType", A(I32(0))),
			N("CreationTimeStamp", nil,
				N("Version", A(I32(1000))),
				N("Year", A(I32(2017))),
				N("Month", A(I32(5))),
				N("Day", A(I32(1))),
				N("Hour", A(I32(12))),
				N("Minute", A(I32(30))),
				N("Second", A(I32(0))),
				N("Millisecond", A(I32(0)))),
			N("Creator", A(String("fbxtest writer"))),
			N("SceneInfo", A(NameClass("GlobalInfo", "SceneInfo"), String("UserData")),
				N("Type", A(String("UserData"))),
				N("Version", A(I32(100))),
				N("MetaData", nil,
					N("Version", A(I32(100))),
					N("Title", A(String(""))),
					N("Subject", A(String(""))),
					N("Author", A(String(""))),
					N("Keywords", A(String(""))),
					N("Revision", A(String(""))),
					N("Comment", A(String("")))),
				N("Properties70", nil))),
		N("FileId", A(Bytes([]byte{0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2}))),
		N("CreationTime", A(String("2017-05-01 12:30:00:000"))),
		N("Creator", A(String("fbxtest writer"))),
		N("GlobalSettings", nil,
			N("Version", A(I32(1000))),
			N("Properties70", nil, PropF64("UnitScaleFactor", 1))),
		N("Documents", nil, N("Count", A(I32(1)))),
		N("References", nil),
		N("Definitions", nil,
			N("Version", A(I32(100))),
			N("Count", A(I32(0)))),
	}
}

// Doc renders a complete FBX binary stream: magic, version, the given
// top-level nodes, the implicit-root terminator, and a well-formed footer.
func Doc(version uint32, nodes ...Node) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(0x1a)
	buf.WriteByte(0x00)
	binary.Write(&buf, binary.LittleEndian, version)
	for _, n := range nodes {
		writeNode(&buf, n)
	}
	writeNullHeader(&buf)
	writeFooter(&buf, version)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n Node) {
	start := buf.Len()
	// Placeholder header; end_offset patched after the subtree is known.
	var attrBody bytes.Buffer
	for _, a := range n.Attrs {
		attrBody.Write(a)
	}
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(len(n.Attrs)))
	binary.Write(buf, binary.LittleEndian, uint32(attrBody.Len()))
	buf.WriteByte(byte(len(n.Name)))
	buf.WriteString(n.Name)
	buf.Write(attrBody.Bytes())
	for _, c := range n.Children {
		writeNode(buf, c)
	}
	writeNullHeader(buf)
	binary.LittleEndian.PutUint32(buf.Bytes()[start:], uint32(buf.Len()))
}

func writeNullHeader(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.WriteByte(0)
}

func writeFooter(buf *bytes.Buffer, version uint32) {
	var unknown1 [16]byte
	for i := range unknown1 {
		unknown1[i] = 0xF0
	}
	buf.Write(unknown1[:])

	padding := (16 - (buf.Len() & 0x0f)) & 0x0f
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
