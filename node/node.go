// Package node implements a generic, fully-materialized tree loader on top
// of pull.Parser, used as a fallback representation for nodes no typed
// schema loader recognizes.
package node

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/attr"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// AttrKind mirrors attr's wire type codes for an already-materialized
// attribute value.
type AttrKind byte

// OwnedAttribute is an attribute value fully read off the wire, independent
// of the parser that produced it.
type OwnedAttribute struct {
	Kind AttrKind

	Bool bool
	I16  int16
	I32  int32
	I64  int64
	F32  float32
	F64  float64

	ArrBool []bool
	ArrI32  []int32
	ArrI64  []int64
	ArrF32  []float32
	ArrF64  []float64

	// String holds the decoded text when the bytes were valid UTF-8; Raw
	// always holds the original bytes (for String, equal to []byte(String)
	// when decoding succeeded; for Binary, the binary payload).
	String string
	Valid  bool
	Raw    []byte
}

func ownedFromValue(v attr.Value) (OwnedAttribute, error) {
	o := OwnedAttribute{Kind: AttrKind(v.Kind)}
	var err error
	switch v.Kind {
	case attr.TypeBool:
		o.Bool = v.Prim.Bool
	case attr.TypeI16:
		o.I16 = v.Prim.I16
	case attr.TypeI32:
		o.I32 = v.Prim.I32
	case attr.TypeI64:
		o.I64 = v.Prim.I64
	case attr.TypeF32:
		o.F32 = v.Prim.F32
	case attr.TypeF64:
		o.F64 = v.Prim.F64
	case attr.TypeArrBool:
		o.ArrBool, err = v.Array.Bools()
	case attr.TypeArrI32:
		o.ArrI32, err = v.Array.I32s()
	case attr.TypeArrI64:
		o.ArrI64, err = v.Array.I64s()
	case attr.TypeArrF32:
		o.ArrF32, err = v.Array.F32s()
	case attr.TypeArrF64:
		o.ArrF64, err = v.Array.F64s()
	case attr.TypeBinary:
		o.Raw = v.Spec.Bytes
	case attr.TypeString:
		o.Raw = v.Spec.Bytes
		if utf8.Valid(v.Spec.Bytes) {
			o.String = string(v.Spec.Bytes)
			o.Valid = true
		}
	}
	return o, err
}

// Node is a fully-materialized FBX node: its name, its attributes, and its
// children, recursively.
type Node struct {
	Name       string
	Attributes []OwnedAttribute
	Children   []Node
}

// Footer is re-exported from pull so callers of Load don't need to import
// both packages just to read the trailing footer value.
type Footer = pull.Footer

// Load recursively materializes every node visible through sub, matching
// the shape of the original document's implicit root (or of whatever
// subtree sub was scoped to).
func Load(sub *pull.Subtree) ([]Node, *Footer, error) {
	var nodes []Node
	var footer *Footer
	for {
		ev, err := sub.NextEvent()
		if errors.Is(err, pull.ErrFinished) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		switch ev.Kind {
		case pull.StartFbx:
			continue
		case pull.EndFbx:
			footer = ev.Footer
			return nodes, footer, nil
		case pull.EndNode:
			return nodes, footer, nil
		case pull.StartNode:
			n, err := loadOne(ev, sub)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, n)
		}
	}
	return nodes, footer, nil
}

func loadOne(start pull.Event, sub *pull.Subtree) (Node, error) {
	n := Node{Name: start.NodeName}
	for start.Attributes.Remaining() > 0 {
		v, err := start.Attributes.Next()
		if err != nil {
			return Node{}, errors.Wrapf(err, "node: reading attribute of %q", n.Name)
		}
		owned, err := ownedFromValue(v)
		if err != nil {
			return Node{}, errors.Wrapf(err, "node: reading attribute of %q", n.Name)
		}
		n.Attributes = append(n.Attributes, owned)
	}
	children, _, err := loadChildren(sub.Root().Subtree())
	if err != nil {
		return Node{}, err
	}
	n.Children = children
	return n, nil
}

func loadChildren(sub *pull.Subtree) ([]Node, *Footer, error) {
	var nodes []Node
	for {
		ev, err := sub.NextEvent()
		if errors.Is(err, pull.ErrFinished) {
			return nodes, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		switch ev.Kind {
		case pull.EndNode:
			return nodes, nil, nil
		case pull.StartNode:
			n, err := loadOne(ev, sub)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, n)
		}
	}
}
