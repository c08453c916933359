// Package proptree implements the Properties70 shape-dispatch loader: the
// "P" node convention FBX 7.4+ uses to store a dynamically-typed property
// bag on most object nodes.
package proptree

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/attr"
	"github.com/lo48576/fbxcel-legacy/pull"
	"github.com/lo48576/fbxcel-legacy/value"
)

// Matrix4 is a row-major 4x4 matrix, used for the 16-float64 Properties70
// shape.
type Matrix4 [4][4]float64

// Properties holds every Properties70 entry, bucketed by the shape its
// value attributes took. The bucket is driven purely by how many and which
// attributes follow the property's name/type/label/flags tuple, not by the
// type name string itself.
type Properties struct {
	Empty   map[string]struct{}
	I64     map[string]int64
	F64     map[string]float64
	F64x2   map[string][2]float64
	F64x3   map[string][3]float64
	F64x4   map[string][4]float64
	F64x4x4 map[string]Matrix4
	String  map[string]string
	Binary  map[string][]byte
}

func newProperties() *Properties {
	return &Properties{
		Empty:   make(map[string]struct{}),
		I64:     make(map[string]int64),
		F64:     make(map[string]float64),
		F64x2:   make(map[string][2]float64),
		F64x3:   make(map[string][3]float64),
		F64x4:   make(map[string][4]float64),
		F64x4x4: make(map[string]Matrix4),
		String:  make(map[string]string),
		Binary:  make(map[string][]byte),
	}
}

// F64Default looks up name in p, falling back to def if absent, matching
// the template-default lookup behavior object loaders rely on.
func (p *Properties) F64Default(name string, def *Properties, fallback float64) float64 {
	if p == nil {
		p = &Properties{}
	}
	if v, ok := p.F64[name]; ok {
		return v
	}
	if def != nil {
		if v, ok := def.F64[name]; ok {
			return v
		}
	}
	return fallback
}

// I64Default looks up an integer property, falling back to def then to
// fallback. FBX stores booleans and enum discriminants in this slot.
func (p *Properties) I64Default(name string, def *Properties, fallback int64) int64 {
	if p == nil {
		p = &Properties{}
	}
	if v, ok := p.I64[name]; ok {
		return v
	}
	if def != nil {
		if v, ok := def.I64[name]; ok {
			return v
		}
	}
	return fallback
}

// F64x3Default looks up a 3-vector property, falling back to def then to
// fallback.
func (p *Properties) F64x3Default(name string, def *Properties, fallback [3]float64) [3]float64 {
	if p == nil {
		p = &Properties{}
	}
	if v, ok := p.F64x3[name]; ok {
		return v
	}
	if def != nil {
		if v, ok := def.F64x3[name]; ok {
			return v
		}
	}
	return fallback
}

// StringDefault looks up a string property, falling back to def then to
// fallback.
func (p *Properties) StringDefault(name string, def *Properties, fallback string) string {
	if p == nil {
		p = &Properties{}
	}
	if v, ok := p.String[name]; ok {
		return v
	}
	if def != nil {
		if v, ok := def.String[name]; ok {
			return v
		}
	}
	return fallback
}

// LookupI64 looks up an integer property in p then in def, reporting
// whether either held it.
func (p *Properties) LookupI64(name string, def *Properties) (int64, bool) {
	if p == nil {
		p = &Properties{}
	}
	if v, ok := p.I64[name]; ok {
		return v, true
	}
	if def != nil {
		if v, ok := def.I64[name]; ok {
			return v, true
		}
	}
	return 0, false
}

// LookupF64 looks up a float property in p then in def.
func (p *Properties) LookupF64(name string, def *Properties) (float64, bool) {
	if p == nil {
		p = &Properties{}
	}
	if v, ok := p.F64[name]; ok {
		return v, true
	}
	if def != nil {
		if v, ok := def.F64[name]; ok {
			return v, true
		}
	}
	return 0, false
}

// LookupF64x3 looks up a 3-vector property in p then in def.
func (p *Properties) LookupF64x3(name string, def *Properties) ([3]float64, bool) {
	if p == nil {
		p = &Properties{}
	}
	if v, ok := p.F64x3[name]; ok {
		return v, true
	}
	if def != nil {
		if v, ok := def.F64x3[name]; ok {
			return v, true
		}
	}
	return [3]float64{}, false
}

// LookupString looks up a string property in p then in def.
func (p *Properties) LookupString(name string, def *Properties) (string, bool) {
	if p == nil {
		p = &Properties{}
	}
	if v, ok := p.String[name]; ok {
		return v, true
	}
	if def != nil {
		if v, ok := def.String[name]; ok {
			return v, true
		}
	}
	return "", false
}

// Warner receives non-fatal diagnostics (reused from attr/value/pull, all
// of which implement Warn(string)).
type Warner interface {
	Warn(msg string)
}

// ErrUnexpectedChild is returned when a Properties70 node has a non-"P"
// child, which the format never produces.
var ErrUnexpectedChild = errors.New("proptree: unexpected non-P child of Properties70")

// ErrInvalidShape is returned when a "P" node's trailing attribute count
// doesn't match any recognized Properties70 shape.
var ErrInvalidShape = errors.New("proptree: P node has an unrecognized attribute shape")

// Load reads the children of a "Properties70" node (already entered; sub is
// scoped to that node's subtree) into a Properties bag.
func Load(sub *pull.Subtree, w Warner) (*Properties, error) {
	props := newProperties()
	for {
		ev, err := sub.NextEvent()
		if errors.Is(err, pull.ErrFinished) {
			return props, nil
		}
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case pull.EndNode:
			return props, nil
		case pull.StartNode:
			if ev.NodeName != "P" {
				return nil, errors.Wrapf(ErrUnexpectedChild, "got %q", ev.NodeName)
			}
			if err := loadOne(ev, sub, props, w); err != nil {
				return nil, err
			}
		}
	}
}

func loadOne(ev pull.Event, sub *pull.Subtree, props *Properties, w Warner) error {
	d := ev.Attributes
	if d.Remaining() < 4 {
		return errors.Wrapf(ErrInvalidShape, "P node has only %d attributes", d.Remaining())
	}
	nameV, err := d.Next()
	if err != nil {
		return err
	}
	name, err := value.String(nameV)
	if err != nil {
		return errors.Wrap(err, "proptree: P name")
	}
	// type-name, label, flags: read and discarded.
	for i := 0; i < 3; i++ {
		if _, err := d.Next(); err != nil {
			return err
		}
	}

	if d.Remaining() == 0 {
		props.Empty[name] = struct{}{}
		if _, err := sub.SkipCurrentNode(); err != nil {
			return skipIfFinished(err)
		}
		return nil
	}

	first, err := d.Next()
	if err != nil {
		return err
	}
	switch first.Kind {
	case attr.TypeI16, attr.TypeI32, attr.TypeI64:
		v, err := value.I64Loose(first)
		if err != nil {
			return err
		}
		props.I64[name] = v
	case attr.TypeF32, attr.TypeF64:
		// A float starts an accumulator: the trailing attribute count picks
		// between scalar, vector, and matrix slots.
		f, err := value.F64Loose(first)
		if err != nil {
			return err
		}
		if err := loadRestF64s(d, name, f, props); err != nil {
			return err
		}
	case attr.TypeString:
		// A string value that is not valid UTF-8 is kept as a binary blob
		// rather than failing the whole property bag.
		if utf8.Valid(first.Spec.Bytes) {
			s, err := value.String(first)
			if err != nil {
				return err
			}
			props.String[name] = s
		} else {
			b, err := value.BytesLoose(first)
			if err != nil {
				return err
			}
			props.Binary[name] = b
		}
	case attr.TypeBinary:
		b, err := value.Bytes(first)
		if err != nil {
			return err
		}
		props.Binary[name] = b
	default:
		return errors.Wrapf(ErrInvalidShape, "P %q has unexpected first value type %q", name, first.Kind)
	}

	if _, err := sub.SkipCurrentNode(); err != nil {
		return skipIfFinished(err)
	}
	return nil
}

func skipIfFinished(err error) error {
	if errors.Is(err, pull.ErrFinished) {
		return nil
	}
	return err
}

func loadRestF64s(d *attr.Decoder, name string, first float64, props *Properties) error {
	rest := d.Remaining()
	switch rest {
	case 0:
		props.F64[name] = first
	case 1:
		v, err := readF64Loose(d)
		if err != nil {
			return err
		}
		props.F64x2[name] = [2]float64{first, v}
	case 2:
		vs, err := readF64LooseN(d, 2)
		if err != nil {
			return err
		}
		props.F64x3[name] = [3]float64{first, vs[0], vs[1]}
	case 3:
		vs, err := readF64LooseN(d, 3)
		if err != nil {
			return err
		}
		props.F64x4[name] = [4]float64{first, vs[0], vs[1], vs[2]}
	case 15:
		vs, err := readF64LooseN(d, 15)
		if err != nil {
			return err
		}
		var m Matrix4
		all := append([]float64{first}, vs...)
		for r := 0; r < 4; r++ {
			copy(m[r][:], all[r*4:r*4+4])
		}
		props.F64x4x4[name] = m
	default:
		return errors.Wrapf(ErrInvalidShape, "P %q has %d trailing f64 attributes", name, rest)
	}
	return nil
}

func readF64Loose(d *attr.Decoder) (float64, error) {
	v, err := d.Next()
	if err != nil {
		return 0, err
	}
	return value.F64Loose(v)
}

func readF64LooseN(d *attr.Decoder, n uint32) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := readF64Loose(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
