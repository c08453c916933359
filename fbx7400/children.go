package fbx7400

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/attr"
	"github.com/lo48576/fbxcel-legacy/pull"
	"github.com/lo48576/fbxcel-legacy/value"
)

// Child-attribute readers shared by the section and object loaders. Each
// consumes from the StartNode event's attribute cursor with loose coercion
// and wraps failures with the node name, so a schema error can always name
// the offending child.

func nextAttr(ev pull.Event) (attr.Value, error) {
	if ev.Attributes.Remaining() == 0 {
		return attr.Value{}, errors.Wrapf(ErrInvalidAttribute, "node %q: attribute missing", ev.NodeName)
	}
	v, err := ev.Attributes.Next()
	if err != nil {
		return attr.Value{}, errors.Wrapf(err, "node %q", ev.NodeName)
	}
	return v, nil
}

func invalidAttr(ev pull.Event, err error) error {
	return errors.Wrapf(ErrInvalidAttribute, "node %q: %v", ev.NodeName, err)
}

// ChildString reads the node's next attribute as a UTF-8 string.
func ChildString(ev pull.Event) (string, error) {
	v, err := nextAttr(ev)
	if err != nil {
		return "", err
	}
	s, err := value.String(v)
	if err != nil {
		return "", invalidAttr(ev, err)
	}
	return s, nil
}

// ChildBytes reads the node's next attribute as a binary blob, accepting a
// string special as raw bytes.
func ChildBytes(ev pull.Event) ([]byte, error) {
	v, err := nextAttr(ev)
	if err != nil {
		return nil, err
	}
	b, err := value.BytesLoose(v)
	if err != nil {
		return nil, invalidAttr(ev, err)
	}
	return b, nil
}

// ChildBool reads the node's next attribute as a boolean.
func ChildBool(ev pull.Event) (bool, error) {
	v, err := nextAttr(ev)
	if err != nil {
		return false, err
	}
	b, err := value.Bool(v)
	if err != nil {
		return false, invalidAttr(ev, err)
	}
	return b, nil
}

// ChildI32 reads the node's next attribute as an int32, widening an i16.
func ChildI32(ev pull.Event) (int32, error) {
	v, err := nextAttr(ev)
	if err != nil {
		return 0, err
	}
	n, err := value.I32Loose(v)
	if err != nil {
		return 0, invalidAttr(ev, err)
	}
	return n, nil
}

// ChildI64 reads the node's next attribute as an int64, widening i16/i32.
func ChildI64(ev pull.Event) (int64, error) {
	v, err := nextAttr(ev)
	if err != nil {
		return 0, err
	}
	n, err := value.I64Loose(v)
	if err != nil {
		return 0, invalidAttr(ev, err)
	}
	return n, nil
}

// ChildF64 reads the node's next attribute as a float64, widening an f32.
func ChildF64(ev pull.Event) (float64, error) {
	v, err := nextAttr(ev)
	if err != nil {
		return 0, err
	}
	f, err := value.F64Loose(v)
	if err != nil {
		return 0, invalidAttr(ev, err)
	}
	return f, nil
}

// ChildStringPair reads the node's next two attributes as strings.
func ChildStringPair(ev pull.Event) (string, string, error) {
	a, err := ChildString(ev)
	if err != nil {
		return "", "", err
	}
	b, err := ChildString(ev)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

// ChildI64Pair reads the node's next two attributes as int64s.
func ChildI64Pair(ev pull.Event) (int64, int64, error) {
	a, err := ChildI64(ev)
	if err != nil {
		return 0, 0, err
	}
	b, err := ChildI64(ev)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// ChildF64Pair reads the node's next two attributes as float64s.
func ChildF64Pair(ev pull.Event) (float64, float64, error) {
	a, err := ChildF64(ev)
	if err != nil {
		return 0, 0, err
	}
	b, err := ChildF64(ev)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// ChildI32Quad reads the node's next four attributes as int32s.
func ChildI32Quad(ev pull.Event) ([4]int32, error) {
	var out [4]int32
	for i := range out {
		n, err := ChildI32(ev)
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}

// ChildF64Slice reads the node's next attribute as a []float64 array,
// widening an f32 array.
func ChildF64Slice(ev pull.Event) ([]float64, error) {
	v, err := nextAttr(ev)
	if err != nil {
		return nil, err
	}
	arr, err := value.F64ArrayLoose(v)
	if err != nil {
		return nil, invalidAttr(ev, err)
	}
	return arr, nil
}

// ChildI32Slice reads the node's next attribute as a []int32 array.
func ChildI32Slice(ev pull.Event) ([]int32, error) {
	v, err := nextAttr(ev)
	if err != nil {
		return nil, err
	}
	arr, err := value.I32Array(v)
	if err != nil {
		return nil, invalidAttr(ev, err)
	}
	return arr, nil
}
