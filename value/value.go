// Package value implements the strict and loose coercion rules that turn a
// decoded attr.Value into a concrete Go type.
package value

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/attr"
)

// ErrTypeMismatch is returned when an attribute's wire type cannot be
// coerced to the requested Go type under the active coercion rule.
var ErrTypeMismatch = errors.New("value: attribute type mismatch")

// ErrInvalidUTF8 is returned by String when a string attribute's bytes are
// not valid UTF-8. Callers that tolerate dirty strings fall back to
// BytesLoose and keep the raw bytes.
var ErrInvalidUTF8 = errors.New("value: string attribute is not valid UTF-8")

// Bool reads a strict bool: only TypeBool is accepted.
func Bool(v attr.Value) (bool, error) {
	if v.Kind == attr.TypeBool {
		return v.Prim.Bool, nil
	}
	return false, errors.Wrapf(ErrTypeMismatch, "want bool, got %q", v.Kind)
}

// I16 reads a strict int16.
func I16(v attr.Value) (int16, error) {
	if v.Kind == attr.TypeI16 {
		return v.Prim.I16, nil
	}
	return 0, errors.Wrapf(ErrTypeMismatch, "want i16, got %q", v.Kind)
}

// I32 reads a strict int32.
func I32(v attr.Value) (int32, error) {
	if v.Kind == attr.TypeI32 {
		return v.Prim.I32, nil
	}
	return 0, errors.Wrapf(ErrTypeMismatch, "want i32, got %q", v.Kind)
}

// I32Loose additionally accepts a narrower i16, widening it.
func I32Loose(v attr.Value) (int32, error) {
	if v.Kind == attr.TypeI16 {
		return int32(v.Prim.I16), nil
	}
	return I32(v)
}

// I64 reads a strict int64.
func I64(v attr.Value) (int64, error) {
	if v.Kind == attr.TypeI64 {
		return v.Prim.I64, nil
	}
	return 0, errors.Wrapf(ErrTypeMismatch, "want i64, got %q", v.Kind)
}

// I64Loose additionally accepts i16 and i32, widening them.
func I64Loose(v attr.Value) (int64, error) {
	switch v.Kind {
	case attr.TypeI16:
		return int64(v.Prim.I16), nil
	case attr.TypeI32:
		return int64(v.Prim.I32), nil
	}
	return I64(v)
}

// F32 reads a strict float32.
func F32(v attr.Value) (float32, error) {
	if v.Kind == attr.TypeF32 {
		return v.Prim.F32, nil
	}
	return 0, errors.Wrapf(ErrTypeMismatch, "want f32, got %q", v.Kind)
}

// F32Loose additionally accepts f64, narrowing it.
func F32Loose(v attr.Value) (float32, error) {
	if f, ok := v.Prim.AsF32(); ok {
		return f, nil
	}
	return F32(v)
}

// F64 reads a strict float64.
func F64(v attr.Value) (float64, error) {
	if v.Kind == attr.TypeF64 {
		return v.Prim.F64, nil
	}
	return 0, errors.Wrapf(ErrTypeMismatch, "want f64, got %q", v.Kind)
}

// F64Loose additionally accepts f32, widening it.
func F64Loose(v attr.Value) (float64, error) {
	if f, ok := v.Prim.AsF64(); ok {
		return f, nil
	}
	return F64(v)
}

// BoolArray reads (materializing) a strict []bool array attribute.
func BoolArray(v attr.Value) ([]bool, error) {
	if v.Kind == attr.TypeArrBool {
		return v.Array.Bools()
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "want bool array, got %q", v.Kind)
}

// I32Array reads (materializing) a strict []int32 array attribute.
func I32Array(v attr.Value) ([]int32, error) {
	if v.Kind == attr.TypeArrI32 {
		return v.Array.I32s()
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "want i32 array, got %q", v.Kind)
}

// I64Array reads (materializing) a strict []int64 array attribute.
func I64Array(v attr.Value) ([]int64, error) {
	if v.Kind == attr.TypeArrI64 {
		return v.Array.I64s()
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "want i64 array, got %q", v.Kind)
}

// I64ArrayLoose additionally accepts an i32 array, widening elementwise.
func I64ArrayLoose(v attr.Value) ([]int64, error) {
	if v.Kind == attr.TypeArrI32 {
		narrow, err := v.Array.I32s()
		if err != nil {
			return nil, err
		}
		out := make([]int64, len(narrow))
		for i, x := range narrow {
			out[i] = int64(x)
		}
		return out, nil
	}
	return I64Array(v)
}

// F32Array reads (materializing) a strict []float32 array attribute.
func F32Array(v attr.Value) ([]float32, error) {
	if v.Kind == attr.TypeArrF32 {
		return v.Array.F32s()
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "want f32 array, got %q", v.Kind)
}

// F64Array reads (materializing) a strict []float64 array attribute.
func F64Array(v attr.Value) ([]float64, error) {
	if v.Kind == attr.TypeArrF64 {
		return v.Array.F64s()
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "want f64 array, got %q", v.Kind)
}

// F64ArrayLoose additionally accepts an f32 array, widening elementwise.
func F64ArrayLoose(v attr.Value) ([]float64, error) {
	if v.Kind == attr.TypeArrF32 {
		narrow, err := v.Array.F32s()
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(narrow))
		for i, x := range narrow {
			out[i] = float64(x)
		}
		return out, nil
	}
	return F64Array(v)
}

// F32ArrayLoose additionally accepts an f64 array, narrowing elementwise.
func F32ArrayLoose(v attr.Value) ([]float32, error) {
	if v.Kind == attr.TypeArrF64 {
		wide, err := v.Array.F64s()
		if err != nil {
			return nil, err
		}
		out := make([]float32, len(wide))
		for i, x := range wide {
			out[i] = float32(x)
		}
		return out, nil
	}
	return F32Array(v)
}

// String reads a strict UTF-8 string from a "special" string attribute,
// failing with ErrInvalidUTF8 when the bytes do not decode.
func String(v attr.Value) (string, error) {
	if v.Kind != attr.TypeString {
		return "", errors.Wrapf(ErrTypeMismatch, "want string, got %q", v.Kind)
	}
	if !utf8.Valid(v.Spec.Bytes) {
		return "", errors.WithStack(ErrInvalidUTF8)
	}
	return string(v.Spec.Bytes), nil
}

// Bytes reads a strict binary blob from a "special" binary attribute.
func Bytes(v attr.Value) ([]byte, error) {
	if v.Kind == attr.TypeBinary {
		return v.Spec.Bytes, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "want binary, got %q", v.Kind)
}

// BytesLoose additionally accepts a string special, treating its raw bytes
// as binary.
func BytesLoose(v attr.Value) ([]byte, error) {
	if v.Kind == attr.TypeString || v.Kind == attr.TypeBinary {
		return v.Spec.Bytes, nil
	}
	return Bytes(v)
}

// Warner is implemented by anything that can record a non-fatal diagnostic,
// mirroring attr.Warner so vector truncation can be reported without
// importing the pull package.
type Warner interface {
	Warn(msg string)
}

// Vec2F64 reads exactly two float64s from an array, loosely coerced,
// warning and truncating/padding if the array length isn't exactly 2.
func Vec2F64(v attr.Value, w Warner) ([2]float64, error) {
	arr, err := F64ArrayLoose(v)
	if err != nil {
		return [2]float64{}, err
	}
	var out [2]float64
	if len(arr) != 2 && w != nil {
		w.Warn("value: expected 2-component vector, got different length")
	}
	copy(out[:], arr)
	return out, nil
}

// Vec3F64 reads exactly three float64s from an array, loosely coerced.
func Vec3F64(v attr.Value, w Warner) ([3]float64, error) {
	arr, err := F64ArrayLoose(v)
	if err != nil {
		return [3]float64{}, err
	}
	var out [3]float64
	if len(arr) != 3 && w != nil {
		w.Warn("value: expected 3-component vector, got different length")
	}
	copy(out[:], arr)
	return out, nil
}
