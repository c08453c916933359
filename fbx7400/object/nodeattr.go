package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Null is a `NodeAttribute` node with subclass `Null`. FbxNull of FBX SDK
// (2017).
type Null struct {
	ID   int64
	Name string
	// TypeFlags is always "Null"?
	TypeFlags  string
	Properties *proptree.Properties
}

// Template returns the property defaults for null node attributes.
func (*Null) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("NodeAttribute", "FbxNull")
}

// Color resolves the `Color` property against defaults.
func (n *Null) Color(defaults *proptree.Properties) ([3]float64, bool) {
	return n.Properties.LookupF64x3("Color", defaults)
}

// Look resolves the `Look` property against defaults.
func (n *Null) Look(defaults *proptree.Properties) (NullLook, bool) {
	v, ok := n.Properties.LookupI64("Look", defaults)
	if !ok {
		return 0, false
	}
	return nullLookFromI64(v)
}

// Size resolves the `Size` property against defaults.
func (n *Null) Size(defaults *proptree.Properties) (float64, bool) {
	return n.Properties.LookupF64("Size", defaults)
}

// Skeleton is a `NodeAttribute` node with subclass `LimbNode`. FbxSkeleton
// of FBX SDK (2017).
type Skeleton struct {
	ID   int64
	Name string
	// TypeFlags is always "Skeleton"?
	TypeFlags  string
	Properties *proptree.Properties
}

// Template returns the property defaults for skeleton node attributes.
func (*Skeleton) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("NodeAttribute", "FbxSkeleton")
}

// Size resolves the `Size` property against defaults.
func (s *Skeleton) Size(defaults *proptree.Properties) (float64, bool) {
	return s.Properties.LookupF64("Size", defaults)
}

// loadNodeAttribute reads the shared (TypeFlags, Properties70) shape of
// `NodeAttribute` nodes.
func loadNodeAttribute(sub *pull.Subtree, subclass string) (typeFlags string, props *proptree.Properties, err error) {
	var haveTypeFlags bool

	err = fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "TypeFlags":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			typeFlags = s
			haveTypeFlags = true
			return fbx7400.SkipChild(sub)
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			props = p
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "NodeAttribute (subclass=%q) child %q", subclass, ev.NodeName)
		}
	})
	if err != nil {
		return "", nil, err
	}

	if !haveTypeFlags {
		return "", nil, errors.Wrapf(fbx7400.ErrMissingNode, "NodeAttribute (subclass=%q) child %q", subclass, "TypeFlags")
	}
	if props == nil {
		return "", nil, errors.Wrapf(fbx7400.ErrMissingNode, "NodeAttribute (subclass=%q) child %q", subclass, "Properties70")
	}
	return typeFlags, props, nil
}

func (l *Loader) loadNull(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	typeFlags, p, err := loadNodeAttribute(sub, props.Subclass)
	if err != nil {
		return err
	}
	l.coll.Nulls[props.ID] = &Null{ID: props.ID, Name: props.Name, TypeFlags: typeFlags, Properties: p}
	return nil
}

func (l *Loader) loadSkeleton(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	typeFlags, p, err := loadNodeAttribute(sub, props.Subclass)
	if err != nil {
		return err
	}
	l.coll.Skeletons[props.ID] = &Skeleton{ID: props.ID, Name: props.Name, TypeFlags: typeFlags, Properties: p}
	return nil
}

// NullLook is FbxNull::ELook of FBX SDK (2017), stored as an integer
// property.
type NullLook int64

const (
	NullLookNone  NullLook = 0
	NullLookCross NullLook = 1
)

func nullLookFromI64(v int64) (NullLook, bool) {
	switch NullLook(v) {
	case NullLookNone, NullLookCross:
		return NullLook(v), true
	}
	return 0, false
}
