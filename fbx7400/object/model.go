package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Model is a `Model` node of any subclass (Mesh, LimbNode, Null, ...).
// FbxNode of FBX SDK (2017).
type Model struct {
	ID       int64
	Name     string
	Subclass string
	Version  int32
	// MultiLayer and MultiTake are absent from some exporters.
	MultiLayer *int32
	MultiTake  *int32
	Shading    bool
	Culling    CullingType
	Properties *proptree.Properties
}

// Template returns the property defaults for models.
func (*Model) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("Model", "FbxNode")
}

// LclTranslation resolves the `Lcl Translation` property against defaults.
func (m *Model) LclTranslation(defaults *proptree.Properties) ([3]float64, bool) {
	return m.Properties.LookupF64x3("Lcl Translation", defaults)
}

// LclRotation resolves the `Lcl Rotation` property against defaults.
func (m *Model) LclRotation(defaults *proptree.Properties) ([3]float64, bool) {
	return m.Properties.LookupF64x3("Lcl Rotation", defaults)
}

// LclScaling resolves the `Lcl Scaling` property against defaults.
func (m *Model) LclScaling(defaults *proptree.Properties) ([3]float64, bool) {
	return m.Properties.LookupF64x3("Lcl Scaling", defaults)
}

func (l *Loader) loadModel(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	m := &Model{ID: props.ID, Name: props.Name, Subclass: props.Subclass}
	var haveVersion, haveShading, haveCulling bool

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Version":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			m.Version = v
			haveVersion = true
			return fbx7400.SkipChild(sub)
		case "MultiLayer":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			m.MultiLayer = &v
			return fbx7400.SkipChild(sub)
		case "MultiTake":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			m.MultiTake = &v
			return fbx7400.SkipChild(sub)
		case "Shading":
			v, err := fbx7400.ChildBool(ev)
			if err != nil {
				return err
			}
			m.Shading = v
			haveShading = true
			return fbx7400.SkipChild(sub)
		case "Culling":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			ct, ok := cullingTypeFromString(s)
			if !ok {
				return errors.Wrapf(fbx7400.ErrInvalidAttribute, "node %q: culling type %q", ev.NodeName, s)
			}
			m.Culling = ct
			haveCulling = true
			return fbx7400.SkipChild(sub)
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			m.Properties = p
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Model child %q", ev.NodeName)
		}
	})
	if err != nil {
		return err
	}

	switch {
	case !haveVersion:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Model (subclass=%q) child %q", props.Subclass, "Version")
	case !haveShading:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Model (subclass=%q) child %q", props.Subclass, "Shading")
	case !haveCulling:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Model (subclass=%q) child %q", props.Subclass, "Culling")
	case m.Properties == nil:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Model (subclass=%q) child %q", props.Subclass, "Properties70")
	}
	l.coll.Models[m.ID] = m
	return nil
}

// CullingType is FbxNode::ECullingType of FBX SDK (2017), stored as a
// string child node.
type CullingType int

const (
	CullingOff CullingType = iota
	CullingOnCCW
	CullingOnCW
)

func cullingTypeFromString(s string) (CullingType, bool) {
	switch s {
	case "CullingOff":
		return CullingOff, true
	case "CullingOnCCW":
		return CullingOnCCW, true
	case "CullingOnCW":
		return CullingOnCW, true
	}
	return 0, false
}

// String returns the FBX wire spelling.
func (c CullingType) String() string {
	switch c {
	case CullingOff:
		return "CullingOff"
	case CullingOnCCW:
		return "CullingOnCCW"
	case CullingOnCW:
		return "CullingOnCW"
	}
	return "CullingType(?)"
}
