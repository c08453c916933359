package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Skin is a `Deformer` node with subclass `Skin`. FbxSkin of FBX SDK
// (2017).
type Skin struct {
	ID      int64
	Name    string
	Version int32
	// LinkDeformAccuracy comes from the `Link_DeformAcuracy` child; the
	// misspelling is FBX's own.
	LinkDeformAccuracy float64
	// SkinningType is absent from some exporters.
	SkinningType *SkinningType
	Properties   *proptree.Properties
}

// Template returns the property defaults for skins.
func (*Skin) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("Deformer", "FbxSkin")
}

func (l *Loader) loadSkin(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	s := &Skin{ID: props.ID, Name: props.Name}
	var haveVersion, haveAccuracy bool

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Version":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			s.Version = v
			haveVersion = true
			return fbx7400.SkipChild(sub)
		case "Link_DeformAcuracy":
			v, err := fbx7400.ChildF64(ev)
			if err != nil {
				return err
			}
			s.LinkDeformAccuracy = v
			haveAccuracy = true
			return fbx7400.SkipChild(sub)
		case "SkinningType":
			str, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			st, ok := skinningTypeFromString(str)
			if !ok {
				return errors.Wrapf(fbx7400.ErrInvalidAttribute, "node %q: skinning type %q", ev.NodeName, str)
			}
			s.SkinningType = &st
			return fbx7400.SkipChild(sub)
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			s.Properties = p
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Deformer (subclass=Skin) child %q", ev.NodeName)
		}
	})
	if err != nil {
		return err
	}

	if !haveVersion {
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=Skin) child %q", "Version")
	}
	if !haveAccuracy {
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=Skin) child %q", "Link_DeformAcuracy")
	}
	l.coll.Skins[s.ID] = s
	return nil
}

// BlendShape is a `Deformer` node with subclass `BlendShape`. FbxBlendShape
// of FBX SDK (2017).
type BlendShape struct {
	ID         int64
	Name       string
	Version    int32
	Properties *proptree.Properties
}

// Template returns the property defaults for blend shapes.
func (*BlendShape) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("Deformer", "FbxBlendShape")
}

func (l *Loader) loadBlendShape(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	b := &BlendShape{ID: props.ID, Name: props.Name}
	var haveVersion bool

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Version":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			b.Version = v
			haveVersion = true
			return fbx7400.SkipChild(sub)
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			b.Properties = p
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Deformer (subclass=BlendShape) child %q", ev.NodeName)
		}
	})
	if err != nil {
		return err
	}

	if !haveVersion {
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=BlendShape) child %q", "Version")
	}
	l.coll.BlendShapes[b.ID] = b
	return nil
}

// SkinningType is FbxSkin::EType of FBX SDK (2017), stored as a string
// child node.
type SkinningType int

const (
	SkinningRigid SkinningType = iota
	SkinningLinear
	SkinningDualQuaternion
	SkinningBlend
)

func skinningTypeFromString(s string) (SkinningType, bool) {
	switch s {
	case "Rigid":
		return SkinningRigid, true
	case "Linear":
		return SkinningLinear, true
	case "DualQuaternion":
		return SkinningDualQuaternion, true
	case "Blend":
		return SkinningBlend, true
	}
	return 0, false
}

// String returns the FBX wire spelling.
func (s SkinningType) String() string {
	switch s {
	case SkinningRigid:
		return "Rigid"
	case SkinningLinear:
		return "Linear"
	case SkinningDualQuaternion:
		return "DualQuaternion"
	case SkinningBlend:
		return "Blend"
	}
	return "SkinningType(?)"
}
