package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Cluster is a `Deformer` node with class `SubDeformer`, subclass
// `Cluster`. FbxCluster of FBX SDK (2017).
type Cluster struct {
	ID      int64
	Name    string
	Version int32
	// UserData is a (type, data) string pair of unspecified meaning.
	UserData [2]string
	// Indexes and Weights are either both present with equal length or
	// both nil.
	Indexes       []int32
	Weights       []float64
	Transform     proptree.Matrix4
	TransformLink proptree.Matrix4
}

// Template returns the property defaults for clusters.
func (*Cluster) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("Deformer", "FbxCluster")
}

func (l *Loader) loadCluster(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	c := &Cluster{ID: props.ID, Name: props.Name}
	var haveVersion, haveUserData, haveIndexes, haveWeights, haveTransform, haveTransformLink bool

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Version":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			c.Version = v
			haveVersion = true
		case "UserData":
			a, b, err := fbx7400.ChildStringPair(ev)
			if err != nil {
				return err
			}
			c.UserData = [2]string{a, b}
			haveUserData = true
		case "Indexes":
			arr, err := fbx7400.ChildI32Slice(ev)
			if err != nil {
				return err
			}
			c.Indexes = arr
			haveIndexes = true
		case "Weights":
			arr, err := fbx7400.ChildF64Slice(ev)
			if err != nil {
				return err
			}
			c.Weights = arr
			haveWeights = true
		case "Transform":
			arr, err := fbx7400.ChildF64Slice(ev)
			if err != nil {
				return err
			}
			m, ok := fbx7400.Arr16ToMat4x4(arr)
			if !ok {
				return errors.Wrapf(fbx7400.ErrInvalidAttribute, "node %q: matrix with %d elements", ev.NodeName, len(arr))
			}
			c.Transform = m
			haveTransform = true
		case "TransformLink":
			arr, err := fbx7400.ChildF64Slice(ev)
			if err != nil {
				return err
			}
			m, ok := fbx7400.Arr16ToMat4x4(arr)
			if !ok {
				return errors.Wrapf(fbx7400.ErrInvalidAttribute, "node %q: matrix with %d elements", ev.NodeName, len(arr))
			}
			c.TransformLink = m
			haveTransformLink = true
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Deformer (subclass=Cluster) child %q", ev.NodeName)
		}
		return fbx7400.SkipChild(sub)
	})
	if err != nil {
		return err
	}

	switch {
	case haveIndexes && !haveWeights:
		return errors.Wrapf(fbx7400.ErrInconsistent, "Cluster id=%d has `Indexes` but no `Weights`", c.ID)
	case !haveIndexes && haveWeights:
		return errors.Wrapf(fbx7400.ErrInconsistent, "Cluster id=%d has `Weights` but no `Indexes`", c.ID)
	case haveIndexes && len(c.Indexes) != len(c.Weights):
		return errors.Wrapf(fbx7400.ErrInconsistent,
			"Cluster id=%d: len(Indexes)=%d, len(Weights)=%d", c.ID, len(c.Indexes), len(c.Weights))
	case !haveVersion:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=Cluster) child %q", "Version")
	case !haveUserData:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=Cluster) child %q", "UserData")
	case !haveTransform:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=Cluster) child %q", "Transform")
	case !haveTransformLink:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=Cluster) child %q", "TransformLink")
	}
	l.coll.Clusters[c.ID] = c
	return nil
}

// BlendShapeChannel is a `Deformer` node with class `SubDeformer`, subclass
// `BlendShapeChannel`. FbxBlendShapeChannel of FBX SDK (2017).
type BlendShapeChannel struct {
	ID      int64
	Name    string
	Version int32
	// DeformPercent also exists in Properties70; which wins is
	// undocumented.
	DeformPercent float64
	FullWeights   []float64
	Properties    *proptree.Properties
}

// Template returns the property defaults for blend shape channels.
func (*BlendShapeChannel) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("Deformer", "FbxBlendShapeChannel")
}

func (l *Loader) loadBlendShapeChannel(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	b := &BlendShapeChannel{ID: props.ID, Name: props.Name}
	var haveVersion, havePercent, haveWeights bool

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
		case "DeformPercent":
			v, err := fbx7400.ChildF64(ev)
			if err != nil {
				return err
			}
			b.DeformPercent = v
			havePercent = true
			return fbx7400.SkipChild(sub)
		case "FullWeights":
			arr, err := fbx7400.ChildF64Slice(ev)
			if err != nil {
				return err
			}
			b.FullWeights = arr
			haveWeights = true
			return fbx7400.SkipChild(sub)
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			b.Properties = p
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Deformer (subclass=BlendShapeChannel) child %q", ev.NodeName)
		}
	})
	if err != nil {
		return err
	}

	switch {
	case !haveVersion:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=BlendShapeChannel) child %q", "Version")
	case !havePercent:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=BlendShapeChannel) child %q", "DeformPercent")
	case !haveWeights:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Deformer (subclass=BlendShapeChannel) child %q", "FullWeights")
	}
	l.coll.BlendShapeChannels[b.ID] = b
	return nil
}
