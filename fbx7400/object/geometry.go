package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Shape is a `Geometry` node with subclass `Shape`: a morph target holding
// the deltas for the control points it displaces. FbxShape of FBX SDK
// (2017).
type Shape struct {
	ID         int64
	Name       string
	Version    int32
	Indexes    []int32
	Vertices   []float64
	Normals    []float64
	Properties *proptree.Properties
}

// Template returns the property defaults for shapes.
func (*Shape) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("Geometry", "FbxShape")
}

func (l *Loader) loadShape(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	s := &Shape{ID: props.ID, Name: props.Name}
	var haveVersion, haveIndexes, haveVertices, haveNormals bool

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
		case "Indexes":
			arr, err := fbx7400.ChildI32Slice(ev)
			if err != nil {
				return err
			}
			s.Indexes = arr
			haveIndexes = true
			return fbx7400.SkipChild(sub)
		case "Vertices":
			arr, err := fbx7400.ChildF64Slice(ev)
			if err != nil {
				return err
			}
			s.Vertices = arr
			haveVertices = true
			return fbx7400.SkipChild(sub)
		case "Normals":
			arr, err := fbx7400.ChildF64Slice(ev)
			if err != nil {
				return err
			}
			s.Normals = arr
			haveNormals = true
			return fbx7400.SkipChild(sub)
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			s.Properties = p
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Geometry (subclass=Shape) child %q", ev.NodeName)
		}
	})
	if err != nil {
		return err
	}

	switch {
	case !haveVersion:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Geometry (subclass=Shape) child %q", "Version")
	case !haveIndexes:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Geometry (subclass=Shape) child %q", "Indexes")
	case !haveVertices:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Geometry (subclass=Shape) child %q", "Vertices")
	case !haveNormals:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Geometry (subclass=Shape) child %q", "Normals")
	}
	l.coll.Shapes[s.ID] = s
	return nil
}
