package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Pose is a `Pose` node with subclass `BindPose`. FbxPose of FBX SDK
// (2017).
type Pose struct {
	ID   int64
	Name string
	// Type is always "BindPose"?
	Type    string
	Version int32
	// PoseNodes has exactly `NbPoseNodes` entries; a mismatch fails the
	// load.
	PoseNodes []PoseNode
}

// Template returns the property defaults for poses.
func (*Pose) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("Pose", "FbxPose")
}

// PoseNode is one `PoseNode` child: a node id and its pose matrix.
// FbxPoseInfo of FBX SDK (2017).
type PoseNode struct {
	Node   int64
	Matrix proptree.Matrix4
	// MatrixIsLocal defaults to false because FbxPose::Add() of FBX SDK
	// 2017.1 defaults pLocalMatrix to false.
	MatrixIsLocal bool
}

func (l *Loader) loadPose(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	p := &Pose{ID: props.ID, Name: props.Name}
	var haveType, haveVersion bool
	var nbPoseNodes *int32

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Type":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			p.Type = s
			haveType = true
			return fbx7400.SkipChild(sub)
		case "Version":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			p.Version = v
			haveVersion = true
			return fbx7400.SkipChild(sub)
		case "NbPoseNodes":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			nbPoseNodes = &v
			return fbx7400.SkipChild(sub)
		case "PoseNode":
			pn, err := loadPoseNode(sub.Root().Subtree())
			if err != nil {
				return err
			}
			p.PoseNodes = append(p.PoseNodes, *pn)
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Pose (subclass=BindPose) child %q", ev.NodeName)
		}
	})
	if err != nil {
		return err
	}

	switch {
	case !haveType:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Pose (subclass=BindPose) child %q", "Type")
	case !haveVersion:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Pose (subclass=BindPose) child %q", "Version")
	case nbPoseNodes == nil:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Pose (subclass=BindPose) child %q", "NbPoseNodes")
	case int(*nbPoseNodes) != len(p.PoseNodes):
		return errors.Wrapf(fbx7400.ErrInconsistent,
			"Pose id=%d: NbPoseNodes=%d but %d PoseNode children", p.ID, *nbPoseNodes, len(p.PoseNodes))
	}
	l.coll.Poses[p.ID] = p
	return nil
}

func loadPoseNode(sub *pull.Subtree) (*PoseNode, error) {
	var pn PoseNode
	var haveNode, haveMatrix bool

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Node":
			v, err := fbx7400.ChildI64(ev)
			if err != nil {
				return err
			}
			pn.Node = v
			haveNode = true
		case "Matrix":
			arr, err := fbx7400.ChildF64Slice(ev)
			if err != nil {
				return err
			}
			m, ok := fbx7400.Arr16ToMat4x4(arr)
			if !ok {
				return errors.Wrapf(fbx7400.ErrInvalidAttribute, "node %q: matrix with %d elements", ev.NodeName, len(arr))
			}
			pn.Matrix = m
			haveMatrix = true
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "PoseNode child %q", ev.NodeName)
		}
		return fbx7400.SkipChild(sub)
	})
	if err != nil {
		return nil, err
	}

	if !haveNode {
		return nil, errors.Wrapf(fbx7400.ErrMissingNode, "PoseNode child %q", "Node")
	}
	if !haveMatrix {
		return nil, errors.Wrapf(fbx7400.ErrMissingNode, "PoseNode child %q", "Matrix")
	}
	return &pn, nil
}
