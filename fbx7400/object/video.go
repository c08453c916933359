package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Video is a `Video` node with subclass `Clip`: the media an embedding
// texture points at, with the payload optionally inlined in `Content`.
// FbxVideo of FBX SDK (2017).
type Video struct {
	ID   int64
	Name string
	// Type is always "Clip"?
	Type      string
	UseMipMap int32
	// Filename spells `name` with a lower-case n on the wire, unlike
	// Texture's `FileName`.
	Filename         string
	RelativeFilename string
	Content          []byte
	Properties       *proptree.Properties
}

// Template returns the property defaults for videos.
func (*Video) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("Video", "FbxVideo")
}

// Path resolves the `Path` property against defaults.
func (v *Video) Path(defaults *proptree.Properties) (string, bool) {
	return v.Properties.LookupString("Path", defaults)
}

func (l *Loader) loadVideo(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	vid := &Video{ID: props.ID, Name: props.Name}
	var haveType, haveUseMipMap, haveFilename, haveRelative, haveContent bool

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Type":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			vid.Type = s
			haveType = true
		case "UseMipMap":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			vid.UseMipMap = v
			haveUseMipMap = true
		case "Filename":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			vid.Filename = s
			haveFilename = true
		case "RelativeFilename":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			vid.RelativeFilename = s
			haveRelative = true
		case "Content":
			b, err := fbx7400.ChildBytes(ev)
			if err != nil {
				return err
			}
			vid.Content = b
			haveContent = true
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			vid.Properties = p
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Video (subclass=Clip) child %q", ev.NodeName)
		}
		return fbx7400.SkipChild(sub)
	})
	if err != nil {
		return err
	}

	switch {
	case !haveType:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Video (subclass=Clip) child %q", "Type")
	case !haveUseMipMap:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Video (subclass=Clip) child %q", "UseMipMap")
	case !haveFilename:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Video (subclass=Clip) child %q", "Filename")
	case !haveRelative:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Video (subclass=Clip) child %q", "RelativeFilename")
	case !haveContent:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Video (subclass=Clip) child %q", "Content")
	}
	l.coll.Videos[vid.ID] = vid
	return nil
}
