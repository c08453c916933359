package fbx7400

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// GlobalSettings is the `GlobalSettings` section: a version tag and a
// property bag (axis system, unit scale, time mode, and so on).
type GlobalSettings struct {
	Version    int32
	Properties *proptree.Properties
}

func loadGlobalSettings(sub *pull.Subtree) (*GlobalSettings, error) {
	var gs GlobalSettings
	var haveVersion, haveProperties bool

	err := ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Version":
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			gs.Version = v
			haveVersion = true
			return SkipChild(sub)
		case "Properties70":
			props, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			gs.Properties = props
			haveProperties = true
			return nil
		default:
			return errors.Wrapf(ErrUnexpectedNode, "GlobalSettings child %q", ev.NodeName)
		}
	})
	if err != nil {
		return nil, err
	}

	if !haveVersion {
		return nil, errors.Wrapf(ErrMissingNode, "GlobalSettings child %q", "Version")
	}
	if !haveProperties {
		return nil, errors.Wrapf(ErrMissingNode, "GlobalSettings child %q", "Properties70")
	}
	return &gs, nil
}
