package fbx7400

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Definitions is the `Definitions` section: per-object-type property
// templates keyed first by FBX object type, then by FBX class name.
type Definitions struct {
	Version int32
	// Count is a reference count of some sort; its exact meaning is
	// undocumented.
	Count       int32
	ObjectTypes map[string]*ObjectType
}

// ObjectType is one `ObjectType` record inside `Definitions`.
type ObjectType struct {
	ObjectType string
	// Count is a reference count of some sort; its exact meaning is
	// undocumented.
	Count int32
	// PropertyTemplate maps an FBX class name (`FbxNode`,
	// `FbxSurfaceLambert`, ...) to its default property bag.
	PropertyTemplate map[string]*proptree.Properties
}

// Template resolves the default property bag for (objectType, className),
// returning nil when either level of the indirection is absent.
func (d *Definitions) Template(objectType, className string) *proptree.Properties {
	if d == nil {
		return nil
	}
	ot, ok := d.ObjectTypes[objectType]
	if !ok {
		return nil
	}
	return ot.PropertyTemplate[className]
}

func loadDefinitions(sub *pull.Subtree) (*Definitions, error) {
	defs := &Definitions{ObjectTypes: make(map[string]*ObjectType)}
	var haveVersion, haveCount bool

	err := ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Version":
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			defs.Version = v
			haveVersion = true
			return SkipChild(sub)
		case "Count":
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			defs.Count = v
			haveCount = true
			return SkipChild(sub)
		case "ObjectType":
			ot, err := loadObjectType(ev, sub.Root().Subtree())
			if err != nil {
				return err
			}
			defs.ObjectTypes[ot.ObjectType] = ot
			return nil
		default:
			return errors.Wrapf(ErrUnexpectedNode, "Definitions child %q", ev.NodeName)
		}
	})
	if err != nil {
		return nil, err
	}

	if !haveVersion {
		return nil, errors.Wrapf(ErrMissingNode, "Definitions child %q", "Version")
	}
	if !haveCount {
		return nil, errors.Wrapf(ErrMissingNode, "Definitions child %q", "Count")
	}
	return defs, nil
}

func loadObjectType(start pull.Event, sub *pull.Subtree) (*ObjectType, error) {
	name, err := ChildString(start)
	if err != nil {
		return nil, err
	}
	ot := &ObjectType{ObjectType: name, PropertyTemplate: make(map[string]*proptree.Properties)}
	var haveCount bool

	err = ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Count":
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			ot.Count = v
			haveCount = true
			return SkipChild(sub)
		case "PropertyTemplate":
			className, err := ChildString(ev)
			if err != nil {
				return err
			}
			props, err := loadPropertyTemplate(sub.Root().Subtree())
			if err != nil {
				return err
			}
			ot.PropertyTemplate[className] = props
			return nil
		default:
			return errors.Wrapf(ErrUnexpectedNode, "ObjectType child %q", ev.NodeName)
		}
	})
	if err != nil {
		return nil, err
	}

	if !haveCount {
		return nil, errors.Wrapf(ErrMissingNode, "ObjectType child %q", "Count")
	}
	return ot, nil
}

func loadPropertyTemplate(sub *pull.Subtree) (*proptree.Properties, error) {
	var props *proptree.Properties

	err := ForEachChild(sub, func(ev pull.Event) error {
		if ev.NodeName != "Properties70" {
			return errors.Wrapf(ErrUnexpectedNode, "PropertyTemplate child %q", ev.NodeName)
		}
		p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
		if err != nil {
			return err
		}
		props = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if props == nil {
		return nil, errors.Wrapf(ErrMissingNode, "PropertyTemplate child %q", "Properties70")
	}
	return props, nil
}
