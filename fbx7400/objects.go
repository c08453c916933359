package fbx7400

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/node"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// ObjectProperties is the attribute tuple every `Objects` entry starts
// with: an id and the combined "{name}\x00\x01{class}" pair plus a
// subclass.
type ObjectProperties struct {
	ID       int64
	Name     string
	Class    string
	Subclass string
}

func loadObjectProperties(ev pull.Event) (ObjectProperties, error) {
	id, err := ChildI64(ev)
	if err != nil {
		return ObjectProperties{}, err
	}
	nameClass, subclass, err := ChildStringPair(ev)
	if err != nil {
		return ObjectProperties{}, err
	}
	name, class, ok := SeparateNameClass(nameClass)
	if !ok {
		return ObjectProperties{}, errors.Wrapf(ErrInvalidAttribute,
			"node %q: object name/class %q lacks the separator", ev.NodeName, nameClass)
	}
	return ObjectProperties{ID: id, Name: name, Class: class, Subclass: subclass}, nil
}

func loadObjects[O any](sub *pull.Subtree, loader ObjectsLoader[O], before *NodesBeforeObjects) error {
	return ForEachChild(sub, func(ev pull.Event) error {
		props, err := loadObjectProperties(ev)
		if err != nil {
			return err
		}
		objSub := sub.Root().Subtree()
		if err := loader.LoadObject(ev.NodeName, props, objSub, before); err != nil {
			return err
		}
		// A loader may stop reading once it has what it needs; drain
		// whatever is left of the object's subtree.
		return objSub.SkipToEnd()
	})
}

// GenericObject is one `Objects` entry kept in unstructured form.
type GenericObject struct {
	// NodeName is the wire node name (`Model`, `Deformer`, ...).
	NodeName   string
	Properties ObjectProperties
	Children   []node.Node
}

// GenericObjects materializes every object as a GenericObject, preserving
// unknown object kinds byte-for-byte in tree form. It is the schemaless
// counterpart to the typed loader in package fbx7400/object.
type GenericObjects struct {
	objects []GenericObject
}

var _ ObjectsLoader[[]GenericObject] = (*GenericObjects)(nil)

// LoadObject implements ObjectsLoader.
func (g *GenericObjects) LoadObject(nodeName string, props ObjectProperties, sub *pull.Subtree, _ *NodesBeforeObjects) error {
	children, _, err := node.Load(sub)
	if err != nil {
		return err
	}
	g.objects = append(g.objects, GenericObject{NodeName: nodeName, Properties: props, Children: children})
	return nil
}

// Build implements ObjectsLoader.
func (g *GenericObjects) Build() ([]GenericObject, error) {
	return g.objects, nil
}
