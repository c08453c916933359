package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// DisplayLayer is a `CollectionExclusive` node with class and subclass
// `DisplayLayer`. FbxDisplayLayer of FBX SDK (2017).
type DisplayLayer struct {
	ID         int64
	Name       string
	Properties *proptree.Properties
}

// Template returns the property defaults for display layers.
func (*DisplayLayer) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("CollectionExclusive", "FbxDisplayLayer")
}

// Color resolves the `Color` property against defaults.
func (dl *DisplayLayer) Color(defaults *proptree.Properties) ([3]float64, bool) {
	return dl.Properties.LookupF64x3("Color", defaults)
}

// Show resolves the `Show` property against defaults.
func (dl *DisplayLayer) Show(defaults *proptree.Properties) (bool, bool) {
	v, ok := dl.Properties.LookupI64("Show", defaults)
	return v != 0, ok
}

// Freeze resolves the `Freeze` property against defaults.
func (dl *DisplayLayer) Freeze(defaults *proptree.Properties) (bool, bool) {
	v, ok := dl.Properties.LookupI64("Freeze", defaults)
	return v != 0, ok
}

// LODBox resolves the `LODBox` property against defaults.
func (dl *DisplayLayer) LODBox(defaults *proptree.Properties) (bool, bool) {
	v, ok := dl.Properties.LookupI64("LODBox", defaults)
	return v != 0, ok
}

func (l *Loader) loadDisplayLayer(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	dl := &DisplayLayer{ID: props.ID, Name: props.Name}

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		if ev.NodeName != "Properties70" {
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "DisplayLayer child %q", ev.NodeName)
		}
		p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
		if err != nil {
			return err
		}
		dl.Properties = p
		return nil
	})
	if err != nil {
		return err
	}
	l.coll.DisplayLayers[dl.ID] = dl
	return nil
}
