package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// AnimationCurveNode is an `AnimationCurveNode` node with class
// `AnimCurveNode`. FbxAnimCurveNode of FBX SDK (2017).
type AnimationCurveNode struct {
	ID         int64
	Name       string
	Properties *proptree.Properties
}

// Template returns the property defaults for animation curve nodes.
func (*AnimationCurveNode) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("AnimationCurveNode", "FbxAnimCurveNode")
}

// DX resolves the `d|X` channel default against defaults.
func (a *AnimationCurveNode) DX(defaults *proptree.Properties) (float64, bool) {
	return a.Properties.LookupF64("d|X", defaults)
}

// DY resolves the `d|Y` channel default against defaults.
func (a *AnimationCurveNode) DY(defaults *proptree.Properties) (float64, bool) {
	return a.Properties.LookupF64("d|Y", defaults)
}

// DZ resolves the `d|Z` channel default against defaults.
func (a *AnimationCurveNode) DZ(defaults *proptree.Properties) (float64, bool) {
	return a.Properties.LookupF64("d|Z", defaults)
}

// AnimationLayer is an `AnimationLayer` node with class `AnimLayer`.
// FbxAnimLayer of FBX SDK (2017).
type AnimationLayer struct {
	ID         int64
	Name       string
	Properties *proptree.Properties
}

// Template returns the property defaults for animation layers.
func (*AnimationLayer) Template(d *fbx7400.Definitions) *proptree.Properties {
	return d.Template("AnimationLayer", "FbxAnimLayer")
}

// Weight resolves the `Weight` property against defaults.
func (a *AnimationLayer) Weight(defaults *proptree.Properties) (float64, bool) {
	return a.Properties.LookupF64("Weight", defaults)
}

// Mute resolves the `Mute` property against defaults.
func (a *AnimationLayer) Mute(defaults *proptree.Properties) (bool, bool) {
	v, ok := a.Properties.LookupI64("Mute", defaults)
	return v != 0, ok
}

// Solo resolves the `Solo` property against defaults.
func (a *AnimationLayer) Solo(defaults *proptree.Properties) (bool, bool) {
	v, ok := a.Properties.LookupI64("Solo", defaults)
	return v != 0, ok
}

// Lock resolves the `Lock` property against defaults.
func (a *AnimationLayer) Lock(defaults *proptree.Properties) (bool, bool) {
	v, ok := a.Properties.LookupI64("Lock", defaults)
	return v != 0, ok
}

// Color resolves the `Color` property against defaults.
func (a *AnimationLayer) Color(defaults *proptree.Properties) ([3]float64, bool) {
	return a.Properties.LookupF64x3("Color", defaults)
}

// BlendMode resolves the `BlendMode` property against defaults.
func (a *AnimationLayer) BlendMode(defaults *proptree.Properties) (LayerBlendMode, bool) {
	v, ok := a.Properties.LookupI64("BlendMode", defaults)
	if !ok {
		return 0, false
	}
	return layerBlendModeFromI64(v)
}

// RotationAccumulationMode resolves the `RotationAccumulationMode`
// property against defaults.
func (a *AnimationLayer) RotationAccumulationMode(defaults *proptree.Properties) (RotationAccumulationMode, bool) {
	v, ok := a.Properties.LookupI64("RotationAccumulationMode", defaults)
	if !ok {
		return 0, false
	}
	return rotationAccumulationModeFromI64(v)
}

// ScaleAccumulationMode resolves the `ScaleAccumulationMode` property
// against defaults.
func (a *AnimationLayer) ScaleAccumulationMode(defaults *proptree.Properties) (ScaleAccumulationMode, bool) {
	v, ok := a.Properties.LookupI64("ScaleAccumulationMode", defaults)
	if !ok {
		return 0, false
	}
	return scaleAccumulationModeFromI64(v)
}

// loadPropertiesOnly reads the (Properties70?) shape shared by the
// animation object kinds.
func loadPropertiesOnly(sub *pull.Subtree, what string) (*proptree.Properties, error) {
	var props *proptree.Properties

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		if ev.NodeName != "Properties70" {
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "%s child %q", what, ev.NodeName)
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
	return props, nil
}

func (l *Loader) loadAnimationCurveNode(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	p, err := loadPropertiesOnly(sub, "AnimationCurveNode")
	if err != nil {
		return err
	}
	l.coll.AnimationCurveNodes[props.ID] = &AnimationCurveNode{ID: props.ID, Name: props.Name, Properties: p}
	return nil
}

func (l *Loader) loadAnimationLayer(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	p, err := loadPropertiesOnly(sub, "AnimationLayer")
	if err != nil {
		return err
	}
	l.coll.AnimationLayers[props.ID] = &AnimationLayer{ID: props.ID, Name: props.Name, Properties: p}
	return nil
}

// LayerBlendMode is FbxAnimLayer::EBlendMode of FBX SDK (2017), stored as
// an integer property.
type LayerBlendMode int64

const (
	LayerBlendAdditive            LayerBlendMode = 0
	LayerBlendOverride            LayerBlendMode = 1
	LayerBlendOverridePassthrough LayerBlendMode = 2
)

func layerBlendModeFromI64(v int64) (LayerBlendMode, bool) {
	if v < int64(LayerBlendAdditive) || v > int64(LayerBlendOverridePassthrough) {
		return 0, false
	}
	return LayerBlendMode(v), true
}

// RotationAccumulationMode is FbxAnimLayer::ERotationAccumulationMode of
// FBX SDK (2017).
type RotationAccumulationMode int64

const (
	RotationByLayer   RotationAccumulationMode = 0
	RotationByChannel RotationAccumulationMode = 1
)

func rotationAccumulationModeFromI64(v int64) (RotationAccumulationMode, bool) {
	switch RotationAccumulationMode(v) {
	case RotationByLayer, RotationByChannel:
		return RotationAccumulationMode(v), true
	}
	return 0, false
}

// ScaleAccumulationMode is FbxAnimLayer::EScaleAccumulationMode of FBX SDK
// (2017).
type ScaleAccumulationMode int64

const (
	ScaleMultiply ScaleAccumulationMode = 0
	ScaleAdditive ScaleAccumulationMode = 1
)

func scaleAccumulationModeFromI64(v int64) (ScaleAccumulationMode, bool) {
	switch ScaleAccumulationMode(v) {
	case ScaleMultiply, ScaleAdditive:
		return ScaleAccumulationMode(v), true
	}
	return 0, false
}
