package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Material is a `Material` node with empty subclass. FbxSurfaceMaterial of
// FBX SDK (2017).
type Material struct {
	ID           int64
	Name         string
	Version      int32
	MultiLayer   bool
	ShadingModel ShadingModel
	Properties   *proptree.Properties
}

// Template returns the property defaults for this material's shading
// model, or nil for an unknown model.
func (m *Material) Template(d *fbx7400.Definitions) *proptree.Properties {
	cn := m.ShadingModel.ClassName()
	if cn == "" {
		return nil
	}
	return d.Template("Material", cn)
}

// DiffuseColor resolves the `DiffuseColor` property against defaults.
func (m *Material) DiffuseColor(defaults *proptree.Properties) ([3]float64, bool) {
	return m.Properties.LookupF64x3("DiffuseColor", defaults)
}

// AmbientColor resolves the `AmbientColor` property against defaults.
func (m *Material) AmbientColor(defaults *proptree.Properties) ([3]float64, bool) {
	return m.Properties.LookupF64x3("AmbientColor", defaults)
}

// SpecularColor resolves the `SpecularColor` property against defaults.
func (m *Material) SpecularColor(defaults *proptree.Properties) ([3]float64, bool) {
	return m.Properties.LookupF64x3("SpecularColor", defaults)
}

// EmissiveColor resolves the `EmissiveColor` property against defaults.
func (m *Material) EmissiveColor(defaults *proptree.Properties) ([3]float64, bool) {
	return m.Properties.LookupF64x3("EmissiveColor", defaults)
}

// Shininess resolves the `Shininess` property against defaults.
func (m *Material) Shininess(defaults *proptree.Properties) (float64, bool) {
	return m.Properties.LookupF64("Shininess", defaults)
}

// TransparencyFactor resolves the `TransparencyFactor` property against
// defaults.
func (m *Material) TransparencyFactor(defaults *proptree.Properties) (float64, bool) {
	return m.Properties.LookupF64("TransparencyFactor", defaults)
}

func (l *Loader) loadMaterial(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	m := &Material{ID: props.ID, Name: props.Name}
	var haveVersion, haveMultiLayer, haveShadingModel bool

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Version":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			m.Version = v
			haveVersion = true
			return fbx7400.SkipChild(sub)
		case "MultiLayer":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			m.MultiLayer = v != 0
			haveMultiLayer = true
			return fbx7400.SkipChild(sub)
		case "ShadingModel":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			sm, ok := shadingModelFromString(s)
			if !ok {
				return errors.Wrapf(fbx7400.ErrInvalidAttribute, "node %q: shading model %q", ev.NodeName, s)
			}
			m.ShadingModel = sm
			haveShadingModel = true
			return fbx7400.SkipChild(sub)
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			m.Properties = p
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Material child %q", ev.NodeName)
		}
	})
	if err != nil {
		return err
	}

	switch {
	case !haveVersion:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Material child %q", "Version")
	case !haveMultiLayer:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Material child %q", "MultiLayer")
	case !haveShadingModel:
		return errors.Wrapf(fbx7400.ErrMissingNode, "Material child %q", "ShadingModel")
	}
	l.coll.Materials[m.ID] = m
	return nil
}

// ShadingModel is the material's declared shading model, stored as a
// string child node.
type ShadingModel int

const (
	ShadingLambert ShadingModel = iota
	ShadingPhong
	ShadingUnknown
)

func shadingModelFromString(s string) (ShadingModel, bool) {
	switch s {
	case "lambert", "Lambert":
		return ShadingLambert, true
	case "phong", "Phong":
		return ShadingPhong, true
	case "unknown", "Unknown":
		return ShadingUnknown, true
	}
	return 0, false
}

// ClassName returns the FBX class name used to key the `Definitions`
// template for this model, or "" for ShadingUnknown.
func (s ShadingModel) ClassName() string {
	switch s {
	case ShadingLambert:
		return "FbxSurfaceLambert"
	case ShadingPhong:
		return "FbxSurfacePhong"
	}
	return ""
}

// String returns the FBX wire spelling.
func (s ShadingModel) String() string {
	switch s {
	case ShadingLambert:
		return "lambert"
	case ShadingPhong:
		return "phong"
	case ShadingUnknown:
		return "unknown"
	}
	return "ShadingModel(?)"
}
