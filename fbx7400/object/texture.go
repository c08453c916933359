package object

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Texture is a `Texture` node with empty subclass. FbxTexture of FBX SDK
// (2017).
type Texture struct {
	ID          int64
	Name        string
	Type        string
	Version     int32
	TextureName string
	Media       string
	// FileName spells `Name` with a capital N on the wire,
	// RelativeFilename with a lower-case one. Both spellings are FBX's own.
	FileName           string
	RelativeFilename   string
	ModelUVTranslation [2]float64
	ModelUVScaling     [2]float64
	// TextureAlphaSource appears unused by exporters ("None"?).
	TextureAlphaSource string
	Cropping           [4]int32
	Properties         *proptree.Properties
}

// Template returns the property defaults for textures.
func (*Texture) Template(d *fbx7400.Definitions) *proptree.Properties {
	// FbxFileTexture is assumed; procedural textures are not dispatched
	// here.
	return d.Template("Texture", "FbxFileTexture")
}

// BlendMode resolves the `CurrentTextureBlendMode` property against
// defaults.
func (t *Texture) BlendMode(defaults *proptree.Properties) (BlendMode, bool) {
	v, ok := t.Properties.LookupI64("CurrentTextureBlendMode", defaults)
	if !ok {
		return 0, false
	}
	return blendModeFromI64(v)
}

// UVSet resolves the `UVSet` property against defaults.
func (t *Texture) UVSet(defaults *proptree.Properties) (string, bool) {
	return t.Properties.LookupString("UVSet", defaults)
}

// UseMaterial resolves the `UseMaterial` property against defaults.
func (t *Texture) UseMaterial(defaults *proptree.Properties) (bool, bool) {
	v, ok := t.Properties.LookupI64("UseMaterial", defaults)
	return v != 0, ok
}

func (l *Loader) loadTexture(_ string, props fbx7400.ObjectProperties, sub *pull.Subtree, _ *fbx7400.NodesBeforeObjects) error {
	t := &Texture{ID: props.ID, Name: props.Name}
	seen := make(map[string]bool)

	err := fbx7400.ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Type":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			t.Type = s
		case "Version":
			v, err := fbx7400.ChildI32(ev)
			if err != nil {
				return err
			}
			t.Version = v
		case "TextureName":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			t.TextureName = s
		case "Media":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			t.Media = s
		case "FileName":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			t.FileName = s
		case "RelativeFilename":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			t.RelativeFilename = s
		case "ModelUVTranslation":
			a, b, err := fbx7400.ChildF64Pair(ev)
			if err != nil {
				return err
			}
			t.ModelUVTranslation = [2]float64{a, b}
		case "ModelUVScaling":
			a, b, err := fbx7400.ChildF64Pair(ev)
			if err != nil {
				return err
			}
			t.ModelUVScaling = [2]float64{a, b}
		case "Texture_Alpha_Source":
			s, err := fbx7400.ChildString(ev)
			if err != nil {
				return err
			}
			t.TextureAlphaSource = s
		case "Cropping":
			q, err := fbx7400.ChildI32Quad(ev)
			if err != nil {
				return err
			}
			t.Cropping = q
		case "Properties70":
			p, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			t.Properties = p
			seen["Properties70"] = true
			return nil
		default:
			return errors.Wrapf(fbx7400.ErrUnexpectedNode, "Texture child %q", ev.NodeName)
		}
		seen[ev.NodeName] = true
		return fbx7400.SkipChild(sub)
	})
	if err != nil {
		return err
	}

	for _, name := range []string{
		"Type", "Version", "TextureName", "Media", "FileName", "RelativeFilename",
		"ModelUVTranslation", "ModelUVScaling", "Texture_Alpha_Source", "Cropping",
	} {
		if !seen[name] {
			return errors.Wrapf(fbx7400.ErrMissingNode, "Texture child %q", name)
		}
	}
	l.coll.Textures[t.ID] = t
	return nil
}

// BlendMode is FbxTexture::EBlendMode of FBX SDK (2017), stored as an
// integer property.
type BlendMode int64

const (
	BlendTranslucent BlendMode = 0
	BlendAdditive    BlendMode = 1
	BlendModulate    BlendMode = 2
	BlendModulate2   BlendMode = 3
	BlendOver        BlendMode = 4
)

func blendModeFromI64(v int64) (BlendMode, bool) {
	if v < int64(BlendTranslucent) || v > int64(BlendOver) {
		return 0, false
	}
	return BlendMode(v), true
}
