// Package object provides the typed per-kind loaders for `Objects` entries
// and a registry-driven ObjectsLoader that dispatches on (class, subclass).
package object

import (
	"fmt"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	"github.com/lo48576/fbxcel-legacy/node"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// key identifies an object kind by its (class, subclass) pair. The
// subclass "*" matches any subclass of the class.
type key struct {
	class    string
	subclass string
}

type loadFunc func(l *Loader, nodeName string, props fbx7400.ObjectProperties, sub *pull.Subtree, before *fbx7400.NodesBeforeObjects) error

// registry maps (class, subclass) to the loader for that object kind.
// Unregistered kinds fall back to a generic tree with a warning, keeping
// newer object kinds readable without a schema update.
var registry = map[key]loadFunc{
	{"Model", "*"}:                       (*Loader).loadModel,
	{"NodeAttribute", "Null"}:            (*Loader).loadNull,
	{"NodeAttribute", "LimbNode"}:        (*Loader).loadSkeleton,
	{"Deformer", "Skin"}:                 (*Loader).loadSkin,
	{"Deformer", "BlendShape"}:           (*Loader).loadBlendShape,
	{"SubDeformer", "Cluster"}:           (*Loader).loadCluster,
	{"SubDeformer", "BlendShapeChannel"}: (*Loader).loadBlendShapeChannel,
	{"Geometry", "Shape"}:                (*Loader).loadShape,
	{"Material", ""}:                     (*Loader).loadMaterial,
	{"Texture", ""}:                      (*Loader).loadTexture,
	{"Video", "Clip"}:                    (*Loader).loadVideo,
	{"Pose", "BindPose"}:                 (*Loader).loadPose,
	{"DisplayLayer", "DisplayLayer"}:     (*Loader).loadDisplayLayer,
	{"AnimCurveNode", ""}:                (*Loader).loadAnimationCurveNode,
	{"AnimLayer", ""}:                    (*Loader).loadAnimationLayer,
}

// Collection is every object of a document, typed where a loader exists,
// keyed by object id.
type Collection struct {
	Models              map[int64]*Model
	Nulls               map[int64]*Null
	Skeletons           map[int64]*Skeleton
	Skins               map[int64]*Skin
	Clusters            map[int64]*Cluster
	BlendShapes         map[int64]*BlendShape
	BlendShapeChannels  map[int64]*BlendShapeChannel
	Shapes              map[int64]*Shape
	Materials           map[int64]*Material
	Textures            map[int64]*Texture
	Videos              map[int64]*Video
	Poses               map[int64]*Pose
	DisplayLayers       map[int64]*DisplayLayer
	AnimationCurveNodes map[int64]*AnimationCurveNode
	AnimationLayers     map[int64]*AnimationLayer
	// Unknown holds entries whose (class, subclass) no typed loader
	// recognized.
	Unknown map[int64]*fbx7400.GenericObject
}

func newCollection() *Collection {
	return &Collection{
		Models:              make(map[int64]*Model),
		Nulls:               make(map[int64]*Null),
		Skeletons:           make(map[int64]*Skeleton),
		Skins:               make(map[int64]*Skin),
		Clusters:            make(map[int64]*Cluster),
		BlendShapes:         make(map[int64]*BlendShape),
		BlendShapeChannels:  make(map[int64]*BlendShapeChannel),
		Shapes:              make(map[int64]*Shape),
		Materials:           make(map[int64]*Material),
		Textures:            make(map[int64]*Texture),
		Videos:              make(map[int64]*Video),
		Poses:               make(map[int64]*Pose),
		DisplayLayers:       make(map[int64]*DisplayLayer),
		AnimationCurveNodes: make(map[int64]*AnimationCurveNode),
		AnimationLayers:     make(map[int64]*AnimationLayer),
		Unknown:             make(map[int64]*fbx7400.GenericObject),
	}
}

// Loader is the typed ObjectsLoader. Zero value is not usable; construct
// with NewLoader.
type Loader struct {
	coll *Collection
}

var _ fbx7400.ObjectsLoader[*Collection] = (*Loader)(nil)

// NewLoader creates an empty typed objects loader.
func NewLoader() *Loader {
	return &Loader{coll: newCollection()}
}

// LoadObject implements fbx7400.ObjectsLoader.
func (l *Loader) LoadObject(nodeName string, props fbx7400.ObjectProperties, sub *pull.Subtree, before *fbx7400.NodesBeforeObjects) error {
	fn, ok := registry[key{props.Class, props.Subclass}]
	if !ok {
		fn, ok = registry[key{props.Class, "*"}]
	}
	if !ok {
		sub.Root().Warn(fmt.Sprintf(
			"object: no typed loader for class=%q subclass=%q (node %q, id=%d); keeping generic tree",
			props.Class, props.Subclass, nodeName, props.ID))
		children, _, err := node.Load(sub)
		if err != nil {
			return err
		}
		l.coll.Unknown[props.ID] = &fbx7400.GenericObject{
			NodeName:   nodeName,
			Properties: props,
			Children:   children,
		}
		return nil
	}
	return fn(l, nodeName, props, sub, before)
}

// Build implements fbx7400.ObjectsLoader.
func (l *Loader) Build() (*Collection, error) {
	return l.coll, nil
}

// Load is a convenience wrapper running the full schema loader with typed
// objects.
func Load(p *pull.Parser) (*fbx7400.Document, *Collection, error) {
	return fbx7400.Load[*Collection](p, NewLoader())
}
