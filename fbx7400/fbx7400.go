// Package fbx7400 loads the FBX 7.4 document schema off the pull parser:
// fixed top-level sections, object nodes keyed by (id, class, subclass), the
// connections graph, per-type property templates, and takes.
package fbx7400

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/node"
	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// Sentinel errors for schema-level failures. Compare with errors.Is; the
// wrapped message carries the parent/child node names.
var (
	// ErrMissingNode means a node required by the FBX 7.4 schema was absent.
	ErrMissingNode = errors.New("fbx7400: required node is missing")
	// ErrUnexpectedNode means a node appeared where the schema does not
	// allow it.
	ErrUnexpectedNode = errors.New("fbx7400: unexpected node")
	// ErrInvalidAttribute means a node's attributes did not have the shape
	// the schema requires.
	ErrInvalidAttribute = errors.New("fbx7400: invalid attributes for node")
	// ErrInconsistent means two values that must agree (array lengths,
	// declared counts) did not.
	ErrInconsistent = errors.New("fbx7400: inconsistent node values")
	// ErrUnsupportedVersion means the stream's FBX version is outside the
	// 7400-7599 range this loader understands.
	ErrUnsupportedVersion = errors.New("fbx7400: unsupported FBX version")
)

// NodesBeforeObjects holds every top-level section that precedes `Objects`
// in the document. It is handed to the objects loader so per-type loaders
// can reach the `Definitions` property templates.
type NodesBeforeObjects struct {
	HeaderExtension HeaderExtension
	FileID          []byte
	CreationTime    string
	Creator         string
	GlobalSettings  GlobalSettings
	Documents       []node.Node
	References      []node.Node
	Definitions     Definitions
}

// Document is a fully-loaded FBX 7.4 document, minus the objects themselves
// (those belong to whatever the ObjectsLoader built).
type Document struct {
	Version uint32
	NodesBeforeObjects
	Connections Connections
	// Takes is nil when the optional `Takes` section is absent.
	Takes  *Takes
	Footer *pull.Footer
}

// ObjectsLoader consumes one `Objects` entry at a time and builds a
// caller-chosen collection type when the section ends. GenericObjects is the
// schemaless implementation; package fbx7400/object provides the typed one.
type ObjectsLoader[O any] interface {
	// LoadObject consumes exactly the subtree of one object node. nodeName
	// is the wire node name (`Model`, `Deformer`, ...), props the decoded
	// (id, name, class, subclass) tuple.
	LoadObject(nodeName string, props ObjectProperties, sub *pull.Subtree, before *NodesBeforeObjects) error
	// Build finalizes the collection after the whole section is consumed.
	Build() (O, error)
}

// Load drives the parser from its very first event through EndFbx and
// materializes the document. Objects are dispatched to the given loader,
// whose Build result is returned alongside the document.
func Load[O any](p *pull.Parser, objects ObjectsLoader[O]) (*Document, O, error) {
	var zero O

	ev, err := p.NextEvent()
	if err != nil {
		return nil, zero, err
	}
	if ev.Kind != pull.StartFbx {
		return nil, zero, errors.Wrapf(ErrUnexpectedNode, "want FBX header, got event kind %d", ev.Kind)
	}
	if ev.Version < 7400 || ev.Version > 7599 {
		return nil, zero, errors.Wrapf(ErrUnsupportedVersion, "version %d", ev.Version)
	}

	doc := &Document{Version: ev.Version}
	var (
		haveHeaderExtension bool
		haveFileID          bool
		haveCreationTime    bool
		haveCreator         bool
		haveGlobalSettings  bool
		haveDocuments       bool
		haveReferences      bool
		haveDefinitions     bool
		haveObjects         bool
		haveConnections     bool
	)

	for {
		ev, err := p.NextEvent()
		if err != nil {
			return nil, zero, err
		}
		switch ev.Kind {
		case pull.EndFbx:
			doc.Footer = ev.Footer
			for _, sec := range []struct {
				name string
				have bool
			}{
				{"FBXHeaderExtension", haveHeaderExtension},
				{"FileId", haveFileID},
				{"CreationTime", haveCreationTime},
				{"Creator", haveCreator},
				{"GlobalSettings", haveGlobalSettings},
				{"Documents", haveDocuments},
				{"References", haveReferences},
				{"Definitions", haveDefinitions},
				{"Objects", haveObjects},
				{"Connections", haveConnections},
			} {
				if !sec.have {
					return nil, zero, errors.Wrapf(ErrMissingNode, "toplevel node %q", sec.name)
				}
			}
			built, err := objects.Build()
			if err != nil {
				return nil, zero, err
			}
			return doc, built, nil
		case pull.StartNode:
			// Intentionally order-agnostic: presence is validated at EndFbx.
			switch ev.NodeName {
			case "FBXHeaderExtension":
				he, err := loadHeaderExtension(p.Subtree())
				if err != nil {
					return nil, zero, err
				}
				doc.HeaderExtension = *he
				haveHeaderExtension = true
			case "FileId":
				b, err := ChildBytes(ev)
				if err != nil {
					return nil, zero, err
				}
				doc.FileID = b
				haveFileID = true
				if _, err := p.SkipCurrentNode(); err != nil {
					return nil, zero, err
				}
			case "CreationTime":
				s, err := ChildString(ev)
				if err != nil {
					return nil, zero, err
				}
				doc.CreationTime = s
				haveCreationTime = true
				if _, err := p.SkipCurrentNode(); err != nil {
					return nil, zero, err
				}
			case "Creator":
				s, err := ChildString(ev)
				if err != nil {
					return nil, zero, err
				}
				doc.Creator = s
				haveCreator = true
				if _, err := p.SkipCurrentNode(); err != nil {
					return nil, zero, err
				}
			case "GlobalSettings":
				gs, err := loadGlobalSettings(p.Subtree())
				if err != nil {
					return nil, zero, err
				}
				doc.GlobalSettings = *gs
				haveGlobalSettings = true
			case "Documents":
				nodes, _, err := node.Load(p.Subtree())
				if err != nil {
					return nil, zero, err
				}
				doc.Documents = nodes
				haveDocuments = true
			case "References":
				nodes, _, err := node.Load(p.Subtree())
				if err != nil {
					return nil, zero, err
				}
				doc.References = nodes
				haveReferences = true
			case "Definitions":
				defs, err := loadDefinitions(p.Subtree())
				if err != nil {
					return nil, zero, err
				}
				doc.Definitions = *defs
				haveDefinitions = true
			case "Objects":
				if err := loadObjects(p.Subtree(), objects, &doc.NodesBeforeObjects); err != nil {
					return nil, zero, err
				}
				haveObjects = true
			case "Connections":
				conns, err := loadConnections(p.Subtree())
				if err != nil {
					return nil, zero, err
				}
				doc.Connections = conns
				haveConnections = true
			case "Takes":
				takes, err := loadTakes(p.Subtree())
				if err != nil {
					return nil, zero, err
				}
				doc.Takes = takes
			default:
				return nil, zero, errors.Wrapf(ErrUnexpectedNode, "toplevel node %q", ev.NodeName)
			}
		}
	}
}

// nameClassSep is the two-byte delimiter FBX uses inside the combined
// "{name}\x00\x01{class}" object attribute.
const nameClassSep = "\x00\x01"

// SeparateNameClass splits the combined name/class object attribute,
// reporting false if the delimiter is absent.
func SeparateNameClass(nameClass string) (name, class string, ok bool) {
	i := strings.Index(nameClass, nameClassSep)
	if i < 0 {
		return "", "", false
	}
	return nameClass[:i], nameClass[i+len(nameClassSep):], true
}

// Arr16ToMat4x4 reinterprets a 16-element array as a row-major 4x4 matrix,
// reporting false on any other length.
func Arr16ToMat4x4(arr []float64) (proptree.Matrix4, bool) {
	var m proptree.Matrix4
	if len(arr) != 16 {
		return m, false
	}
	for r := 0; r < 4; r++ {
		copy(m[r][:], arr[r*4:r*4+4])
	}
	return m, true
}
