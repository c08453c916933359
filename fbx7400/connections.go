package fbx7400

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/pull"
)

// Connections is the `Connections` section: directed edges between objects
// or object properties, child pointing at parent.
type Connections []Connection

// Connection is one `C` edge.
type Connection struct {
	// Child is the object id of the child (source) end.
	Child int64
	// Parent is the object id of the parent (destination) end.
	Parent int64
	// Property is the destination property name for `OP`/`PP` edges, empty
	// otherwise.
	Property string
	// ChildIsProp and ParentIsProp decode the 2-letter type code: `OO`,
	// `OP`, `PO`, `PP`.
	ChildIsProp  bool
	ParentIsProp bool
}

func loadConnections(sub *pull.Subtree) (Connections, error) {
	var conns Connections

	err := ForEachChild(sub, func(ev pull.Event) error {
		if ev.NodeName != "C" {
			return errors.Wrapf(ErrUnexpectedNode, "Connections child %q", ev.NodeName)
		}
		code, err := ChildString(ev)
		if err != nil {
			return err
		}
		var c Connection
		switch code {
		case "OO":
		case "OP":
			c.ParentIsProp = true
		case "PO":
			c.ChildIsProp = true
		case "PP":
			c.ChildIsProp = true
			c.ParentIsProp = true
		default:
			return errors.Wrapf(ErrInvalidAttribute, "node %q: connection type code %q", ev.NodeName, code)
		}
		if c.Child, c.Parent, err = ChildI64Pair(ev); err != nil {
			return err
		}
		if ev.Attributes.Remaining() > 0 {
			if c.Property, err = ChildString(ev); err != nil {
				return err
			}
		}
		conns = append(conns, c)
		return SkipChild(sub)
	})
	if err != nil {
		return nil, err
	}
	return conns, nil
}
