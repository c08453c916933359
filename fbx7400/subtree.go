package fbx7400

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/pull"
)

// ForEachChild invokes fn once per direct child node of sub, stopping at the
// enclosing node's end. fn must fully consume or skip the child's subtree
// before returning (scalar children: read attributes, then SkipChild).
func ForEachChild(sub *pull.Subtree, fn func(ev pull.Event) error) error {
	for {
		ev, err := sub.NextEvent()
		if errors.Is(err, pull.ErrFinished) {
			return nil
		}
		if err != nil {
			return err
		}
		switch ev.Kind {
		case pull.EndNode:
			return nil
		case pull.StartNode:
			if err := fn(ev); err != nil {
				return err
			}
		}
	}
}

// SkipChild closes the child node most recently opened inside sub.
func SkipChild(sub *pull.Subtree) error {
	_, err := sub.SkipCurrentNode()
	if errors.Is(err, pull.ErrFinished) {
		return nil
	}
	return err
}
