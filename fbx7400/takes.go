package fbx7400

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/pull"
)

// Takes is the optional `Takes` section.
type Takes struct {
	Current string
	Takes   []Take
}

// Take is one named `Take` record.
type Take struct {
	Name     string
	FileName string
	// LocalTime and ReferenceTime are (start, stop) pairs in FBX time units.
	LocalTime     [2]int64
	ReferenceTime [2]int64
}

func loadTakes(sub *pull.Subtree) (*Takes, error) {
	var takes Takes
	var haveCurrent bool

	err := ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Current":
			s, err := ChildString(ev)
			if err != nil {
				return err
			}
			takes.Current = s
			haveCurrent = true
			return SkipChild(sub)
		case "Take":
			name, err := ChildString(ev)
			if err != nil {
				return err
			}
			take, err := loadTake(name, sub.Root().Subtree())
			if err != nil {
				return err
			}
			takes.Takes = append(takes.Takes, *take)
			return nil
		default:
			return errors.Wrapf(ErrUnexpectedNode, "Takes child %q", ev.NodeName)
		}
	})
	if err != nil {
		return nil, err
	}

	if !haveCurrent {
		return nil, errors.Wrapf(ErrMissingNode, "Takes child %q", "Current")
	}
	return &takes, nil
}

func loadTake(name string, sub *pull.Subtree) (*Take, error) {
	take := &Take{Name: name}
	var haveFileName, haveLocalTime, haveReferenceTime bool

	err := ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "FileName":
			s, err := ChildString(ev)
			if err != nil {
				return err
			}
			take.FileName = s
			haveFileName = true
		case "LocalTime":
			a, b, err := ChildI64Pair(ev)
			if err != nil {
				return err
			}
			take.LocalTime = [2]int64{a, b}
			haveLocalTime = true
		case "ReferenceTime":
			a, b, err := ChildI64Pair(ev)
			if err != nil {
				return err
			}
			take.ReferenceTime = [2]int64{a, b}
			haveReferenceTime = true
		default:
			return errors.Wrapf(ErrUnexpectedNode, "Take child %q", ev.NodeName)
		}
		return SkipChild(sub)
	})
	if err != nil {
		return nil, err
	}

	switch {
	case !haveFileName:
		return nil, errors.Wrapf(ErrMissingNode, "Take child %q", "FileName")
	case !haveLocalTime:
		return nil, errors.Wrapf(ErrMissingNode, "Take child %q", "LocalTime")
	case !haveReferenceTime:
		return nil, errors.Wrapf(ErrMissingNode, "Take child %q", "ReferenceTime")
	}
	return take, nil
}
