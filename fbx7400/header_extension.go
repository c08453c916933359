package fbx7400

import (
	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/proptree"
	"github.com/lo48576/fbxcel-legacy/pull"
)

// HeaderExtension is the `FBXHeaderExtension` section.
type HeaderExtension struct {
	FBXHeaderVersion  int32
	FBXVersion        int32
	EncryptionType    int32
	CreationTimeStamp CreationTimeStamp
	Creator           string
	SceneInfo         SceneInfo
}

// CreationTimeStamp is the `CreationTimeStamp` child of the header
// extension.
type CreationTimeStamp struct {
	Version     int32
	Year        int32
	Month       int32
	Day         int32
	Hour        int32
	Minute      int32
	Second      int32
	Millisecond int32
}

// SceneInfo is the `SceneInfo` child of the header extension: document-level
// metadata plus a property bag.
type SceneInfo struct {
	Name  string
	Class string
	// Subclass is expected to be "UserData", but the format leaves this
	// undocumented.
	Subclass string
	// Type is usually "UserData" as well.
	Type       string
	Version    int32
	MetaData   MetaData
	Properties *proptree.Properties
}

// MetaData is the `MetaData` child of `SceneInfo`.
type MetaData struct {
	Version  int32
	Title    string
	Subject  string
	Author   string
	Keywords string
	Revision string
	Comment  string
}

func loadHeaderExtension(sub *pull.Subtree) (*HeaderExtension, error) {
	var he HeaderExtension
	var haveHeaderVersion, haveVersion, haveEncryption, haveTimeStamp, haveCreator, haveSceneInfo bool

	err := ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "FBXHeaderVersion":
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			he.FBXHeaderVersion = v
			haveHeaderVersion = true
			return SkipChild(sub)
		case "FBXVersion":
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			he.FBXVersion = v
			haveVersion = true
			return SkipChild(sub)
		case "EncryptionType":
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			he.EncryptionType = v
			haveEncryption = true
			return SkipChild(sub)
		case "CreationTimeStamp":
			ts, err := loadCreationTimeStamp(sub.Root().Subtree())
			if err != nil {
				return err
			}
			he.CreationTimeStamp = *ts
			haveTimeStamp = true
			return nil
		case "Creator":
			s, err := ChildString(ev)
			if err != nil {
				return err
			}
			he.Creator = s
			haveCreator = true
			return SkipChild(sub)
		case "SceneInfo":
			si, err := loadSceneInfo(ev, sub.Root().Subtree())
			if err != nil {
				return err
			}
			he.SceneInfo = *si
			haveSceneInfo = true
			return nil
		default:
			return errors.Wrapf(ErrUnexpectedNode, "FBXHeaderExtension child %q", ev.NodeName)
		}
	})
	if err != nil {
		return nil, err
	}

	switch {
	case !haveHeaderVersion:
		return nil, errors.Wrapf(ErrMissingNode, "FBXHeaderExtension child %q", "FBXHeaderVersion")
	case !haveVersion:
		return nil, errors.Wrapf(ErrMissingNode, "FBXHeaderExtension child %q", "FBXVersion")
	case !haveEncryption:
		return nil, errors.Wrapf(ErrMissingNode, "FBXHeaderExtension child %q", "EncryptionType")
	case !haveTimeStamp:
		return nil, errors.Wrapf(ErrMissingNode, "FBXHeaderExtension child %q", "CreationTimeStamp")
	case !haveCreator:
		return nil, errors.Wrapf(ErrMissingNode, "FBXHeaderExtension child %q", "Creator")
	case !haveSceneInfo:
		return nil, errors.Wrapf(ErrMissingNode, "FBXHeaderExtension child %q", "SceneInfo")
	}
	return &he, nil
}

func loadCreationTimeStamp(sub *pull.Subtree) (*CreationTimeStamp, error) {
	var ts CreationTimeStamp
	seen := make(map[string]bool)

	fields := map[string]*int32{
		"Version":     &ts.Version,
		"Year":        &ts.Year,
		"Month":       &ts.Month,
		"Day":         &ts.Day,
		"Hour":        &ts.Hour,
		"Minute":      &ts.Minute,
		"Second":      &ts.Second,
		"Millisecond": &ts.Millisecond,
	}

	err := ForEachChild(sub, func(ev pull.Event) error {
		dst, ok := fields[ev.NodeName]
		if !ok {
			return errors.Wrapf(ErrUnexpectedNode, "CreationTimeStamp child %q", ev.NodeName)
		}
		v, err := ChildI32(ev)
		if err != nil {
			return err
		}
		*dst = v
		seen[ev.NodeName] = true
		return SkipChild(sub)
	})
	if err != nil {
		return nil, err
	}
	for name := range fields {
		if !seen[name] {
			return nil, errors.Wrapf(ErrMissingNode, "CreationTimeStamp child %q", name)
		}
	}
	return &ts, nil
}

func loadSceneInfo(start pull.Event, sub *pull.Subtree) (*SceneInfo, error) {
	nameClass, subclass, err := ChildStringPair(start)
	if err != nil {
		return nil, err
	}
	name, class, ok := SeparateNameClass(nameClass)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAttribute, "SceneInfo name/class %q", nameClass)
	}
	si := &SceneInfo{Name: name, Class: class, Subclass: subclass}

	var haveType, haveVersion, haveMetaData, haveProperties bool
	err = ForEachChild(sub, func(ev pull.Event) error {
		switch ev.NodeName {
		case "Type":
			s, err := ChildString(ev)
			if err != nil {
				return err
			}
			si.Type = s
			haveType = true
			return SkipChild(sub)
		case "Version":
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			si.Version = v
			haveVersion = true
			return SkipChild(sub)
		case "MetaData":
			md, err := loadMetaData(sub.Root().Subtree())
			if err != nil {
				return err
			}
			si.MetaData = *md
			haveMetaData = true
			return nil
		case "Properties70":
			props, err := proptree.Load(sub.Root().Subtree(), sub.Root())
			if err != nil {
				return err
			}
			si.Properties = props
			haveProperties = true
			return nil
		default:
			return errors.Wrapf(ErrUnexpectedNode, "SceneInfo child %q", ev.NodeName)
		}
	})
	if err != nil {
		return nil, err
	}

	switch {
	case !haveType:
		return nil, errors.Wrapf(ErrMissingNode, "SceneInfo child %q", "Type")
	case !haveVersion:
		return nil, errors.Wrapf(ErrMissingNode, "SceneInfo child %q", "Version")
	case !haveMetaData:
		return nil, errors.Wrapf(ErrMissingNode, "SceneInfo child %q", "MetaData")
	case !haveProperties:
		return nil, errors.Wrapf(ErrMissingNode, "SceneInfo child %q", "Properties70")
	}
	return si, nil
}

func loadMetaData(sub *pull.Subtree) (*MetaData, error) {
	var md MetaData
	seen := make(map[string]bool)

	strFields := map[string]*string{
		"Title":    &md.Title,
		"Subject":  &md.Subject,
		"Author":   &md.Author,
		"Keywords": &md.Keywords,
		"Revision": &md.Revision,
		"Comment":  &md.Comment,
	}

	err := ForEachChild(sub, func(ev pull.Event) error {
		if ev.NodeName == "Version" {
			v, err := ChildI32(ev)
			if err != nil {
				return err
			}
			md.Version = v
			seen["Version"] = true
			return SkipChild(sub)
		}
		dst, ok := strFields[ev.NodeName]
		if !ok {
			return errors.Wrapf(ErrUnexpectedNode, "MetaData child %q", ev.NodeName)
		}
		s, err := ChildString(ev)
		if err != nil {
			return err
		}
		*dst = s
		seen[ev.NodeName] = true
		return SkipChild(sub)
	})
	if err != nil {
		return nil, err
	}

	if !seen["Version"] {
		return nil, errors.Wrapf(ErrMissingNode, "MetaData child %q", "Version")
	}
	for name := range strFields {
		if !seen[name] {
			return nil, errors.Wrapf(ErrMissingNode, "MetaData child %q", name)
		}
	}
	return &md, nil
}
