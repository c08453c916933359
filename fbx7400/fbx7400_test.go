package fbx7400_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lo48576/fbxcel-legacy/fbx7400"
	ft "github.com/lo48576/fbxcel-legacy/internal/fbxtest"
	"github.com/lo48576/fbxcel-legacy/pull"
)

func loadGeneric(t *testing.T, doc []byte) (*fbx7400.Document, []fbx7400.GenericObject, error) {
	t.Helper()
	p := pull.New(bytes.NewReader(doc))
	return fbx7400.Load[[]fbx7400.GenericObject](p, &fbx7400.GenericObjects{})
}

func TestLoadMinimalDocument(t *testing.T) {
	raw := ft.Doc(7400, append(ft.MinimalPrefix(),
		ft.N("Objects", nil),
		ft.N("Connections", nil),
	)...)

	doc, objects, err := loadGeneric(t, raw)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Empty(t, objects)

	assert.Equal(t, uint32(7400), doc.Version)
	assert.Equal(t, int32(1003), doc.HeaderExtension.FBXHeaderVersion)
	assert.Equal(t, int32(7400), doc.HeaderExtension.FBXVersion)
	assert.Equal(t, int32(2017), doc.HeaderExtension.CreationTimeStamp.Year)
	assert.Equal(t, "GlobalInfo", doc.HeaderExtension.SceneInfo.Name)
	assert.Equal(t, "SceneInfo", doc.HeaderExtension.SceneInfo.Class)
	assert.Equal(t, "UserData", doc.HeaderExtension.SceneInfo.Subclass)
	assert.Equal(t, "fbxtest writer", doc.Creator)
	assert.Equal(t, "2017-05-01 12:30:00:000", doc.CreationTime)
	assert.Equal(t, []byte{0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2}, doc.FileID)

	v, ok := doc.GlobalSettings.Properties.LookupF64("UnitScaleFactor", nil)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	require.Len(t, doc.Documents, 1)
	assert.Equal(t, "Count", doc.Documents[0].Name)
	assert.Empty(t, doc.References)
	assert.Empty(t, doc.Connections)
	assert.Nil(t, doc.Takes)
	require.NotNil(t, doc.Footer)
	assert.Equal(t, uint32(7400), doc.Footer.Version)
}

func TestLoadGenericObjectsAndConnections(t *testing.T) {
	raw := ft.Doc(7400, append(ft.MinimalPrefix(),
		ft.N("Objects", nil,
			ft.N("Geometry", ft.A(ft.I64(106), ft.NameClass("CubeGeom", "Geometry"), ft.String("Mesh")),
				ft.N("Vertices", ft.A(ft.F64ArrayZlib([]float64{0, 1, 2, 3, 4, 5}))),
				ft.N("GeometryVersion", ft.A(ft.I32(124))))),
		ft.N("Connections", nil,
			ft.N("C", ft.A(ft.String("OO"), ft.I64(106), ft.I64(101))),
			ft.N("C", ft.A(ft.String("OP"), ft.I64(107), ft.I64(105), ft.String("DiffuseColor")))),
		ft.N("Takes", nil,
			ft.N("Current", ft.A(ft.String("Take 001"))),
			ft.N("Take", ft.A(ft.String("Take 001")),
				ft.N("FileName", ft.A(ft.String("Take_001.tak"))),
				ft.N("LocalTime", ft.A(ft.I64(0), ft.I64(230930790000))),
				ft.N("ReferenceTime", ft.A(ft.I64(0), ft.I64(230930790000))))),
	)...)

	doc, objects, err := loadGeneric(t, raw)
	require.NoError(t, err)

	require.Len(t, objects, 1)
	obj := objects[0]
	assert.Equal(t, "Geometry", obj.NodeName)
	assert.Equal(t, fbx7400.ObjectProperties{ID: 106, Name: "CubeGeom", Class: "Geometry", Subclass: "Mesh"}, obj.Properties)
	require.Len(t, obj.Children, 2)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, obj.Children[0].Attributes[0].ArrF64)

	wantConns := fbx7400.Connections{
		{Child: 106, Parent: 101},
		{Child: 107, Parent: 105, Property: "DiffuseColor", ParentIsProp: true},
	}
	if diff := cmp.Diff(wantConns, doc.Connections); diff != "" {
		t.Errorf("connections mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, doc.Takes)
	assert.Equal(t, "Take 001", doc.Takes.Current)
	require.Len(t, doc.Takes.Takes, 1)
	assert.Equal(t, fbx7400.Take{
		Name:          "Take 001",
		FileName:      "Take_001.tak",
		LocalTime:     [2]int64{0, 230930790000},
		ReferenceTime: [2]int64{0, 230930790000},
	}, doc.Takes.Takes[0])
}

func TestLoadDefinitionsTemplates(t *testing.T) {
	prefix := ft.MinimalPrefix()
	// Swap the empty Definitions for one carrying a template.
	prefix[len(prefix)-1] = ft.N("Definitions", nil,
		ft.N("Version", ft.A(ft.I32(100))),
		ft.N("Count", ft.A(ft.I32(1))),
		ft.N("ObjectType", ft.A(ft.String("Model")),
			ft.N("Count", ft.A(ft.I32(1))),
			ft.N("PropertyTemplate", ft.A(ft.String("FbxNode")),
				ft.N("Properties70", nil,
					ft.PropF64x3("Lcl Scaling", 1, 1, 1)))))

	raw := ft.Doc(7400, append(prefix,
		ft.N("Objects", nil),
		ft.N("Connections", nil),
	)...)

	doc, _, err := loadGeneric(t, raw)
	require.NoError(t, err)

	tmpl := doc.Definitions.Template("Model", "FbxNode")
	require.NotNil(t, tmpl)
	assert.Equal(t, [3]float64{1, 1, 1}, tmpl.F64x3["Lcl Scaling"])
	assert.Nil(t, doc.Definitions.Template("Model", "FbxMesh"))
	assert.Nil(t, doc.Definitions.Template("Geometry", "FbxNode"))
}

func TestLoadMissingSection(t *testing.T) {
	// No Connections section at all.
	raw := ft.Doc(7400, append(ft.MinimalPrefix(), ft.N("Objects", nil))...)

	_, _, err := loadGeneric(t, raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fbx7400.ErrMissingNode))
	assert.Contains(t, err.Error(), "Connections")
}

func TestLoadUnsupportedVersion(t *testing.T) {
	raw := ft.Doc(7300, append(ft.MinimalPrefix(),
		ft.N("Objects", nil),
		ft.N("Connections", nil),
	)...)

	_, _, err := loadGeneric(t, raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fbx7400.ErrUnsupportedVersion))
}

func TestLoadInvalidConnectionCode(t *testing.T) {
	raw := ft.Doc(7400, append(ft.MinimalPrefix(),
		ft.N("Objects", nil),
		ft.N("Connections", nil,
			ft.N("C", ft.A(ft.String("XX"), ft.I64(1), ft.I64(2)))),
	)...)

	_, _, err := loadGeneric(t, raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fbx7400.ErrInvalidAttribute))
}

func TestSeparateNameClass(t *testing.T) {
	name, class, ok := fbx7400.SeparateNameClass("Cube\x00\x01Model")
	require.True(t, ok)
	assert.Equal(t, "Cube", name)
	assert.Equal(t, "Model", class)

	_, _, ok = fbx7400.SeparateNameClass("NoSeparator")
	assert.False(t, ok)
}

func TestArr16ToMat4x4(t *testing.T) {
	arr := make([]float64, 16)
	for i := range arr {
		arr[i] = float64(i)
	}
	m, ok := fbx7400.Arr16ToMat4x4(arr)
	require.True(t, ok)
	assert.Equal(t, 0.0, m[0][0])
	assert.Equal(t, 7.0, m[1][3])
	assert.Equal(t, 15.0, m[3][3])

	_, ok = fbx7400.Arr16ToMat4x4(arr[:15])
	assert.False(t, ok)
}
