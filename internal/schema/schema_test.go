package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/awesome/internal/errs"
)

func TestReplicate_UserInfo(t *testing.T) {
	tpl := UserInfo(DefaultTablePrefix, 0)
	defs, err := Replicate(tpl, 10)
	require.NoError(t, err)
	require.Len(t, defs, 10)

	for i, d := range defs {
		assert.Equal(t, fmt.Sprintf("app_userinfo%d", i), d.Name)
		assert.Equal(t, fmt.Sprintf("user info(%d)", i), d.Label)
		assert.Equal(t, DomainApplication, d.Domain)
		assert.Equal(t, i, d.Partition)
		assert.True(t, d.Partitioned())
		assert.Equal(t, tpl.Columns, d.Columns)
		assert.Equal(t, tpl.Uniques, d.Uniques)
	}
}

func TestReplicate_DefinitionsDoNotAlias(t *testing.T) {
	tpl := UIDOpenID(DefaultTablePrefix, 0)
	defs, err := Replicate(tpl, 2)
	require.NoError(t, err)

	defs[0].Columns[0].Name = "changed"
	defs[0].Uniques[0].Columns[0] = "changed"

	assert.Equal(t, ColID, defs[1].Columns[0].Name)
	assert.Equal(t, ColOpenID, defs[1].Uniques[0].Columns[0])
	assert.Equal(t, ColID, tpl.Columns[0].Name)
	assert.Equal(t, ColOpenID, tpl.Uniques[0].Columns[0])
}

func TestReplicate_Unpartitioned(t *testing.T) {
	defs, err := Replicate(GlobalID(DefaultTablePrefix), 0)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "app_global_id", defs[0].Name)
	assert.Equal(t, "global uid counter", defs[0].Label)
	assert.False(t, defs[0].Partitioned())
}

func TestReplicate_InvalidTemplates(t *testing.T) {
	col := Column{Name: "uid", Type: TypeUint}

	tests := []struct {
		name string
		tpl  Template
		n    int
	}{
		{"no base name", Template{Columns: []Column{col}}, 1},
		{"bad base name", Template{BaseName: "app-user", Columns: []Column{col}}, 1},
		{"no columns", Template{BaseName: "t"}, 1},
		{"duplicate column", Template{BaseName: "t", Columns: []Column{col, col}}, 1},
		{"varchar without size", Template{BaseName: "t", Columns: []Column{{Name: "s", Type: TypeVarchar}}}, 1},
		{"numeric default", Template{BaseName: "t", Columns: []Column{{Name: "g", Type: TypeUint, Default: "x", HasDefault: true}}}, 1},
		{"unique on unknown", Template{BaseName: "t", Columns: []Column{col}, Uniques: []Unique{{Columns: []string{"nope"}}}}, 1},
		{"empty unique", Template{BaseName: "t", Columns: []Column{col}, Uniques: []Unique{{}}}, 1},
		{"negative count", Template{BaseName: "t", Columns: []Column{col}}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Replicate(tt.tpl, tt.n)
			require.Error(t, err)
			assert.True(t, errs.IsConfiguration(err))
		})
	}
}

func TestDefinition_ColumnNames(t *testing.T) {
	defs, err := Replicate(UIDOpenID(DefaultTablePrefix, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "uid", "openid", "plat", "create_time"}, defs[0].ColumnNames())
}

func TestRegistry_DuplicateRegistrationFails(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterTemplate(UserInfo(DefaultTablePrefix, 10)))

	defs, err := Replicate(UserInfo(DefaultTablePrefix, 0), 10)
	require.NoError(t, err)

	err = reg.Register(defs[3])
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
	assert.Contains(t, err.Error(), "app_userinfo3")
	assert.Equal(t, 10, reg.Len())
}

func TestRegistry_DuplicateWithinBatchAddsNothing(t *testing.T) {
	reg := NewRegistry()
	defs, err := Replicate(UserInfo(DefaultTablePrefix, 0), 2)
	require.NoError(t, err)

	err = reg.Register(defs[0], defs[1], defs[0])
	assert.True(t, errs.IsConfiguration(err))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := Application(DefaultTablePrefix, 10)
	require.NoError(t, err)
	assert.Equal(t, 21, reg.Len())

	d, ok := reg.Lookup("app_uid_openid9")
	require.True(t, ok)
	assert.Equal(t, 9, d.Partition)

	_, ok = reg.Lookup("app_uid_openid10")
	assert.False(t, ok)

	_, ok = reg.Lookup("app_global_id")
	assert.True(t, ok)
}

func TestRegistry_OrderAndDomain(t *testing.T) {
	reg, err := Application(DefaultTablePrefix, 2)
	require.NoError(t, err)

	var names []string
	for _, d := range reg.Definitions() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"app_global_id",
		"app_userinfo0", "app_userinfo1",
		"app_uid_openid0", "app_uid_openid1",
	}, names)

	assert.Len(t, reg.ForDomain(DomainApplication), 5)
	assert.Empty(t, reg.ForDomain("other"))
}

func TestApplication_CustomPrefix(t *testing.T) {
	reg, err := Application("svc_", 3)
	require.NoError(t, err)
	_, ok := reg.Lookup("svc_userinfo2")
	assert.True(t, ok)
	_, ok = reg.Lookup("svc_global_id")
	assert.True(t, ok)
}
