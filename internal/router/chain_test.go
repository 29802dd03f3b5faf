package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/awesome/internal/errs"
)

func testChain(t *testing.T) *Chain {
	t.Helper()
	app, err := New("application", "awesome_app")
	require.NoError(t, err)
	data, err := New("data", "awesome_data")
	require.NoError(t, err)

	c, err := NewChain("default", app, data)
	require.NoError(t, err)
	return c
}

func TestNewChain_DuplicateDomain(t *testing.T) {
	a, _ := New("application", "awesome_app")
	b, _ := New("application", "awesome_admin")

	_, err := NewChain("default", a, b)
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestNewChain_RequiresDefault(t *testing.T) {
	_, err := NewChain("")
	assert.True(t, errs.IsConfiguration(err))
}

func TestChain_RouteFallsThrough(t *testing.T) {
	c := testChain(t)
	assert.Equal(t, "awesome_app", c.Route("application"))
	assert.Equal(t, "awesome_data", c.Route("data"))
	assert.Equal(t, "default", c.Route("auth"))
}

func TestChain_MustRoute(t *testing.T) {
	c := testChain(t)

	db, err := c.MustRoute("application")
	require.NoError(t, err)
	assert.Equal(t, "awesome_app", db)

	_, err = c.MustRoute("auth")
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestChain_AllowMigrate(t *testing.T) {
	c := testChain(t)

	assert.True(t, c.AllowMigrate("awesome_app", "application"))
	assert.False(t, c.AllowMigrate("awesome_app", "other_domain"))
	assert.False(t, c.AllowMigrate("default", "application"))
	assert.False(t, c.AllowMigrate("awesome_data", "application"))
	assert.True(t, c.AllowMigrate("awesome_data", "data"))

	// Unrouted domains live in the default database only.
	assert.True(t, c.AllowMigrate("default", "auth"))
	assert.False(t, c.AllowMigrate("awesome_admin", "auth"))
}

func TestChain_CheckMigrate(t *testing.T) {
	c := testChain(t)

	require.NoError(t, c.CheckMigrate("awesome_app", "application"))

	err := c.CheckMigrate("awesome_app", "other_domain")
	require.Error(t, err)
	assert.True(t, errs.IsRoutingConflict(err))
}

func TestChain_AllowRelation(t *testing.T) {
	c := testChain(t)

	assert.True(t, c.AllowRelation("application", "auth"))
	assert.True(t, c.AllowRelation("auth", "sessions"))

	solo, _ := New("application", "awesome_app")
	c2, err := NewChain("default", solo)
	require.NoError(t, err)
	assert.True(t, c2.AllowRelation("auth", "sessions"))
}

func TestChain_RoutersIsACopy(t *testing.T) {
	c := testChain(t)
	rs := c.Routers()
	require.Len(t, rs, 2)
	rs[0] = Router{}
	assert.Equal(t, "application", c.Routers()[0].Domain())
}
