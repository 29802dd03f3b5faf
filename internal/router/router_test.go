package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/awesome/internal/errs"
)

func appRouter(t *testing.T) Router {
	t.Helper()
	r, err := New("application", "awesome_app")
	require.NoError(t, err)
	return r
}

func TestNew_RequiresBothSides(t *testing.T) {
	_, err := New("", "awesome_app")
	assert.True(t, errs.IsConfiguration(err))

	_, err = New("application", "")
	assert.True(t, errs.IsConfiguration(err))
}

func TestRoute_SameDatabaseEveryCall(t *testing.T) {
	r := appRouter(t)
	for i := 0; i < 50; i++ {
		db, ok := r.Route("application")
		require.True(t, ok)
		assert.Equal(t, "awesome_app", db)
	}

	db, ok := r.DBForRead("application")
	assert.True(t, ok)
	assert.Equal(t, "awesome_app", db)

	db, ok = r.DBForWrite("application")
	assert.True(t, ok)
	assert.Equal(t, "awesome_app", db)
}

func TestRoute_UnrelatedDomainNotApplicable(t *testing.T) {
	r := appRouter(t)
	db, ok := r.Route("unrelated_domain")
	assert.False(t, ok)
	assert.Empty(t, db)
}

func TestAllowMigrate(t *testing.T) {
	r := appRouter(t)

	tests := []struct {
		database string
		domain   string
		want     Decision
	}{
		{"awesome_app", "application", Allow},
		{"awesome_app", "other_domain", Deny},
		{"default", "application", Deny},
		{"default", "other_domain", Abstain},
	}

	for _, tt := range tests {
		t.Run(tt.database+"/"+tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, r.AllowMigrate(tt.database, tt.domain))
		})
	}
}

func TestAllowRelation(t *testing.T) {
	r := appRouter(t)
	assert.Equal(t, Allow, r.AllowRelation("application", "other"))
	assert.Equal(t, Allow, r.AllowRelation("other", "application"))
	assert.Equal(t, Abstain, r.AllowRelation("other", "another"))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
	assert.Equal(t, "abstain", Abstain.String())
}
