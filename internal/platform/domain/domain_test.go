package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"teacher", "student", "admin"} {
		r, err := domain.ParseRole(s)
		require.NoError(t, err)
		require.Equal(t, s, r.String())
	}

	for _, s := range []string{"", "Teacher", "root"} {
		_, err := domain.ParseRole(s)
		require.ErrorIs(t, err, domain.ErrUnknownRole, s)
	}
}

func TestRolePermissions(t *testing.T) {
	require.True(t, domain.RoleTeacher.SelfAssignable())
	require.True(t, domain.RoleStudent.SelfAssignable())
	require.False(t, domain.RoleAdmin.SelfAssignable())

	require.True(t, domain.RoleTeacher.CanPublish())
	require.True(t, domain.RoleAdmin.CanPublish())
	require.False(t, domain.RoleStudent.CanPublish())
}

func TestValidProvider(t *testing.T) {
	for _, p := range []string{"zoom", "google-calendar", "ms_teams", "a"} {
		require.True(t, domain.ValidProvider(p), p)
	}
	for _, p := range []string{"", "Zoom", "-zoom", "zoom/../x", "a very long provider name that exceeds"} {
		require.False(t, domain.ValidProvider(p), p)
	}
}
