package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"owner":     RoleOwner,
		"Owner":     RoleOwner,
		"ADMIN":     RoleAdmin,
		"admin":     RoleAdmin,
		"member":    RoleMember,
		"user":      RoleMember, // legacy label from the old portal
		"User":      RoleMember,
		" owner ":   RoleOwner,
		"":          RoleUnknown,
		"superuser": RoleUnknown,
		"root":      RoleUnknown,
	}
	for label, want := range cases {
		assert.Equal(t, want, ParseRole(label), "label %q", label)
	}
}

func TestRolePrivileged(t *testing.T) {
	assert.True(t, RoleOwner.Privileged())
	assert.True(t, RoleAdmin.Privileged())
	assert.False(t, RoleMember.Privileged())
	assert.False(t, RoleUnknown.Privileged())
}
