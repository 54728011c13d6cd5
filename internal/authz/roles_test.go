package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoles(t *testing.T) {
	assert.True(t, CanWrite(RoleOperations))
	assert.True(t, CanWrite(RoleAdmin))
	assert.False(t, CanWrite(RoleAudit))
	assert.False(t, CanWrite(0))
	assert.True(t, IsReadOnly(RoleAudit))
	assert.False(t, IsReadOnly(RoleAdmin))
}
