package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole(t *testing.T) {
	assert.True(t, RoleEmployee.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())

	assert.False(t, RoleEmployee.CanManage())
	assert.True(t, RoleManager.CanManage())
	assert.True(t, RoleAdmin.CanManage())
}
