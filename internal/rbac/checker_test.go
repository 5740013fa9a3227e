package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerHas(t *testing.T) {
	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"admin", "course:create", true},
		{"admin", "anything:at:all", true},
		{"teacher", "course:create", true},
		{"teacher", "exam:generate", true}, // via exam:*
		{"teacher", "exam:download", true},
		{"teacher", "enrollment:manage", true},
		{"student", "exam:view", true},
		{"student", "exam:generate", false},
		{"student", "grade:set", false},
		{"student", "attempt:create", true},
		{"nobody", "course:view", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewChecker(tt.role).Has(tt.perm), "%s/%s", tt.role, tt.perm)
	}
}

func TestCheckerAnyAll(t *testing.T) {
	c := NewChecker("student")
	assert.True(t, c.Any("grade:set", "attempt:create"))
	assert.False(t, c.Any("grade:set", "exam:generate"))
	assert.True(t, c.All("course:view", "material:view"))
	assert.False(t, c.All("course:view", "grade:set"))
}
