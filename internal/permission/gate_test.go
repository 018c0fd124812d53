package permission

import (
	"testing"

	"mahzen-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCheckMatrix(t *testing.T) {
	cases := []struct {
		name   string
		role   models.UserRole
		action string
		want   Level
	}{
		{"super admin her aksiyonda full", models.RoleSuperAdmin, ActionApprove, LevelFull},
		{"super admin bilinmeyen aksiyonda bile full", models.RoleSuperAdmin, "uydurma", LevelFull},
		{"manager view", models.RoleManager, ActionView, LevelView},
		{"manager start", models.RoleManager, ActionStart, LevelEdit},
		{"manager count", models.RoleManager, ActionCount, LevelEdit},
		{"manager complete", models.RoleManager, ActionComplete, LevelEdit},
		{"manager cancel", models.RoleManager, ActionCancel, LevelEdit},
		{"manager approve", models.RoleManager, ActionApprove, LevelFull},
		{"staff view", models.RoleStaff, ActionView, LevelView},
		{"staff count", models.RoleStaff, ActionCount, LevelEdit},
		{"staff start yasak", models.RoleStaff, ActionStart, LevelNone},
		{"staff complete yasak", models.RoleStaff, ActionComplete, LevelNone},
		{"staff approve yasak", models.RoleStaff, ActionApprove, LevelNone},
		{"bilinmeyen rol none", models.UserRole("stajyer"), ActionView, LevelNone},
		{"bilinmeyen aksiyon none", models.RoleManager, "uydurma", LevelNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Check(tc.role, ModuleInventory, tc.action))
		})
	}
}

func TestCheckUnknownModule(t *testing.T) {
	assert.Equal(t, LevelNone, Check(models.RoleManager, "muhasebe", ActionView))
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelFull.AtLeast(LevelEdit))
	assert.True(t, LevelEdit.AtLeast(LevelEdit))
	assert.True(t, LevelEdit.AtLeast(LevelView))
	assert.False(t, LevelView.AtLeast(LevelEdit))
	assert.False(t, LevelNone.AtLeast(LevelView))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "none", LevelNone.String())
	assert.Equal(t, "view", LevelView.String())
	assert.Equal(t, "edit", LevelEdit.String())
	assert.Equal(t, "full", LevelFull.String())
}
