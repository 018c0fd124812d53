package permission

import (
	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"
)

// Yetki seviyeleri sıralıdır: none < view < edit < full
type Level int

const (
	LevelNone Level = iota
	LevelView
	LevelEdit
	LevelFull
)

func (l Level) AtLeast(required Level) bool {
	return l >= required
}

func (l Level) String() string {
	switch l {
	case LevelView:
		return "view"
	case LevelEdit:
		return "edit"
	case LevelFull:
		return "full"
	default:
		return "none"
	}
}

const ModuleInventory = "inventory"

const (
	ActionView     = "view"
	ActionStart    = "start"
	ActionCount    = "count"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
	ActionApprove  = "approve"
)

// rol → modül → aksiyon → seviye matrisi.
// super_admin matriste yok: her şeye full (wildcard, aşağıda Check içinde).
var matrix = map[models.UserRole]map[string]map[string]Level{
	models.RoleManager: {
		ModuleInventory: {
			ActionView:     LevelView,
			ActionStart:    LevelEdit,
			ActionCount:    LevelEdit,
			ActionComplete: LevelEdit,
			ActionCancel:   LevelEdit,
			ActionApprove:  LevelFull,
		},
	},
	models.RoleStaff: {
		ModuleInventory: {
			ActionView:  LevelView,
			ActionCount: LevelEdit,
			// start/complete/approve yok → none (sayım girer ama oturum yönetemez)
		},
	},
}

// Check: rolün verilen modül+aksiyon için yetki seviyesini döndürür.
// Karar burada uygulanmaz; her operasyon kendisi çağırıp yetersiz
// seviyede kapalı davranır (fail closed).
func Check(role models.UserRole, module, action string) Level {
	if role == models.RoleSuperAdmin {
		return LevelFull
	}
	mods, ok := matrix[role]
	if !ok {
		return LevelNone
	}
	actions, ok := mods[module]
	if !ok {
		return LevelNone
	}
	return actions[action] // yoksa zero value = LevelNone
}

// ForActor: Kullanıcıyı veritabanından bulup rolü üzerinden matrise bakar.
// Kullanıcı bulunamazsa none döner.
func ForActor(actorID uint, module, action string) Level {
	var user models.User
	if err := database.DB.First(&user, actorID).Error; err != nil {
		return LevelNone
	}
	return Check(user.Role, module, action)
}
