package domain

import (
	"time"

	"github.com/google/uuid"
)

// Server is a guild the bot operates in. A guild without a Server row is
// unconfigured and the reconciliation stage skips it.
type Server struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Snowflake           string    `json:"snowflake" gorm:"uniqueIndex;not null"`
	Name                string    `json:"name" gorm:"not null"`
	AnnouncementChannel string    `json:"announcementChannel"`
	Roles               []*Role   `json:"roles" gorm:"foreignKey:ServerID"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Role is a Discord role whose membership is driven by condition evaluation
type Role struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ServerID   uuid.UUID    `json:"serverId" gorm:"type:uuid;not null;index"`
	Snowflake  string       `json:"snowflake" gorm:"not null;index"`
	Name       string       `json:"name" gorm:"not null"`
	Announce   bool         `json:"announce" gorm:"not null;default:false"`
	Conditions []*Condition `json:"conditions" gorm:"foreignKey:RoleID"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Test reports whether the user currently meets every condition on the role.
// A role with no conditions matches nobody.
func (r *Role) Test(snapshot *UserSnapshot) bool {
	if len(r.Conditions) == 0 {
		return false
	}
	for _, c := range r.Conditions {
		if !c.Evaluate(snapshot) {
			return false
		}
	}
	return true
}

// FindChampion returns the champion id the role is about, if any of its
// conditions name one. Roles spanning multiple champions return the first.
func (r *Role) FindChampion() (int, bool) {
	for _, c := range r.Conditions {
		if id, ok := c.ChampionID(); ok {
			return id, true
		}
	}
	return 0, false
}
