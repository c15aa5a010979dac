package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Champion is a static-data record synced from Data Dragon. Key is the
// numeric id the mastery and match endpoints report.
type Champion struct {
	Key          int            `json:"key" gorm:"primaryKey"`    // e.g., 266
	ID           string         `json:"id" gorm:"not null;index"` // e.g., "Aatrox"
	Name         string         `json:"name" gorm:"not null"`     // Display name
	Title        string         `json:"title"`                    // e.g., "the Darkin Blade"
	IconURL      string         `json:"iconUrl" gorm:"not null"`
	SplashURL    string         `json:"splashUrl" gorm:"not null"`
	Tags         datatypes.JSON `json:"tags" gorm:"type:jsonb"` // ["Fighter", "Tank"]
	LastSyncedAt time.Time      `json:"lastSyncedAt"`
}
