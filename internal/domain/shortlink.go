package domain

import "time"

// ShortLink maps a short code to its destination URL. The code is unique
// and immutable once created; deactivated links keep their row and their
// accumulated click count.
type ShortLink struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	Code       string    `gorm:"column:code;size:64;uniqueIndex;not null" json:"code"`
	URL        string    `gorm:"column:url;type:text;not null" json:"url"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ClickCount int64     `gorm:"column:click_count;not null;default:0" json:"click_count"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Clicks []LinkClick `gorm:"foreignKey:LinkID" json:"clicks,omitempty"`
}

// TableName returns the table name for GORM
func (ShortLink) TableName() string {
	return "short_links"
}
