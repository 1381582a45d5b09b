package domain

import "time"

// LinkClick is one append-only analytics row for a single redirect event.
// Rows are never updated or deleted; all client metadata is best-effort
// and may be absent.
type LinkClick struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	LinkID     int64     `gorm:"column:link_id;not null;index" json:"link_id"`
	IPAddress  *string   `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent  *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	Referrer   *string   `gorm:"column:referrer;size:500" json:"referrer,omitempty"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Browser    *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS         *string   `gorm:"column:os;size:50" json:"os,omitempty"`
	ClickedAt  time.Time `gorm:"column:clicked_at;index" json:"clicked_at"`

	// Relationships
	Link *ShortLink `gorm:"foreignKey:LinkID" json:"link,omitempty"`
}

// TableName returns the table name for GORM
func (LinkClick) TableName() string {
	return "link_clicks"
}

// GetDeviceType returns the device type, or "unknown" when enrichment
// did not run for this click.
func (c *LinkClick) GetDeviceType() string {
	if c.DeviceType != nil {
		return *c.DeviceType
	}
	return "unknown"
}
