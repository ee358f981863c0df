package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultHomepageSections are seeded by the migration so the public site always has content slots
var DefaultHomepageSections = []string{"hero", "about", "stats", "programs", "cta", "contact"}

// HomepageSection is a singleton content block of the public homepage
type HomepageSection struct {
	ID        string            `gorm:"column:id;primaryKey;size:36" json:"id"`
	Key       string            `gorm:"column:key;size:64;not null;uniqueIndex:idx_homepage_sections_key" json:"key"`
	Fields    datatypes.JSONMap `gorm:"column:fields;type:json" json:"fields"`
	Image     string            `gorm:"column:image;size:512" json:"image,omitempty"`
	Status    Status            `gorm:"column:status;size:20;not null" json:"status"`
	CreatedAt time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

func (HomepageSection) TableName() string { return "homepage_sections" }

// ToResponse flattens the section for API consumers
func (h *HomepageSection) ToResponse() map[string]any {
	out := make(map[string]any, len(h.Fields)+6)
	for k, v := range h.Fields {
		out[k] = v
	}
	out["id"] = h.ID
	out["key"] = h.Key
	out["status"] = h.Status
	out["updatedAt"] = h.UpdatedAt
	if h.Image != "" {
		out["image"] = h.Image
	}
	return out
}
