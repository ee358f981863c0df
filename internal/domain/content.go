package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ContentType identifies one of the record kinds managed by the CMS
type ContentType string

const (
	TypeNews        ContentType = "news"
	TypeEvent       ContentType = "events"
	TypeProgram     ContentType = "programs"
	TypeStartup     ContentType = "startups"
	TypeGallery     ContentType = "gallery"
	TypeReport      ContentType = "reports"
	TypeFAQ         ContentType = "faqs"
	TypeTeam        ContentType = "team"
	TypeTestimonial ContentType = "testimonials"
	TypePartner     ContentType = "partners"
	TypeTender      ContentType = "tenders"
	TypeHomepage    ContentType = "homepage"
)

// Status is the publication state shared by every content type
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ParseStatus validates a status string; empty means draft
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case "":
		return StatusDraft, true
	case StatusDraft, StatusPublished, StatusArchived:
		return Status(s), true
	default:
		return "", false
	}
}

// Record is the generic document stored in each content type's table.
// Type specific fields live in Fields; the table is chosen per query.
type Record struct {
	ID          string            `gorm:"column:id;primaryKey;size:36" json:"id"`
	Slug        *string           `gorm:"column:slug;size:191" json:"slug,omitempty"`
	Status      Status            `gorm:"column:status;size:20;not null" json:"status"`
	PublishedAt *time.Time        `gorm:"column:published_at" json:"publishedAt,omitempty"`
	Fields      datatypes.JSONMap `gorm:"column:fields;type:json" json:"fields"`
	CreatedAt   time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

// SlugValue returns the slug or "" when the type has none
func (r *Record) SlugValue() string {
	if r.Slug == nil {
		return ""
	}
	return *r.Slug
}

// IsPublished reports whether the record is visible on the public site
func (r *Record) IsPublished() bool {
	return r.Status == StatusPublished
}

// ToResponse flattens the record into the shape the dashboard consumes:
// system fields next to the type specific ones.
func (r *Record) ToResponse(contentType ContentType) map[string]any {
	out := make(map[string]any, len(r.Fields)+7)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	out["type"] = contentType
	out["status"] = r.Status
	out["createdAt"] = r.CreatedAt
	out["updatedAt"] = r.UpdatedAt
	if r.Slug != nil {
		out["slug"] = *r.Slug
	}
	if r.PublishedAt != nil {
		out["publishedAt"] = r.PublishedAt
	}
	return out
}

// ListOptions filters and pages record listings
type ListOptions struct {
	Status Status
	Search string
	// SearchFields names the JSON fields Search is matched against; the slug is always matched
	SearchFields []string
	Page         int
	Limit        int
}

// Normalize applies paging defaults: page 1, limit 20, limit capped at 100
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 || o.Limit > 100 {
		o.Limit = 20
	}
}

// Offset returns the row offset for the current page
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// UploadedFile is a file attached to a create/update request, already opened
type UploadedFile struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (ReadSeekCloser, error)
}

// ReadSeekCloser is what multipart.File provides
type ReadSeekCloser interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

// ContentInput is a create/update submission after transport decoding
type ContentInput struct {
	Values        map[string]any
	Files         []UploadedFile
	ReplaceImages bool
	RemoveFiles   []string
}

// Has reports whether a value was submitted for the field
func (in *ContentInput) Has(field string) bool {
	if in == nil || in.Values == nil {
		return false
	}
	_, ok := in.Values[field]
	return ok
}
