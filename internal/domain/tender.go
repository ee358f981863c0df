package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// TenderKind discriminates tenders from circulars in the shared table
type TenderKind string

const (
	TenderKindTender   TenderKind = "tender"
	TenderKindCircular TenderKind = "circular"
)

// Tender is one version in a tender/circular revision chain.
// ParentID names the first version of the chain (itself for version 1).
type Tender struct {
	ID           string            `gorm:"column:id;primaryKey;size:36" json:"id"`
	Type         TenderKind        `gorm:"column:type;size:20;not null;index:idx_tenders_type_latest" json:"type"`
	Title        string            `gorm:"column:title;size:255;not null" json:"title"`
	Date         *time.Time        `gorm:"column:date" json:"date"`
	Status       Status            `gorm:"column:status;size:20;not null" json:"status"`
	PublishedAt  *time.Time        `gorm:"column:published_at" json:"publishedAt,omitempty"`
	Fields       datatypes.JSONMap `gorm:"column:fields;type:json" json:"fields"`
	File         string            `gorm:"column:file;size:512" json:"file,omitempty"`
	ParentID     string            `gorm:"column:parent_id;size:36;not null;uniqueIndex:idx_tenders_parent_version" json:"parentId"`
	Version      int               `gorm:"column:version;not null;uniqueIndex:idx_tenders_parent_version" json:"version"`
	IsLatest     bool              `gorm:"column:is_latest;not null;index:idx_tenders_type_latest" json:"isLatest"`
	PreviousData datatypes.JSONMap `gorm:"column:previous_data;type:json" json:"previousData,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

func (Tender) TableName() string { return "tenders" }

// TenderSnapshot is the copy of a version's mutable fields kept on its successor
type TenderSnapshot struct {
	Title  string         `json:"title"`
	Type   TenderKind     `json:"type"`
	Date   *time.Time     `json:"date,omitempty"`
	Status Status         `json:"status"`
	File   string         `json:"file,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Snapshot captures t's mutable fields as a detached JSON document.
// The JSON round trip deep-copies nested values so later edits to t never leak in.
func (t *Tender) Snapshot() (datatypes.JSONMap, error) {
	snap := TenderSnapshot{
		Title:  t.Title,
		Type:   t.Type,
		Date:   t.Date,
		Status: t.Status,
		File:   t.File,
		Fields: t.Fields,
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	var out datatypes.JSONMap
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PreviousSnapshot decodes PreviousData; nil for the first version of a chain
func (t *Tender) PreviousSnapshot() (*TenderSnapshot, error) {
	if len(t.PreviousData) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(t.PreviousData)
	if err != nil {
		return nil, err
	}
	var snap TenderSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ToResponse flattens the version for the dashboard
func (t *Tender) ToResponse() map[string]any {
	out := make(map[string]any, len(t.Fields)+14)
	for k, v := range t.Fields {
		out[k] = v
	}
	out["id"] = t.ID
	out["type"] = t.Type
	out["title"] = t.Title
	out["date"] = t.Date
	out["status"] = t.Status
	out["file"] = t.File
	out["parentId"] = t.ParentID
	out["version"] = t.Version
	out["isLatest"] = t.IsLatest
	out["createdAt"] = t.CreatedAt
	out["updatedAt"] = t.UpdatedAt
	if t.PublishedAt != nil {
		out["publishedAt"] = t.PublishedAt
	}
	if len(t.PreviousData) > 0 {
		out["previousData"] = t.PreviousData
	}
	return out
}

// TenderListOptions filters the tender listing
type TenderListOptions struct {
	ListOptions
	Kind        TenderKind
	AllVersions bool
}
