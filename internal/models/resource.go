package models

import (
	"time"

	"gorm.io/datatypes"
)

// Resource type enumeration.
const (
	TypeDocument = "document"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeOther    = "other"
)

// Resource status enumeration. Any status may move to any other; the
// lifecycle is deliberately unconstrained.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
	StatusArchived = "archived"
)

// Resource is the single entity managed by the catalog. Rows are hard
// deleted; there is no soft-delete column.
type Resource struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_resources_name" json:"name" validate:"required,max=255"`
	Description string         `gorm:"type:text" json:"description"`
	Type        string         `gorm:"type:varchar(32);index;not null;default:other" json:"type" validate:"omitempty,oneof=document image video audio other"`
	Status      string         `gorm:"type:varchar(32);index;not null;default:active" json:"status" validate:"omitempty,oneof=active inactive pending archived"`
	Value       float64        `gorm:"type:numeric(14,2);not null;default:0" json:"value" validate:"gte=0"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ValidType reports whether t is a member of the type enumeration.
func ValidType(t string) bool {
	switch t {
	case TypeDocument, TypeImage, TypeVideo, TypeAudio, TypeOther:
		return true
	}
	return false
}

// ValidStatus reports whether s is a member of the status enumeration.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusArchived:
		return true
	}
	return false
}
