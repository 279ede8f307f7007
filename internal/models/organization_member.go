package models

import (
	"time"

	"github.com/fieldcheck/checklist-api/internal/permissions"
)

type OrganizationMember struct {
	OrganizationID uint64           `gorm:"primarykey" json:"organization_id"`
	UserID         uint64           `gorm:"primarykey" json:"user_id"`
	Role           permissions.Role `gorm:"type:varchar(20);not null" json:"role"`
	// CustomPermissions is the optional per-member overlay on top of the
	// role's base permission set. Keys outside the allowlist are never
	// stored.
	CustomPermissions *permissions.CustomPermissions `gorm:"serializer:json" json:"custom_permissions,omitempty"`
	JoinedAt          time.Time                      `json:"joined_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
