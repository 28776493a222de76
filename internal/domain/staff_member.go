package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StaffMember is a console account of the matching platform (スタッフ).
// Attributes holds free-text profile fields (department, notes) that are searchable.
type StaffMember struct {
	StaffID      uuid.UUID         `gorm:"column:staff_id;type:uuid;primaryKey" json:"staff_id"`
	Name         string            `gorm:"column:name;not null" json:"name"`
	Email        string            `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Role         string            `gorm:"column:role;not null;default:viewer" json:"role"`
	Status       string            `gorm:"column:status;not null;default:active" json:"status"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at" json:"last_login_at"`
	Attributes   datatypes.JSONMap `gorm:"column:attributes" json:"attributes,omitempty"`
	DisplayOrder int               `gorm:"column:display_order;not null;default:0" json:"-"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (StaffMember) TableName() string {
	return "StaffMembers"
}

func (m *StaffMember) BeforeCreate(tx *gorm.DB) error {
	if m.StaffID == uuid.Nil {
		m.StaffID = uuid.New()
	}
	return nil
}
