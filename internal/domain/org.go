package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Organization is a partner organization (sending, receiving, support or referral agency).
type Organization struct {
	OrgID        uuid.UUID         `gorm:"column:org_id;type:uuid;primaryKey" json:"org_id"`
	Name         string            `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Category     string            `gorm:"column:category;not null" json:"category"`
	Phone        string            `gorm:"column:phone" json:"phone"`
	Country      string            `gorm:"column:country;not null" json:"country"`
	RegisteredOn time.Time         `gorm:"column:registered_on" json:"registered_on"`
	Attributes   datatypes.JSONMap `gorm:"column:attributes" json:"attributes,omitempty"`
	DisplayOrder int               `gorm:"column:display_order;not null;default:0" json:"-"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (Organization) TableName() string {
	return "Organizations"
}

// BeforeCreate ensures org_id is set for DBs without default uuid.
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.OrgID == uuid.Nil {
		o.OrgID = uuid.New()
	}
	return nil
}
