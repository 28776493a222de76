// Package org loads the organization list view (組織一覧).
package org

import (
	"context"
	"time"

	"yuime-backend/internal/application/directory"
	"yuime-backend/internal/application/filter"
	"yuime-backend/internal/domain"
	"yuime-backend/internal/pkg/constants"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

const Scope = "organizations"

const (
	DimCategory filter.Dimension = "category"
	DimCountry  filter.Dimension = "country"
)

// Service implements directory.Source over the Organizations table.
type Service struct {
	DB *gorm.DB
}

type Row struct {
	OrgID         string         `json:"org_id"`
	Name          string         `json:"name"`
	Category      string         `json:"category"`
	CategoryLabel string         `json:"category_label"`
	Phone         string         `json:"phone"`
	Country       string         `json:"country"`
	RegisteredOn  string         `json:"registered_on"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}

func (s *Service) Scope() string { return Scope }

func (s *Service) Schema() filter.Schema {
	return Schema()
}

// Schema is the organization list facets. Country is open: its options come
// from the loaded rows.
func Schema() filter.Schema {
	return filter.NewSchema(
		filter.Facet{Dimension: DimCategory, Values: constants.OrgCategories, Labels: constants.CategoryLabels},
		filter.Facet{Dimension: DimCountry},
	)
}

func (s *Service) Load(ctx context.Context) ([]directory.Item, error) {
	var orgs []domain.Organization
	if err := s.DB.WithContext(ctx).Order("display_order ASC, created_at ASC").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return lo.Map(orgs, func(o domain.Organization, _ int) directory.Item {
		return directory.Item{Record: ToRecord(o), Row: toRow(o)}
	}), nil
}

// ToRecord maps an organization onto the filter engine's record.
func ToRecord(o domain.Organization) filter.Record {
	fields := []string{o.Name, o.Phone}
	fields = append(fields, directory.AttributeFields(o.Attributes)...)
	return filter.Record{
		ID:     o.OrgID.String(),
		Fields: fields,
		Categories: map[filter.Dimension]string{
			DimCategory: o.Category,
			DimCountry:  o.Country,
		},
	}
}

func toRow(o domain.Organization) Row {
	registered := ""
	if !o.RegisteredOn.IsZero() {
		registered = o.RegisteredOn.Format(time.DateOnly)
	}
	return Row{
		OrgID:         o.OrgID.String(),
		Name:          o.Name,
		Category:      o.Category,
		CategoryLabel: constants.CategoryLabels[o.Category],
		Phone:         o.Phone,
		Country:       o.Country,
		RegisteredOn:  registered,
		Attributes:    o.Attributes,
	}
}
