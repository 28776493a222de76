// Package staff loads the staff list view (スタッフ一覧).
package staff

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

const Scope = "staff"

const (
	DimStatus filter.Dimension = "status"
	DimRole   filter.Dimension = "role"
)

// Service implements directory.Source over the StaffMembers table.
type Service struct {
	DB *gorm.DB
}

// Row is one line of the staff table.
type Row struct {
	StaffID     string         `json:"staff_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	RoleLabel   string         `json:"role_label"`
	Status      string         `json:"status"`
	StatusLabel string         `json:"status_label"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

func (s *Service) Scope() string { return Scope }

func (s *Service) Schema() filter.Schema {
	return Schema()
}

// Schema is the staff list facets: status then role.
func Schema() filter.Schema {
	return filter.NewSchema(
		filter.Facet{Dimension: DimStatus, Values: constants.StaffStatuses, Labels: constants.StatusLabels},
		filter.Facet{Dimension: DimRole, Values: constants.InviteRoles, Labels: constants.RoleLabels},
	)
}

// Load returns every staff member in display order.
func (s *Service) Load(ctx context.Context) ([]directory.Item, error) {
	var members []domain.StaffMember
	if err := s.DB.WithContext(ctx).Order("display_order ASC, created_at ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return lo.Map(members, func(m domain.StaffMember, _ int) directory.Item {
		return directory.Item{Record: ToRecord(m), Row: toRow(m)}
	}), nil
}

// ToRecord maps a staff member onto the filter engine's record. Name, email
// and every attribute value are searchable; role and status are facets.
func ToRecord(m domain.StaffMember) filter.Record {
	fields := []string{m.Name, m.Email}
	fields = append(fields, directory.AttributeFields(m.Attributes)...)
	return filter.Record{
		ID:     m.StaffID.String(),
		Fields: fields,
		Categories: map[filter.Dimension]string{
			DimStatus: m.Status,
			DimRole:   m.Role,
		},
	}
}

func toRow(m domain.StaffMember) Row {
	return Row{
		StaffID:     m.StaffID.String(),
		Name:        m.Name,
		Email:       m.Email,
		Role:        m.Role,
		RoleLabel:   constants.RoleLabels[m.Role],
		Status:      m.Status,
		StatusLabel: constants.StatusLabels[m.Status],
		LastLoginAt: m.LastLoginAt,
		Attributes:  m.Attributes,
	}
}
