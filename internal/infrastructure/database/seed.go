package database

import (
	"context"
	"time"

	"yuime-backend/internal/domain"
	"yuime-backend/internal/pkg/constants"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed loads the sample staff and organizations into empty tables.
// Tables that already hold rows are left alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.StaffMember{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Create(sampleStaff()).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&domain.Organization{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Create(sampleOrganizations()).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func sampleStaff() []domain.StaffMember {
	login := func(s string) *time.Time {
		t, _ := time.ParseInLocation("2006-01-02 15:04", s, jst)
		return &t
	}
	return []domain.StaffMember{
		{Name: "山田太郎", Email: "yamada@example.com", Role: constants.Admin, Status: constants.StatusActive, LastLoginAt: login("2024-05-20 14:30"), DisplayOrder: 1},
		{Name: "佐藤花子", Email: "sato@example.com", Role: constants.Operator, Status: constants.StatusActive, LastLoginAt: login("2024-05-21 09:15"), DisplayOrder: 2},
		{Name: "鈴木健太", Email: "suzuki@example.com", Role: constants.Viewer, Status: constants.StatusInactive, LastLoginAt: login("2024-04-15 11:20"), DisplayOrder: 3},
		{Name: "花子渡辺", Email: "hanako@example.com", Role: constants.Viewer, Status: constants.StatusInactive, LastLoginAt: login("2024-04-15 11:20"), DisplayOrder: 4,
			Attributes: datatypes.JSONMap{"department": "営業部"}},
	}
}

func sampleOrganizations() []domain.Organization {
	day := func(s string) time.Time {
		t, _ := time.ParseInLocation("2006-01-02", s, jst)
		return t
	}
	return []domain.Organization{
		{Name: "株式会社グローバル人材", Category: constants.CategorySending, Phone: "03-1234-5678", Country: "ベトナム", RegisteredOn: day("2024-01-15"), DisplayOrder: 1},
		{Name: "東京製造業協同組合", Category: constants.CategoryReceiving, Phone: "03-9876-5432", Country: "日本", RegisteredOn: day("2024-02-20"), DisplayOrder: 2},
		{Name: "インターナショナルサポート", Category: constants.CategorySupport, Phone: "06-1111-2222", Country: "フィリピン", RegisteredOn: day("2024-03-10"), DisplayOrder: 3},
		{Name: "人材紹介センター", Category: constants.CategoryReferral, Phone: "052-3333-4444", Country: "インドネシア", RegisteredOn: day("2024-04-05"), DisplayOrder: 4},
	}
}

var jst = time.FixedZone("JST", 9*60*60)
