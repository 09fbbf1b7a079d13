package stores

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lightingboq/engine"
)

type versionRow struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	ProjectID     string          `gorm:"not null;type:varchar(64);uniqueIndex:idx_boq_project_number"`
	Number        int             `gorm:"not null;uniqueIndex:idx_boq_project_number"`
	Status        string          `gorm:"not null;type:varchar(16);default:'DRAFT'"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	MarginPercent decimal.Decimal `gorm:"type:numeric(9,4);not null"`
	GrandTotal    decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	CreatedAt     time.Time
	ApprovedAt    *time.Time

	LineItems []lineItemRow `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE"`
}

func (versionRow) TableName() string {
	return "boq_versions"
}

type lineItemRow struct {
	ID        uint   `gorm:"primaryKey"`
	VersionID string `gorm:"not null;type:varchar(36);index"`
	SortOrder int    `gorm:"not null"`
	Kind      string `gorm:"not null;type:varchar(16)"`
	ItemID    string `gorm:"type:varchar(64)"`
	Code      string
	Name      string `gorm:"not null"`
	Scope     string
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Total     decimal.Decimal `gorm:"type:numeric(18,4);not null"`
}

func (lineItemRow) TableName() string {
	return "boq_line_items"
}

// GormVersions stores BOQ versions in an external SQL database through gorm.
type GormVersions struct {
	db *gorm.DB
}

// OpenGormVersions connects to Postgres and migrates the version tables.
func OpenGormVersions(dsn string) (*GormVersions, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewGormVersions(db)
}

func NewGormVersions(db *gorm.DB) (*GormVersions, error) {
	if err := db.AutoMigrate(&versionRow{}, &lineItemRow{}); err != nil {
		return nil, fmt.Errorf("migrate version tables: %w", err)
	}
	log.Println("stores: version tables migrated")
	return &GormVersions{db: db}, nil
}

func (g *GormVersions) SaveVersion(ctx context.Context, v engine.BOQVersion) (engine.BOQVersion, error) {
	var saved versionRow
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if v.ID == "" {
			var count int64
			if err := tx.Model(&versionRow{}).
				Where("project_id = ? AND number = ?", v.ProjectID, v.Number).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return &engine.VersionLockedError{ProjectID: v.ProjectID, Number: v.Number, Reason: "version number already exists"}
			}
			row := toVersionRow(v)
			row.ID = uuid.NewString()
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			saved = row
			return nil
		}

		var row versionRow
		if err := tx.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order")
		}).Where("id = ?", v.ID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &engine.NotFoundError{Entity: "BOQ version", ID: v.ID}
			}
			return err
		}
		if row.Status == string(engine.StatusApproved) {
			return &engine.VersionLockedError{ProjectID: row.ProjectID, Number: row.Number, Reason: "version is approved"}
		}
		updates := map[string]any{
			"status":         string(v.Status),
			"margin_percent": v.MarginPercent,
			"grand_total":    v.GrandTotal,
			"approved_at":    v.ApprovedAt,
		}
		if err := tx.Model(&row).Updates(updates).Error; err != nil {
			return err
		}
		row.Status = string(v.Status)
		row.MarginPercent = v.MarginPercent
		row.GrandTotal = v.GrandTotal
		row.ApprovedAt = v.ApprovedAt
		saved = row
		return nil
	})
	if err != nil {
		var locked *engine.VersionLockedError
		var notFound *engine.NotFoundError
		if errors.As(err, &locked) || errors.As(err, &notFound) {
			return engine.BOQVersion{}, err
		}
		return engine.BOQVersion{}, fmt.Errorf("save version %d of project %s: %w", v.Number, v.ProjectID, err)
	}
	return fromVersionRow(saved), nil
}

func (g *GormVersions) LoadVersions(ctx context.Context, projectID string) ([]engine.BOQVersion, error) {
	var rows []versionRow
	err := g.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("project_id = ?", projectID).
		Order("number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list versions of project %s: %w", projectID, err)
	}
	out := make([]engine.BOQVersion, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromVersionRow(r))
	}
	return out, nil
}

func (g *GormVersions) LoadLatest(ctx context.Context, projectID string) (*engine.BOQVersion, error) {
	var row versionRow
	err := g.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("project_id = ?", projectID).
		Order("number DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest version of project %s: %w", projectID, err)
	}
	v := fromVersionRow(row)
	return &v, nil
}

func toVersionRow(v engine.BOQVersion) versionRow {
	row := versionRow{
		ID:            v.ID,
		ProjectID:     v.ProjectID,
		Number:        v.Number,
		Status:        string(v.Status),
		Subtotal:      v.Subtotal,
		MarginPercent: v.MarginPercent,
		GrandTotal:    v.GrandTotal,
		CreatedAt:     v.CreatedAt,
		ApprovedAt:    v.ApprovedAt,
		LineItems:     make([]lineItemRow, 0, len(v.LineItems)),
	}
	for _, li := range v.LineItems {
		row.LineItems = append(row.LineItems, lineItemRow{
			VersionID: v.ID,
			SortOrder: li.SortOrder,
			Kind:      string(li.Kind),
			ItemID:    li.ItemID,
			Code:      li.Code,
			Name:      li.Name,
			Scope:     li.Scope,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Total:     li.Total,
		})
	}
	return row
}

func fromVersionRow(r versionRow) engine.BOQVersion {
	v := engine.BOQVersion{
		ID:            r.ID,
		ProjectID:     r.ProjectID,
		Number:        r.Number,
		Status:        engine.Status(r.Status),
		LineItems:     make([]engine.BOQLineItem, 0, len(r.LineItems)),
		Subtotal:      r.Subtotal,
		MarginPercent: r.MarginPercent,
		GrandTotal:    r.GrandTotal,
		CreatedAt:     r.CreatedAt,
		ApprovedAt:    r.ApprovedAt,
	}
	for _, li := range r.LineItems {
		v.LineItems = append(v.LineItems, engine.BOQLineItem{
			SortOrder: li.SortOrder,
			Kind:      engine.Kind(li.Kind),
			ItemID:    li.ItemID,
			Code:      li.Code,
			Name:      li.Name,
			Scope:     li.Scope,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Total:     li.Total,
		})
	}
	return v
}
