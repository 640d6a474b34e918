package repository

import (
	"context"
	"strings"
	"time"

	"github.com/resourcehub/engine/internal/models"
	appErr "github.com/resourcehub/engine/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxNameLength = 255
	MaxPageSize   = 100
)

// ListFilters narrows a resource listing. Nil fields are not applied.
type ListFilters struct {
	Status      *string
	Type        *string
	MinValue    *float64
	MaxValue    *float64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	Limit       int
}

// UpdatePatch is a partial mutation. Nil fields leave the column untouched.
type UpdatePatch struct {
	Name        *string
	Description *string
	Type        *string
	Status      *string
	Value       *float64
	Metadata    datatypes.JSON
}

// ResourceStatistics is the live aggregate view over all resources.
type ResourceStatistics struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"byStatus"`
	ByType       map[string]int64 `json:"byType"`
	TotalValue   float64          `json:"totalValue"`
	AverageValue float64          `json:"averageValue"`
}

// ResourceRepository is the sole boundary between the HTTP layer and the
// store. Business invariants (name, value, enum membership) are enforced
// here; uniqueness is enforced by the store's constraint and mapped to a
// conflict error, never pre-checked.
type ResourceRepository interface {
	Create(ctx context.Context, res *models.Resource) error
	GetByID(ctx context.Context, id int64) (*models.Resource, error)
	List(ctx context.Context, f ListFilters) ([]models.Resource, int64, int, error)
	Update(ctx context.Context, id int64, patch UpdatePatch) (*models.Resource, error)
	Delete(ctx context.Context, id int64) (bool, error)
	BulkCreate(ctx context.Context, list []*models.Resource) error
	Statistics(ctx context.Context) (*ResourceStatistics, error)
}

type resourceRepository struct {
	BaseRepository[models.Resource]
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{BaseRepository: NewBaseRepository[models.Resource](db), db: db}
}

func (r *resourceRepository) Create(ctx context.Context, res *models.Resource) error {
	if err := normalizeResource(res); err != nil {
		return err
	}
	if err := r.Insert(ctx, res); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) {
			return appErr.Wrap(err, appErr.CodeConflict, "resource with this name already exists")
		}
		return err
	}
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id int64) (*models.Resource, error) {
	return r.FindByID(ctx, id)
}

func (r *resourceRepository) List(ctx context.Context, f ListFilters) ([]models.Resource, int64, int, error) {
	if err := validateFilters(f); err != nil {
		return nil, 0, 0, err
	}

	q := r.db.WithContext(ctx).Model(&models.Resource{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.MinValue != nil {
		q = q.Where("value >= ?", *f.MinValue)
	}
	if f.MaxValue != nil {
		q = q.Where("value <= ?", *f.MaxValue)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, 0, appErr.Wrap(err, appErr.CodeInternal, "count resources failed")
	}

	var out []models.Resource
	offset := (f.Page - 1) * f.Limit
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(offset).Find(&out).Error
	if err != nil {
		return nil, 0, 0, appErr.Wrap(err, appErr.CodeInternal, "list resources failed")
	}

	totalPages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return out, total, totalPages, nil
}

func (r *resourceRepository) Update(ctx context.Context, id int64, patch UpdatePatch) (*models.Resource, error) {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	updates, err := patch.toColumnMap()
	if err != nil {
		return nil, err
	}
	// An empty patch still refreshes updated_at.
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(existing).Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, appErr.Wrap(res.Error, appErr.CodeConflict, "resource with this name already exists")
		}
		return nil, appErr.Wrap(res.Error, appErr.CodeInternal, "update resource failed")
	}
	return r.FindByID(ctx, id)
}

func (r *resourceRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.Remove(ctx, id)
}

func (r *resourceRepository) BulkCreate(ctx context.Context, list []*models.Resource) error {
	if len(list) == 0 {
		return appErr.New(appErr.CodeInvalid, "bulk payload must contain at least one resource")
	}
	// Validate everything before persisting anything; the first invalid
	// element aborts the whole batch.
	for i, res := range list {
		if err := normalizeResource(res); err != nil {
			if ae, ok := err.(*appErr.AppError); ok {
				return appErr.Newf(appErr.CodeInvalid, "element %d: %s", i, ae.Message).WithMeta("index", i)
			}
			return err
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&list).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return appErr.Wrap(err, appErr.CodeConflict, "bulk create contains a duplicate resource name")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "bulk create failed")
	}
	return nil
}

func (r *resourceRepository) Statistics(ctx context.Context) (*ResourceStatistics, error) {
	stats := &ResourceStatistics{
		ByStatus: map[string]int64{},
		ByType:   map[string]int64{},
	}

	model := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.Resource{}) }

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "count resources failed")
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	if err := model().Select("status AS key, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "status aggregate failed")
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	var byType []bucket
	if err := model().Select("type AS key, COUNT(*) AS count").Group("type").Scan(&byType).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "type aggregate failed")
	}
	for _, b := range byType {
		stats.ByType[b.Key] = b.Count
	}

	var values struct {
		TotalValue   float64
		AverageValue float64
	}
	err := model().
		Select("COALESCE(SUM(value), 0) AS total_value, COALESCE(AVG(value), 0) AS average_value").
		Scan(&values).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "value aggregate failed")
	}
	stats.TotalValue = values.TotalValue
	stats.AverageValue = values.AverageValue

	return stats, nil
}

// normalizeResource trims, defaults, and validates a resource before insert.
func normalizeResource(res *models.Resource) error {
	res.Name = strings.TrimSpace(res.Name)
	if res.Name == "" {
		return appErr.New(appErr.CodeInvalid, "name must not be empty")
	}
	if len(res.Name) > maxNameLength {
		return appErr.Newf(appErr.CodeInvalid, "name must be at most %d characters", maxNameLength)
	}
	if res.Value < 0 {
		return appErr.New(appErr.CodeInvalid, "value must be non-negative")
	}
	if res.Type == "" {
		res.Type = models.TypeOther
	} else if !models.ValidType(res.Type) {
		return appErr.Newf(appErr.CodeInvalid, "invalid type %q", res.Type)
	}
	if res.Status == "" {
		res.Status = models.StatusActive
	} else if !models.ValidStatus(res.Status) {
		return appErr.Newf(appErr.CodeInvalid, "invalid status %q", res.Status)
	}
	return nil
}

func validateFilters(f ListFilters) error {
	if f.Page < 1 {
		return appErr.New(appErr.CodeInvalid, "page must be >= 1")
	}
	if f.Limit < 1 || f.Limit > MaxPageSize {
		return appErr.Newf(appErr.CodeInvalid, "limit must be between 1 and %d", MaxPageSize)
	}
	if f.Status != nil && !models.ValidStatus(*f.Status) {
		return appErr.Newf(appErr.CodeInvalid, "invalid status %q", *f.Status)
	}
	if f.Type != nil && !models.ValidType(*f.Type) {
		return appErr.Newf(appErr.CodeInvalid, "invalid type %q", *f.Type)
	}
	return nil
}

func (p UpdatePatch) toColumnMap() (map[string]any, error) {
	updates := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, appErr.New(appErr.CodeInvalid, "name must not be empty")
		}
		if len(name) > maxNameLength {
			return nil, appErr.Newf(appErr.CodeInvalid, "name must be at most %d characters", maxNameLength)
		}
		updates["name"] = name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Type != nil {
		if !models.ValidType(*p.Type) {
			return nil, appErr.Newf(appErr.CodeInvalid, "invalid type %q", *p.Type)
		}
		updates["type"] = *p.Type
	}
	if p.Status != nil {
		if !models.ValidStatus(*p.Status) {
			return nil, appErr.Newf(appErr.CodeInvalid, "invalid status %q", *p.Status)
		}
		updates["status"] = *p.Status
	}
	if p.Value != nil {
		if *p.Value < 0 {
			return nil, appErr.New(appErr.CodeInvalid, "value must be non-negative")
		}
		updates["value"] = *p.Value
	}
	if p.Metadata != nil {
		updates["metadata"] = p.Metadata
	}
	return updates, nil
}
