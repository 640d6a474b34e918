package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/resourcehub/engine/internal/models"
	appErr "github.com/resourcehub/engine/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Resource{}))
	return db
}

func newTestRepo(t *testing.T) ResourceRepository {
	t.Helper()
	return NewResourceRepository(newTestDB(t))
}

func mustCreate(t *testing.T, repo ResourceRepository, res *models.Resource) *models.Resource {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), res))
	return res
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestCreateAppliesDefaultsAndAssignsDistinctIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := &models.Resource{Name: "Doc A", Value: 10}
	require.NoError(t, repo.Create(ctx, a))
	require.NotZero(t, a.ID)
	require.Equal(t, models.StatusActive, a.Status)
	require.Equal(t, models.TypeOther, a.Type)
	require.False(t, a.CreatedAt.IsZero())
	require.False(t, a.UpdatedAt.IsZero())

	b := &models.Resource{Name: "Doc B", Value: 5}
	require.NoError(t, repo.Create(ctx, b))
	require.NotEqual(t, a.ID, b.ID)
}

func TestCreateTrimsNameAndRejectsInvalidInput(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	res := mustCreate(t, repo, &models.Resource{Name: "  padded  ", Value: 1})
	require.Equal(t, "padded", res.Name)

	cases := []struct {
		name string
		res  *models.Resource
	}{
		{"empty name", &models.Resource{Name: "   ", Value: 1}},
		{"negative value", &models.Resource{Name: "neg", Value: -0.01}},
		{"unknown type", &models.Resource{Name: "t", Value: 1, Type: "spreadsheet"}},
		{"unknown status", &models.Resource{Name: "s", Value: 1, Status: "paused"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.Create(ctx, tc.res)
			require.Error(t, err)
			require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
		})
	}
}

func TestCreateDuplicateNameIsConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, &models.Resource{Name: "unique", Value: 1})
	err := repo.Create(ctx, &models.Resource{Name: "unique", Value: 2})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func TestGetByIDRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	meta := datatypes.JSON([]byte(`{"source":"import","batch":7}`))
	created := mustCreate(t, repo, &models.Resource{
		Name:        "Doc A",
		Description: "first document",
		Type:        models.TypeDocument,
		Status:      models.StatusPending,
		Value:       10,
		Metadata:    meta,
	})

	got, err := repo.GetByID(ctx, int64(created.ID))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "Doc A", got.Name)
	require.Equal(t, "first document", got.Description)
	require.Equal(t, models.TypeDocument, got.Type)
	require.Equal(t, models.StatusPending, got.Status)
	require.Equal(t, 10.0, got.Value)
	require.JSONEq(t, string(meta), string(got.Metadata))
}

func TestGetByIDMissingIsNilNotError(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGetByIDRejectsNonPositiveID(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 0)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestUpdatePartialPatchTouchesOnlySuppliedFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := mustCreate(t, repo, &models.Resource{Name: "before", Description: "keep me", Value: 3})

	got, err := repo.Update(ctx, int64(created.ID), UpdatePatch{
		Name:   strPtr("after"),
		Status: strPtr(models.StatusArchived),
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "after", got.Name)
	require.Equal(t, models.StatusArchived, got.Status)
	require.Equal(t, "keep me", got.Description)
	require.Equal(t, 3.0, got.Value)
	require.Equal(t, models.TypeOther, got.Type)
}

func TestUpdateEmptyPatchRefreshesOnlyUpdatedAt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := mustCreate(t, repo, &models.Resource{Name: "stable", Value: 7})
	before, err := repo.GetByID(ctx, int64(created.ID))
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	got, err := repo.Update(ctx, int64(created.ID), UpdatePatch{})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, before.Name, got.Name)
	require.Equal(t, before.Description, got.Description)
	require.Equal(t, before.Type, got.Type)
	require.Equal(t, before.Status, got.Status)
	require.Equal(t, before.Value, got.Value)
	require.True(t, got.UpdatedAt.After(before.UpdatedAt))
}

func TestUpdateMissingIsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Update(context.Background(), 424242, UpdatePatch{Name: strPtr("x")})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpdateRejectsInvalidFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := mustCreate(t, repo, &models.Resource{Name: "victim", Value: 1})

	cases := []struct {
		name  string
		patch UpdatePatch
	}{
		{"blank name", UpdatePatch{Name: strPtr("   ")}},
		{"negative value", UpdatePatch{Value: f64Ptr(-1)}},
		{"unknown status", UpdatePatch{Status: strPtr("halted")}},
		{"unknown type", UpdatePatch{Type: strPtr("binary")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Update(ctx, int64(created.ID), tc.patch)
			require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
		})
	}
}

func TestUpdateToDuplicateNameIsConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, &models.Resource{Name: "first", Value: 1})
	second := mustCreate(t, repo, &models.Resource{Name: "second", Value: 1})

	_, err := repo.Update(ctx, int64(second.ID), UpdatePatch{Name: strPtr("first")})
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func TestDeleteRemovesRowAndSecondDeleteIsFalse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := mustCreate(t, repo, &models.Resource{Name: "doomed", Value: 1})

	removed, err := repo.Delete(ctx, int64(created.ID))
	require.NoError(t, err)
	require.True(t, removed)

	got, err := repo.GetByID(ctx, int64(created.ID))
	require.NoError(t, err)
	require.Nil(t, got)

	removed, err = repo.Delete(ctx, int64(created.ID))
	require.NoError(t, err)
	require.False(t, removed)
}

func seedListFixtures(t *testing.T, repo ResourceRepository) {
	t.Helper()
	fixtures := []*models.Resource{
		{Name: "img-1", Type: models.TypeImage, Status: models.StatusActive, Value: 10},
		{Name: "img-2", Type: models.TypeImage, Status: models.StatusInactive, Value: 20},
		{Name: "doc-1", Type: models.TypeDocument, Status: models.StatusActive, Value: 30},
		{Name: "doc-2", Type: models.TypeDocument, Status: models.StatusActive, Value: 40},
		{Name: "vid-1", Type: models.TypeVideo, Status: models.StatusArchived, Value: 50},
	}
	for _, f := range fixtures {
		mustCreate(t, repo, f)
	}
}

func TestListFiltersAndCountsIndependentlyOfPagination(t *testing.T) {
	repo := newTestRepo(t)
	seedListFixtures(t, repo)
	ctx := context.Background()

	items, total, totalPages, err := repo.List(ctx, ListFilters{
		Status: strPtr(models.StatusActive),
		Page:   1,
		Limit:  2,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.EqualValues(t, 3, total)
	require.Equal(t, 2, totalPages)
	for _, it := range items {
		require.Equal(t, models.StatusActive, it.Status)
	}

	// Page past the data is empty, total unchanged.
	items, total, _, err = repo.List(ctx, ListFilters{
		Status: strPtr(models.StatusActive),
		Page:   3,
		Limit:  2,
	})
	require.NoError(t, err)
	require.Empty(t, items)
	require.EqualValues(t, 3, total)
}

func TestListValueRangeFilter(t *testing.T) {
	repo := newTestRepo(t)
	seedListFixtures(t, repo)

	items, total, _, err := repo.List(context.Background(), ListFilters{
		MinValue: f64Ptr(20),
		MaxValue: f64Ptr(40),
		Page:     1,
		Limit:    100,
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	for _, it := range items {
		require.GreaterOrEqual(t, it.Value, 20.0)
		require.LessOrEqual(t, it.Value, 40.0)
	}
}

func TestBaseInsertMapsUniqueViolationToConflict(t *testing.T) {
	base := NewBaseRepository[models.Resource](newTestDB(t))
	ctx := context.Background()

	first := &models.Resource{Name: "base", Type: models.TypeOther, Status: models.StatusActive, Value: 1}
	require.NoError(t, base.Insert(ctx, first))
	require.NotZero(t, first.ID)

	err := base.Insert(ctx, &models.Resource{Name: "base", Type: models.TypeOther, Status: models.StatusActive, Value: 2})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func seedDatedResources(t *testing.T, repo ResourceRepository) (jan1, jan15, feb1 *models.Resource) {
	t.Helper()
	jan1 = &models.Resource{Name: "jan-1", Value: 1,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	jan15 = &models.Resource{Name: "jan-15", Value: 2,
		CreatedAt: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	feb1 = &models.Resource{Name: "feb-1", Value: 3,
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	for _, r := range []*models.Resource{jan1, jan15, feb1} {
		mustCreate(t, repo, r)
	}
	return jan1, jan15, feb1
}

func TestListCreatedDateRangeBoundsAreInclusive(t *testing.T) {
	repo := newTestRepo(t)
	_, jan15, feb1 := seedDatedResources(t, repo)
	ctx := context.Background()

	// Lower bound equal to a row's timestamp keeps that row.
	from := jan15.CreatedAt
	items, total, _, err := repo.List(ctx, ListFilters{CreatedFrom: &from, Page: 1, Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	names := []string{items[0].Name, items[1].Name}
	require.ElementsMatch(t, []string{"jan-15", "feb-1"}, names)

	// Upper bound equal to a row's timestamp keeps that row too.
	to := feb1.CreatedAt
	_, total, _, err = repo.List(ctx, ListFilters{CreatedTo: &to, Page: 1, Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	// A window between the bounds drops rows on either side.
	from = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	to = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	items, total, _, err = repo.List(ctx, ListFilters{CreatedFrom: &from, CreatedTo: &to, Page: 1, Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "jan-15", items[0].Name)
}

func TestListOrdersNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	seedListFixtures(t, repo)

	items, _, _, err := repo.List(context.Background(), ListFilters{Page: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		require.False(t, prev.CreatedAt.Before(cur.CreatedAt))
		if prev.CreatedAt.Equal(cur.CreatedAt) {
			require.Greater(t, prev.ID, cur.ID)
		}
	}
}

func TestListRejectsOutOfRangePagination(t *testing.T) {
	repo := newTestRepo(t)

	_, _, _, err := repo.List(context.Background(), ListFilters{Page: 0, Limit: 10})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, _, _, err = repo.List(context.Background(), ListFilters{Page: 1, Limit: 101})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestBulkCreateAllOrNothingValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.BulkCreate(ctx, []*models.Resource{
		{Name: "A", Value: 1},
		{Name: "", Value: 2},
	})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	require.Contains(t, err.Error(), "element 1")

	// Nothing was persisted.
	_, total, _, err := repo.List(ctx, ListFilters{Page: 1, Limit: 100})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestBulkCreatePersistsAllElements(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	list := []*models.Resource{
		{Name: "bulk-1", Value: 1},
		{Name: "bulk-2", Value: 2, Type: models.TypeAudio},
		{Name: "bulk-3", Value: 3, Status: models.StatusPending},
	}
	require.NoError(t, repo.BulkCreate(ctx, list))
	for _, res := range list {
		require.NotZero(t, res.ID)
	}

	_, total, _, err := repo.List(ctx, ListFilters{Page: 1, Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
}

func TestBulkCreateRejectsEmptyList(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.BulkCreate(context.Background(), nil)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestStatisticsAggregates(t *testing.T) {
	repo := newTestRepo(t)
	seedListFixtures(t, repo)

	stats, err := repo.Statistics(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5, stats.Total)
	require.EqualValues(t, 3, stats.ByStatus[models.StatusActive])
	require.EqualValues(t, 1, stats.ByStatus[models.StatusInactive])
	require.EqualValues(t, 1, stats.ByStatus[models.StatusArchived])
	require.EqualValues(t, 2, stats.ByType[models.TypeImage])
	require.EqualValues(t, 2, stats.ByType[models.TypeDocument])
	require.EqualValues(t, 1, stats.ByType[models.TypeVideo])
	require.InDelta(t, 150.0, stats.TotalValue, 0.001)
	require.InDelta(t, 30.0, stats.AverageValue, 0.001)
}

func TestStatisticsOnEmptyTable(t *testing.T) {
	repo := newTestRepo(t)

	stats, err := repo.Statistics(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.Total)
	require.Empty(t, stats.ByStatus)
	require.Empty(t, stats.ByType)
	require.Zero(t, stats.TotalValue)
	require.Zero(t, stats.AverageValue)
}
