package jobstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "jobs.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleJob(url string) *Job {
	return &Job{
		SourceID:   "src-1",
		SourceName: "neogov_humboldt_county",
		Title:      "Registered Nurse",
		Employer:   "County of Humboldt",
		Category:   "Healthcare",
		Location:   "Eureka, CA",
		URL:        url,
		SalaryText: "$45/hr",
		SalaryMin:  93600,
		SalaryMax:  93600,
		SalaryType: "hourly",
		JobType:    "Full-time",
		PostedDate: time.Now().UTC().Add(-24 * time.Hour),
		IsActive:   true,
	}
}

func TestUpsertInsertThenUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Upsert(ctx, sampleJob("https://example.com/jobs/1"))
	require.NoError(t, err)
	assert.True(t, created, "first upsert should create")

	updated := sampleJob("https://example.com/jobs/1")
	updated.Title = "Registered Nurse II"
	created, err = store.Upsert(ctx, updated)
	require.NoError(t, err)
	assert.False(t, created, "second upsert should update in place")

	jobs, err := store.LoadActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, jobs.Len())
	assert.Equal(t, "Registered Nurse II", jobs.Items[0].Title)
}

func TestSnapshotIsCached(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, sampleJob("https://example.com/jobs/1"))
	require.NoError(t, err)

	first, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Len())

	// A new row must not show up until the snapshot is invalidated.
	_, err = store.Upsert(ctx, sampleJob("https://example.com/jobs/2"))
	require.NoError(t, err)

	cached, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Len())

	store.InvalidateSnapshot()
	fresh, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Len())
}

func TestEmployersAndCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	nurse := sampleJob("https://example.com/jobs/1")
	teacher := sampleJob("https://example.com/jobs/2")
	teacher.Title = "Teacher"
	teacher.Employer = "Eureka City Schools"
	teacher.Category = "Education"
	clerk := sampleJob("https://example.com/jobs/3")
	clerk.Title = "Clerk"

	for _, job := range []*Job{nurse, teacher, clerk} {
		_, err := store.Upsert(ctx, job)
		require.NoError(t, err)
	}

	employers, err := store.Employers(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, employers, 2)
	assert.Equal(t, "County of Humboldt", employers[0].Name)
	assert.Equal(t, 2, employers[0].JobCount)

	healthcareOnly, err := store.Employers(ctx, "Healthcare", 0)
	require.NoError(t, err)
	require.Len(t, healthcareOnly, 1)

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Healthcare", categories[0].Name)
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, sampleJob("https://example.com/jobs/1"))
	require.NoError(t, err)

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalJobs)
	assert.Equal(t, 1, stats.TotalEmployers)
	require.Len(t, stats.BySource, 1)
	assert.Equal(t, "neogov_humboldt_county", stats.BySource[0].Name)
}

func TestGetMissingJob(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, job)
}
