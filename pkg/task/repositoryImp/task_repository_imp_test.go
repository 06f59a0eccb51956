package repositoryImp

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprout/database"
	"sprout/entities"
	"sprout/pkg/task/repository"
)

func newRepo(t *testing.T) repository.TaskRepository {
	t.Helper()
	db := database.OpenSQLite(filepath.Join(t.TempDir(), "sprout.db"))
	return New(db)
}

func taskDue(due string) entities.ScheduledTask {
	d, _ := time.Parse("2006-01-02", due)
	return entities.ScheduledTask{
		TaskID: uuid.NewString(), PlantID: 1, UserID: "u1",
		Type: entities.TaskWater, Title: "Water", DueDate: d,
		Status: entities.StatusPending,
		Source: entities.ProtocolSource{Stage: "vegetative"},
	}
}

func TestListForUserDateFilter(t *testing.T) {
	r := newRepo(t)
	_, err := r.BulkInsert([]entities.ScheduledTask{
		taskDue("2026-03-10"), taskDue("2026-03-20"), taskDue("2026-03-30"),
	})
	require.NoError(t, err)

	out, err := r.ListForUser("u1", "2026-03-15", "2026-03-25")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2026-03-20", out[0].DueDate.Format("2006-01-02"))

	out, err = r.ListForUser("u1", "", "")
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestListForUserRejectsBadDates(t *testing.T) {
	r := newRepo(t)

	_, err := r.ListForUser("u1", "03/15/2026", "")
	assert.ErrorIs(t, err, repository.ErrBadDateRange)

	_, err = r.ListForUser("u1", "", "not-a-date")
	assert.ErrorIs(t, err, repository.ErrBadDateRange)
}
