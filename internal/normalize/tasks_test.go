package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasks_FlattensRecord(t *testing.T) {
	records, err := Tasks(map[string]any{
		"data": map[string]any{
			"tasks": []any{
				map[string]any{
					"userIds": []any{5, 9},
					"status":  "active",
					"title":   "Fix unit 4 heater",
					"dueDate": 1735689600, // 2025-01-01 UTC
				},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, []int64{5, 9}, rec.UserIDs)
	assert.Equal(t, "active", rec.Status)
	assert.Equal(t, "Fix unit 4 heater", rec.Title)
	require.NotNil(t, rec.DueDate)
	assert.Equal(t, "2025-01-01", *rec.DueDate)
}

func TestTasks_MissingDueDateStaysNil(t *testing.T) {
	records, err := Tasks(map[string]any{
		"data": map[string]any{
			"tasks": []any{
				map[string]any{"title": "no due date", "status": "active"},
				map[string]any{"title": "zero due date", "dueDate": 0},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[0].DueDate)
	assert.Nil(t, records[1].DueDate)
}

func TestTasks_ShapeErrorOnMissingTaskList(t *testing.T) {
	_, err := Tasks(map[string]any{"data": map[string]any{}})
	var shapeErr *ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
