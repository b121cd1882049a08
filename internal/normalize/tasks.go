package normalize

import (
	"time"

	"opshub/internal/logging"
	"opshub/pkg/models"
)

// Tasks flattens a raw task payload ("data.tasks" array) into TaskRecords.
// Due dates arrive as epoch seconds; an absent or unusable timestamp leaves
// DueDate nil rather than failing the record.
func Tasks(raw any) ([]models.TaskRecord, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, err
	}

	tasks := payload.Get("data.tasks")
	if !tasks.IsArray() {
		return nil, &ShapeError{Got: "document without task list"}
	}

	records := make([]models.TaskRecord, 0, len(tasks.Array()))
	for idx, task := range tasks.Array() {
		if !task.IsObject() {
			logging.Error("Failed to parse task at index %d: not an object", idx)
			continue
		}

		var userIDs []int64
		for _, id := range task.Get("userIds").Array() {
			userIDs = append(userIDs, id.Int())
		}

		record := models.TaskRecord{
			UserIDs: userIDs,
			Status:  task.Get("status").String(),
			Title:   task.Get("title").String(),
		}

		if due := task.Get("dueDate"); due.Exists() && due.Int() > 0 {
			date := time.Unix(due.Int(), 0).UTC().Format("2006-01-02")
			record.DueDate = &date
		}

		records = append(records, record)
	}

	return records, nil
}
