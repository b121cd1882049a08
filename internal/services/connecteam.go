package services

import (
	"context"
	"errors"
	"strings"

	"opshub/internal/cache"
	"opshub/internal/config"
	"opshub/internal/gateway"
	"opshub/internal/logging"
	"opshub/internal/normalize"
	"opshub/internal/resilience"
	"opshub/internal/upstream/connecteam"
	"opshub/pkg/models"
)

const connecteamServer = "connecteam"

// ConnecteamService serves workforce-scheduling data: filtered task queries
// cached under their derived filter key, user skill summaries, and task
// CRUD passthrough.
type ConnecteamService struct {
	store  *cache.Store
	client *connecteam.Client
	tools  *toolCaller
}

func NewConnecteamService(cfg *config.Config, store *cache.Store, registry *gateway.Registry, orch *resilience.Orchestrator, client *connecteam.Client) *ConnecteamService {
	return &ConnecteamService{
		store:  store,
		client: client,
		tools: &toolCaller{
			server:   connecteamServer,
			bin:      cfg.ToolServerBin,
			arg:      connecteamServer,
			registry: registry,
			orch:     orch,
			ready:    client.Ready,
		},
	}
}

// Tasks returns normalized task records matching the filter set, cached
// under the derived key for 10 minutes. The upstream only filters by
// status; the remaining filters are applied locally after normalization.
func (s *ConnecteamService) Tasks(ctx context.Context, filters *models.FilterSet, limit, offset int) ([]models.TaskRecord, error) {
	key := cache.DeriveKey("tasks", filters)

	var cached []models.TaskRecord
	if s.store.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	// Listing also needs the taskboard id, which the shared ready check
	// does not cover.
	if err := s.client.TasksReady(); err != nil {
		return nil, err
	}

	status := "all"
	if filters != nil && len(filters.Status) > 0 {
		status = filters.Status[0]
	}

	raw, err := s.tools.call(ctx, "list_tasks",
		map[string]any{"status": status, "limit": limit, "offset": offset},
		func(ctx context.Context) (any, error) {
			return s.client.ListTasks(ctx, status, limit, offset)
		})
	if err != nil {
		return nil, err
	}

	records, err := normalize.Tasks(raw)
	if err != nil {
		var shapeErr *normalize.ShapeError
		if errors.As(err, &shapeErr) {
			logging.Error("Skipping task batch: %v", err)
			return []models.TaskRecord{}, nil
		}
		return nil, err
	}

	records = applyTaskFilters(records, filters)

	s.store.SetJSON(ctx, key, records, cache.TTLTasks)
	return records, nil
}

// Users returns each active user's name and recognized trade skills.
func (s *ConnecteamService) Users(ctx context.Context, limit, offset int) ([]models.UserSkills, error) {
	raw, err := s.tools.call(ctx, "retrieve_users",
		map[string]any{"limit": limit, "offset": offset},
		func(ctx context.Context) (any, error) {
			return s.client.Users(ctx, limit, offset)
		})
	if err != nil {
		return nil, err
	}

	users, err := normalize.UserSkills(raw)
	if err != nil {
		logging.Error("Skipping user batch: %v", err)
		return []models.UserSkills{}, nil
	}
	return users, nil
}

// Taskboards returns the raw taskboard list.
func (s *ConnecteamService) Taskboards(ctx context.Context) (any, error) {
	return s.tools.call(ctx, "retrieve_taskboards", map[string]any{},
		func(ctx context.Context) (any, error) {
			return s.client.Taskboards(ctx)
		})
}

// Task returns one raw task document.
func (s *ConnecteamService) Task(ctx context.Context, taskID string) (any, error) {
	return s.tools.call(ctx, "get_task", map[string]any{"task_id": taskID},
		func(ctx context.Context) (any, error) {
			return s.client.GetTask(ctx, taskID)
		})
}

// Task mutations go through the direct client only: replaying a write on
// the fallback path after a timeout could apply it twice.

func (s *ConnecteamService) CreateTask(ctx context.Context, payload map[string]any) (any, error) {
	return s.client.CreateTask(ctx, payload)
}

func (s *ConnecteamService) UpdateTask(ctx context.Context, taskID string, payload map[string]any) (any, error) {
	return s.client.UpdateTask(ctx, taskID, payload)
}

func (s *ConnecteamService) DeleteTask(ctx context.Context, taskID string) (any, error) {
	return s.client.DeleteTask(ctx, taskID)
}

func applyTaskFilters(records []models.TaskRecord, filters *models.FilterSet) []models.TaskRecord {
	if filters.IsEmpty() {
		return records
	}

	wantUser := make(map[int64]bool, len(filters.UserIDs))
	for _, id := range filters.UserIDs {
		wantUser[id] = true
	}

	out := records[:0]
	for _, r := range records {
		if len(wantUser) > 0 && !hasAnyUser(r.UserIDs, wantUser) {
			continue
		}
		if filters.TitleSubstring != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(filters.TitleSubstring)) {
			continue
		}
		if filters.DueDate != "" && (r.DueDate == nil || *r.DueDate != filters.DueDate) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasAnyUser(ids []int64, want map[int64]bool) bool {
	for _, id := range ids {
		if want[id] {
			return true
		}
	}
	return false
}
