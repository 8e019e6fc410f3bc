package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"week-planner/internal/model"
)

func TestCreateTaskAdoptsServerID(t *testing.T) {
	var got model.Task
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"status": "success", "id": "server-id"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop().Sugar())
	id, err := client.CreateTask(context.Background(), model.Task{ID: "local-id", Title: "Standup", Day: "Monday", Priority: model.PriorityMedium})
	assert.NoError(t, err)
	assert.Equal(t, "server-id", id)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, "Monday", got.Day)
}

func TestCreateTaskKeepsLocalIDWhenServerOmitsOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop().Sugar())
	id, err := client.CreateTask(context.Background(), model.Task{ID: "local-id", Day: "Monday"})
	assert.NoError(t, err)
	assert.Equal(t, "local-id", id)
}

func TestBulkDeleteWireFormat(t *testing.T) {
	var payload map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/bulk-delete", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "deleted_count": 2})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop().Sugar())
	assert.NoError(t, client.BulkDeleteTasks(context.Background(), []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, payload["task_ids"])
}

func TestListTasksUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"tasks": []model.Task{
				{ID: "t1", Title: "Gym", Day: "Wednesday", Time: "18:00"},
			},
			"count": 1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop().Sugar())
	tasks, err := client.ListTasks(context.Background())
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, "Gym", tasks[0].Title)
}

func TestDeleteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such task"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop().Sugar())
	err := client.DeleteTask(context.Background(), "missing")
	assert.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSettingsNormalizedOnGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"notifications_enabled": true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop().Sugar())
	settings, err := client.GetSettings(context.Background())
	assert.NoError(t, err)
	assert.True(t, settings.NotificationsEnabled)
	assert.Equal(t, []int{300, 60, 30}, settings.ReminderLeadTimes)
	assert.Equal(t, "23:30", settings.DailySummaryTime)
	assert.Equal(t, 2, settings.CleanupWeeks)
}
