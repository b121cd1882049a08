package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"opshub/pkg/models"
)

func (h *APIHandlers) getUsers(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	offset := intQuery(c, "offset", 0)

	users, err := h.connecteam.Users(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *APIHandlers) getTaskboards(c *gin.Context) {
	doc, err := h.connecteam.Taskboards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *APIHandlers) getTasks(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	offset := intQuery(c, "offset", 0)
	filters := parseFilterSet(c)

	records, err := h.connecteam.Tasks(c.Request.Context(), filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *APIHandlers) getTask(c *gin.Context) {
	doc, err := h.connecteam.Task(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *APIHandlers) createTask(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task payload: " + err.Error()})
		return
	}

	doc, err := h.connecteam.CreateTask(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *APIHandlers) updateTask(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task payload: " + err.Error()})
		return
	}

	doc, err := h.connecteam.UpdateTask(c.Request.Context(), c.Param("task_id"), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *APIHandlers) deleteTask(c *gin.Context) {
	doc, err := h.connecteam.DeleteTask(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// parseFilterSet reads the task filters from query parameters. status and
// user_id accept comma-separated lists; ordering does not matter because
// the key deriver sorts values.
func parseFilterSet(c *gin.Context) *models.FilterSet {
	filters := &models.FilterSet{
		TitleSubstring: c.Query("title"),
		DueDate:        c.Query("due_date"),
	}

	if status := c.Query("status"); status != "" {
		filters.Status = strings.Split(status, ",")
	}

	if userIDs := c.Query("user_id"); userIDs != "" {
		for _, part := range strings.Split(userIDs, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				filters.UserIDs = append(filters.UserIDs, id)
			}
		}
	}

	return filters
}

func intQuery(c *gin.Context, name string, defaultValue int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultValue
}
