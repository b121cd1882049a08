package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"opshub/internal/services"
	"opshub/internal/upstream"
)

// APIHandlers holds the service dependencies for the v1 routes.
type APIHandlers struct {
	doorloop   *services.DoorloopService
	connecteam *services.ConnecteamService
}

func NewAPIHandlers(doorloop *services.DoorloopService, connecteam *services.ConnecteamService) *APIHandlers {
	return &APIHandlers{
		doorloop:   doorloop,
		connecteam: connecteam,
	}
}

// RegisterRoutes mounts every v1 route on the given group.
func (h *APIHandlers) RegisterRoutes(group *gin.RouterGroup) {
	dl := group.Group("/doorloop")
	dl.GET("/tenants", h.getTenants)
	dl.GET("/tenant/:tenant_id", h.getTenant)
	dl.GET("/properties", h.getProperties)
	dl.GET("/property-info", h.getPropertyInfo)
	dl.GET("/leases", h.getLeases)
	dl.GET("/communications", h.getCommunications)
	dl.GET("/summary", h.getSummary)

	ct := group.Group("/connecteam")
	ct.GET("/users", h.getUsers)
	ct.GET("/taskboards", h.getTaskboards)
	ct.GET("/tasks", h.getTasks)
	ct.GET("/task/:task_id", h.getTask)
	ct.POST("/task", h.createTask)
	ct.PUT("/task/:task_id", h.updateTask)
	ct.DELETE("/task/:task_id", h.deleteTask)
}

// respondError maps the error taxonomy onto HTTP responses. Missing
// credentials are a client-fixable configuration problem (400); a non-2xx
// upstream answer is relayed as a bad gateway with its structured document;
// anything else, including an exhausted transport with no fallback, is a
// plain 500 error document.
func respondError(c *gin.Context, err error) {
	var credErr *upstream.CredentialError
	if errors.As(err, &credErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": credErr.Error()})
		return
	}

	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, apiErr.Document())
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
