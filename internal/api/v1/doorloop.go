package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *APIHandlers) getTenants(c *gin.Context) {
	records, err := h.doorloop.Tenants(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *APIHandlers) getTenant(c *gin.Context) {
	doc, err := h.doorloop.Tenant(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *APIHandlers) getProperties(c *gin.Context) {
	doc, err := h.doorloop.Properties(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *APIHandlers) getPropertyInfo(c *gin.Context) {
	docs, err := h.doorloop.PropertyInfo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *APIHandlers) getLeases(c *gin.Context) {
	leases, statuses, err := h.doorloop.Leases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": leases, "statuses": statuses})
}

func (h *APIHandlers) getCommunications(c *gin.Context) {
	doc, err := h.doorloop.Communications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *APIHandlers) getSummary(c *gin.Context) {
	summary, err := h.doorloop.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
