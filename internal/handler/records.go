package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ceasor-elvis/stem-management-system/internal/auth"
	"github.com/ceasor-elvis/stem-management-system/internal/metrics"
	"github.com/ceasor-elvis/stem-management-system/internal/record"
)

func (h *Handler) listRecords(c *gin.Context) {
	f := record.Filter{
		Status: record.Status(c.Query("status")),
		Search: c.Query("search"),
	}
	records, err := h.Queries.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []record.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"results": records, "count": len(records)})
}

func (h *Handler) recordByID(c *gin.Context) {
	rec, err := h.Queries.ByRecordID(c.Request.Context(), c.Param("recordId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) recordByStudentID(c *gin.Context) {
	rec, err := h.Queries.ByStudentID(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) checkIn(c *gin.Context) {
	var in record.CheckInInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.Lifecycle.CheckIn(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	metrics.CheckInsTotal.Inc()
	claims, _ := auth.FromContext(c)
	h.publish(c.Request.Context(), "checkin", rec, claims.Subject)

	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) checkOut(c *gin.Context) {
	rec, err := h.Lifecycle.CheckOut(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		writeError(c, err)
		return
	}

	metrics.CheckOutsTotal.Inc()
	claims, _ := auth.FromContext(c)
	h.publish(c.Request.Context(), "checkout", rec, claims.Subject)

	c.JSON(http.StatusOK, rec)
}
