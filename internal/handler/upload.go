package handler

import (
	"encoding/base64"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ceasor-elvis/stem-management-system/internal/metrics"
	"github.com/ceasor-elvis/stem-management-system/internal/record"
)

// upload accepts a multipart file or a JSON base64 data URL and returns the
// durable photo URL. kind must be "student" or "device".
func (h *Handler) upload(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}

	var data, kind string

	if strings.Contains(c.ContentType(), "multipart/form-data") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		raw, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
			return
		}
		mime := header.Header.Get("Content-Type")
		if mime == "" {
			mime = "image/jpeg"
		}
		data = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
		kind = c.PostForm("type")
	} else {
		var body struct {
			Data string `json:"data" binding:"required"`
			Type string `json:"type"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		data, kind = body.Data, body.Type
	}

	if kind != record.PhotoKindStudent && kind != record.PhotoKindDevice {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be student or device"})
		return
	}

	url, err := h.Uploader.Upload(c.Request.Context(), data, kind)
	if err != nil {
		metrics.PhotoUploadsTotal.WithLabelValues(kind, "failure").Inc()
		log.Printf("photo upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}

	metrics.PhotoUploadsTotal.WithLabelValues(kind, "success").Inc()
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// exportRecords is the PDF export stub; export is not implemented yet.
func (h *Handler) exportRecords(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "record export is not available yet"})
}
