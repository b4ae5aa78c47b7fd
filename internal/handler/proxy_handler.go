package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reportingest/internal/port"
)

const defaultProxyContentType = "application/octet-stream"

// ProxyHandler streams stored images to browsers that cannot read the bucket directly.
type ProxyHandler struct {
	storage     port.ObjectStorage
	bucket      string
	cacheMaxAge int
	log         *zap.Logger
}

// NewProxyHandler creates a new ProxyHandler for objects in bucket.
func NewProxyHandler(storage port.ObjectStorage, bucket string, cacheMaxAgeSecs int, log *zap.Logger) *ProxyHandler {
	return &ProxyHandler{storage: storage, bucket: bucket, cacheMaxAge: cacheMaxAgeSecs, log: log}
}

// Image handles GET /imageProxy
// @Summary Proxy a stored image
// @Description Streams the object at path unchanged, with permissive CORS and a day-long cache
// @Tags proxy
// @Produce octet-stream
// @Param path query string true "Object path inside the bucket"
// @Success 200 {file} binary "Object bytes"
// @Failure 400 {object} ErrorResponseBody "Missing path"
// @Failure 404 {object} ErrorResponseBody "Object could not be retrieved"
// @Router /imageProxy [get]
func (h *ProxyHandler) Image(c *gin.Context) {
	path := strings.TrimPrefix(c.Query("path"), "/")
	if path == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "path query parameter is required")
		return
	}

	obj, err := h.storage.Open(c.Request.Context(), h.bucket, path)
	if err != nil {
		h.log.Warn("image proxy: object not retrieved", zap.String("path", path), zap.Error(err))
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "image not found")
		return
	}
	defer func() { _ = obj.Body.Close() }()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = defaultProxyContentType
	}
	contentLength := obj.ContentLength
	if contentLength <= 0 {
		contentLength = -1
	}

	c.DataFromReader(http.StatusOK, contentLength, contentType, obj.Body, map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Cache-Control":               fmt.Sprintf("public, max-age=%d", h.cacheMaxAge),
	})
}
