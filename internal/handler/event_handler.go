package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventProcessor consumes storage notifications.
type EventProcessor interface {
	Handle(ctx context.Context, evt events.S3Event) error
}

// EventHandler receives S3-compatible bucket notifications over HTTP.
type EventHandler struct {
	processor EventProcessor
	log       *zap.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(processor EventProcessor, log *zap.Logger) *EventHandler {
	return &EventHandler{processor: processor, log: log}
}

// Storage handles POST /events/storage
// @Summary Storage notification webhook
// @Description Accepts an S3 ObjectCreated notification and ingests every record synchronously
// @Tags events
// @Accept json
// @Produce json
// @Param body body events.S3Event true "S3 event notification"
// @Success 200 {object} Response "Event processed"
// @Failure 400 {object} ErrorResponseBody "Malformed event"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 500 {object} ErrorResponseBody "Processing failed; sender should retry"
// @Security BearerAuth
// @Router /events/storage [post]
func (h *EventHandler) Storage(c *gin.Context) {
	var evt events.S3Event
	if err := c.ShouldBindJSON(&evt); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be an S3 event notification")
		return
	}

	if err := h.processor.Handle(c.Request.Context(), evt); err != nil {
		h.log.Error("processing storage event",
			zap.Int("records", len(evt.Records)),
			zap.Error(err),
		)
		RespondError(c, http.StatusInternalServerError, "PROCESSING_FAILED", "one or more records failed to process")
		return
	}

	RespondOK(c, gin.H{"records": len(evt.Records)})
}
