package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/enrolhq/enrolment-relay/pkg/errors"
	"github.com/enrolhq/enrolment-relay/pkg/webhook"
)

// SubmissionWebhook ingests a new form-submission event. The raw body is
// verified against the tally-signature header before anything is parsed,
// then stored verbatim at the tail of the submission queue. No schema
// validation beyond a successful JSON parse.
func (h *Handler) SubmissionWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errors.BadRequest(c, "unable to read request body")
		return
	}

	if !webhook.Verify(body, c.GetHeader(signatureHeader), h.cfg.WebhookSigningSecret) {
		h.logger.Warn("Webhook signature verification failed",
			zap.String("path", c.Request.URL.Path),
		)
		errors.Unauthorized(c, "invalid signature")
		return
	}

	var event any
	if err := json.Unmarshal(body, &event); err != nil {
		errors.BadRequest(c, "invalid JSON payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Push(ctx, submissionsKey, string(body)); err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	h.logger.Info("Submission queued", zap.Int("bytes", len(body)))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListSubmissions returns every queued submission, newest first by its
// createdAt timestamp. Sorting is presentation only; store order is
// untouched. Entries that fail to parse are logged and skipped.
func (h *Handler) ListSubmissions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	raw, err := h.store.Range(ctx, submissionsKey)
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	type entry struct {
		payload   map[string]any
		createdAt time.Time
	}
	entries := make([]entry, 0, len(raw))
	for _, item := range raw {
		var payload map[string]any
		if err := json.Unmarshal([]byte(item), &payload); err != nil {
			h.logger.Warn("Skipping unparseable submission entry", zap.Error(err))
			continue
		}
		// Missing or invalid createdAt sorts as epoch 0.
		var ts time.Time
		if s, ok := payload["createdAt"].(string); ok {
			if parsed, err := time.Parse(time.RFC3339, s); err == nil {
				ts = parsed
			}
		}
		entries = append(entries, entry{payload: payload, createdAt: ts})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].createdAt.After(entries[j].createdAt)
	})

	messages := make([]map[string]any, len(entries))
	for i, e := range entries {
		messages[i] = e.payload
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// DeleteSubmission removes the first queued entry whose eventId matches the
// request body. Removal is by stored raw value, so exactly one occurrence
// disappears even if the same event was delivered twice.
func (h *Handler) DeleteSubmission(c *gin.Context) {
	var req struct {
		EventID string `json:"eventId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EventID == "" {
		errors.BadRequest(c, "eventId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	raw, err := h.store.Range(ctx, submissionsKey)
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	for _, item := range raw {
		var probe struct {
			EventID string `json:"eventId"`
		}
		if err := json.Unmarshal([]byte(item), &probe); err != nil {
			h.logger.Warn("Skipping unparseable submission entry", zap.Error(err))
			continue
		}
		if probe.EventID != req.EventID {
			continue
		}

		removed, err := h.store.RemoveOne(ctx, submissionsKey, item)
		if err != nil {
			errors.InternalError(c, err, h.logger)
			return
		}
		if !removed {
			// Raced with another consumer between Range and RemoveOne.
			break
		}

		h.logger.Info("Submission removed", zap.String("event_id", req.EventID))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	errors.NotFound(c, "no queued submission with that eventId")
}

// Probe answers provider health checks and CORS preflights with an empty
// body.
func (h *Handler) Probe(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}
	c.Status(http.StatusOK)
}
