package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/enrolhq/enrolment-relay/internal/form"
	"github.com/enrolhq/enrolment-relay/pkg/errors"
	"github.com/enrolhq/enrolment-relay/pkg/logger"
	"github.com/enrolhq/enrolment-relay/pkg/webhook"
)

// Labels the update form uses to identify the submitter and the record
// being amended. Matched by substring, like every other label lookup.
const (
	submitterEmailLabel = "Email of person filling this form"
	submitterPhoneLabel = "Phone number of person filling this form"
	teamIDLabel         = "Team ID"
)

// TeamUpdateWebhook authorizes and applies a team-update submission.
//
// The update form supplies a Team ID naming a previously stored team
// registration. The submitter's email/phone pair must match one of the
// member pairs embedded in that prior record. On success the update is
// merged onto a copy of the prior record and the result is prepended to the
// team history list; the prior record is never mutated or removed.
func (h *Handler) TeamUpdateWebhook(c *gin.Context) {
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

	var update form.Record
	if err := json.Unmarshal(body, &update); err != nil {
		errors.BadRequest(c, "invalid JSON payload")
		return
	}
	if len(update.Data.Fields) == 0 {
		errors.BadRequest(c, "data.fields must be a non-empty array")
		return
	}

	var email, phone string
	if f := form.FindByLabel(update.Data.Fields, submitterEmailLabel); f != nil {
		email = form.NormalizeEmail(f.Value)
	}
	if f := form.FindByLabel(update.Data.Fields, submitterPhoneLabel); f != nil {
		phone = form.NormalizePhone(f.Value)
	}
	if email == "" || phone == "" {
		errors.BadRequest(c, "submitter email and phone number are required")
		return
	}

	var teamID string
	if f := form.FindByLabel(update.Data.Fields, teamIDLabel); f != nil {
		teamID = form.StringValue(f.Value)
	}
	if teamID == "" {
		errors.BadRequest(c, "Team ID field is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	raw, err := h.store.Range(ctx, teamsKey)
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	// Unindexed scan; first match in list order wins.
	var prior *form.Record
	for _, item := range raw {
		var rec form.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			h.logger.Warn("Skipping unparseable team record", zap.Error(err))
			continue
		}
		if rec.Data.SubmissionID == teamID || rec.Data.ResponseID == teamID {
			prior = &rec
			break
		}
	}
	if prior == nil {
		errors.NotFound(c, "no team registration matches the supplied Team ID")
		return
	}

	pairs := form.ExtractTeamPairs(prior)
	if !form.Authorize(pairs, email, phone) {
		h.logger.Warn("Team update rejected: submitter not in team",
			zap.String("team_id", teamID),
			logger.MaskEmail("email", email),
			logger.MaskPhone("phone", phone),
		)
		errors.Forbidden(c, "submitter is not a member of this team")
		return
	}

	merged := form.Merge(prior, &update)

	buf, err := json.Marshal(merged)
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}
	if err := h.store.PushHead(ctx, teamsKey, string(buf)); err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	h.logger.Info("Team update merged",
		zap.String("team_id", teamID),
		zap.String("event_id", update.EventID),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
