package handlers

import (
	"go.uber.org/zap"

	"github.com/enrolhq/enrolment-relay/internal/store"
	"github.com/enrolhq/enrolment-relay/pkg/env"
)

// List keys in the backing store. Both lists are append-only history; the
// GET/DELETE surface on the submission queue never reorders stored entries.
const (
	submissionsKey = "enrolment-submissions"
	teamsKey       = "enrolment-participants-teams"
)

// signatureHeader carries base64(HMAC-SHA256(raw body, signing secret)).
const signatureHeader = "tally-signature"

type Handler struct {
	cfg    *env.Config
	store  store.ListStore
	logger *zap.Logger
}

func NewHandler(cfg *env.Config, listStore store.ListStore, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		store:  listStore,
		logger: logger,
	}
}
