package handler

import (
	"chatline/backend/internal/chathub"
	"chatline/backend/internal/storage"
)

// Handler carries the dependencies of all HTTP endpoints: the realtime hub
// and the persistence gateway.
type Handler struct {
	Hub     *chathub.Hub
	Storage storage.Storage
}

func NewHandler(hub *chathub.Hub, s storage.Storage) *Handler {
	return &Handler{Hub: hub, Storage: s}
}
