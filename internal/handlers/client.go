package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/i18n"
	"github.com/diewo77/invoice-wemaad/internal/services"
	"github.com/diewo77/invoice-wemaad/validation"
)

type ClientHandler struct {
	clients *services.ClientService
	log     *zap.Logger
}

func NewClientHandler(clients *services.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, log: log}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	clients, err := h.clients.List(r.Context(), userID)
	if err != nil {
		logFailure(h.log, r, "list clients", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": len(clients)})
}

func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lang(r), "client_not_found"))
		return
	}
	c, err := h.clients.Get(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lang(r), "client_not_found"))
		return
	}
	if err != nil {
		logFailure(h.log, r, "get client", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := decode(w, r)
	if !ok {
		return
	}
	in, v := validation.Unwrap(validation.ParseClient(p))
	if v != nil {
		invalid(w, r, v)
		return
	}
	c, err := h.clients.Create(r.Context(), userID, in)
	if err != nil {
		logFailure(h.log, r, "create client", err)
		fail(w, r, http.StatusInternalServerError, "failed_create_client")
		return
	}
	h.log.Info("client created", zap.Uint("client_id", c.ID), zap.Uint("user_id", userID))
	done(w, r, "/clients")
}

// Update replaces the client and its addresses, contacts and custom fields
// in one transaction.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "client_not_found")
	if !ok {
		return
	}
	p, ok := decode(w, r)
	if !ok {
		return
	}
	in, v := validation.Unwrap(validation.ParseClient(p))
	if v != nil {
		invalid(w, r, v)
		return
	}
	_, err := h.clients.Update(r.Context(), userID, id, in)
	if errors.Is(err, services.ErrNotFound) {
		fail(w, r, http.StatusNotFound, "client_not_found")
		return
	}
	if err != nil {
		logFailure(h.log, r, "update client", err, zap.Uint("client_id", id))
		fail(w, r, http.StatusInternalServerError, "failed_update_client")
		return
	}
	done(w, r, "/clients/"+strconv.FormatUint(uint64(id), 10))
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "client_not_found")
	if !ok {
		return
	}
	err := h.clients.Delete(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) {
		fail(w, r, http.StatusNotFound, "client_not_found")
		return
	}
	if err != nil {
		logFailure(h.log, r, "delete client", err, zap.Uint("client_id", id))
		fail(w, r, http.StatusInternalServerError, "failed_delete_client")
		return
	}
	done(w, r, "/clients")
}
