package handler

import (
	"context"
	"net/http"

	"github.com/brentkao/roomcoord/internal/api/apierr"
	"github.com/brentkao/roomcoord/internal/api/middleware"
	"github.com/brentkao/roomcoord/internal/api/response"
	"github.com/brentkao/roomcoord/internal/model"
)

// TicketIssuer mints single-use connection tickets
type TicketIssuer interface {
	Issue(ctx context.Context, identity model.Identity) (*model.Ticket, error)
}

// TicketHandler handles ticket minting
type TicketHandler struct {
	issuer TicketIssuer
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(issuer TicketIssuer) *TicketHandler {
	return &TicketHandler{issuer: issuer}
}

// Create handles POST /api/v1/tickets
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	ticket, err := h.issuer.Issue(r.Context(), identity)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.TicketResponseFromModel(ticket))
}
