package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/moznion/go-optional"
	"github.com/newthinker/copyhub/internal/api/response"
	"github.com/newthinker/copyhub/internal/app"
	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/position"
)

const maxEntryBody = 1 << 16

// EntryService resolves position entries.
type EntryService interface {
	ResolveEntry(ctx context.Context, req app.EntryRequest) position.Entry
}

// EntryHandler handles position entry requests.
type EntryHandler struct {
	svc EntryService
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(svc EntryService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

// entryRequest is the JSON body of an entry resolution. Numeric form fields stay strings so
// partially typed values degrade instead of failing the request.
type entryRequest struct {
	Position     *position.Entity `json:"position"`
	Price        string           `json:"price" validate:"max=64"`
	Units        string           `json:"units" validate:"max=64"`
	PositionSize string           `json:"positionSize" validate:"max=64"`
	LastPrice    float64          `json:"lastPrice"`
	Symbol       string           `json:"symbol" validate:"omitempty,alphanum,max=32"`
}

// Resolve returns the entry figures for an open or prospective position.
func (h *EntryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEntryBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidRequest, fmt.Errorf("decoding body: %w", err)))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, validationError(err))
		return
	}

	pos := optional.None[position.Entity]()
	if req.Position != nil {
		pos = optional.Some(*req.Position)
	}

	entry := h.svc.ResolveEntry(r.Context(), app.EntryRequest{
		Position: pos,
		Inputs: position.Inputs{
			Price:        req.Price,
			Units:        req.Units,
			PositionSize: req.PositionSize,
			LastPrice:    req.LastPrice,
		},
		Symbol: req.Symbol,
	})
	response.JSON(w, http.StatusOK, entry)
}
