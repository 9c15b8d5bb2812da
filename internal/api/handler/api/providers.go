package api

import (
	"context"
	"net/http"

	"github.com/moznion/go-optional"
	"github.com/newthinker/copyhub/internal/api/response"
	"github.com/newthinker/copyhub/internal/app"
	"github.com/newthinker/copyhub/internal/browse"
	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/provider"
)

// ProviderService is the provider browsing surface of the application.
type ProviderService interface {
	ListProviders(ctx context.Context, req app.ListRequest) (app.ListResult, error)
	ClearFilters(ctx context.Context, key app.SessionKey) (browse.State, error)
	ClearSort(ctx context.Context, key app.SessionKey) (browse.State, error)
	Options(ctx context.Context, key app.SessionKey) app.OptionSet
}

// ProvidersHandler handles provider browsing requests.
type ProvidersHandler struct {
	svc ProviderService
}

// NewProvidersHandler creates a new providers handler.
func NewProvidersHandler(svc ProviderService) *ProvidersHandler {
	return &ProvidersHandler{svc: svc}
}

// providerList is the list payload.
type providerList struct {
	Providers []core.Provider `json:"providers"`
	State     browse.State    `json:"state"`
}

// List returns one page of the filtered, sorted provider list.
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	key, err := sessionKey(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	q := r.URL.Query()
	lq, err := parseListQuery(q)
	if err != nil {
		response.Fail(w, err)
		return
	}

	req := app.ListRequest{Session: key, Refresh: lq.Refresh}
	if lq.TimeFrame > 0 {
		req.TimeFrame = optional.Some(lq.TimeFrame)
	}
	if q.Has("coin") {
		req.Coin = optional.Some(lq.Coin)
	}
	if q.Has("exchange") {
		req.Exchange = optional.Some(lq.Exchange)
	}
	if q.Has("exchangeType") {
		req.ExchangeType = optional.Some(lq.ExchangeType)
	}
	if lq.Sort != "" {
		req.Sort = optional.Some(lq.Sort)
	}

	res, err := h.svc.ListProviders(r.Context(), req)
	if err != nil {
		response.Fail(w, err)
		return
	}

	page := provider.Paginate(res.Providers, lq.Offset, lq.Limit)
	response.Page(w, providerList{Providers: page, State: res.State}, len(res.Providers), lq.Offset, lq.Limit)
}

// ClearFilters resets the coin, exchange and exchange type filters.
func (h *ProvidersHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	key, err := sessionKey(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	st, err := h.svc.ClearFilters(r.Context(), key)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, st)
}

// ClearSort restores the default sort.
func (h *ProvidersHandler) ClearSort(w http.ResponseWriter, r *http.Request) {
	key, err := sessionKey(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	st, err := h.svc.ClearSort(r.Context(), key)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, st)
}

// Options returns the selectable filter and sort values.
func (h *ProvidersHandler) Options(w http.ResponseWriter, r *http.Request) {
	key, err := sessionKey(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.svc.Options(r.Context(), key))
}
