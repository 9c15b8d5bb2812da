// Package api holds the JSON API handlers.
package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/newthinker/copyhub/internal/app"
	"github.com/newthinker/copyhub/internal/browse"
	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/provider"
)

// Header names carrying the caller's trade API session.
const (
	HeaderTradeToken = "X-Trade-Token"
	HeaderExchangeID = "X-Exchange-Id"
)

const defaultLimit = 50

var validate = validator.New()

// validationError wraps validator failures as INVALID_REQUEST.
func validationError(err error) error {
	return core.WrapError(core.ErrInvalidRequest, err)
}

// sessionKey reads the session identity from the page query flags and the trade headers.
func sessionKey(r *http.Request) (app.SessionKey, error) {
	q := r.URL.Query()
	copyTraders, err := boolParam(q, "copyTradersOnly")
	if err != nil {
		return app.SessionKey{}, err
	}
	connected, err := boolParam(q, "connectedOnly")
	if err != nil {
		return app.SessionKey{}, err
	}
	return app.SessionKey{
		Options:    browse.Options{CopyTradersOnly: copyTraders, ConnectedOnly: connected},
		Token:      r.Header.Get(HeaderTradeToken),
		ExchangeID: r.Header.Get(HeaderExchangeID),
	}, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, validationError(fmt.Errorf("%s must be a boolean, got %q", name, v))
	}
	return b, nil
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, validationError(fmt.Errorf("%s must be an integer, got %q", name, v))
	}
	return n, nil
}

// listQuery is the validated form of the provider list query string.
type listQuery struct {
	TimeFrame    int    `validate:"omitempty,min=1,max=3650"`
	Coin         string `validate:"omitempty,max=20"`
	Exchange     string `validate:"omitempty,max=40"`
	ExchangeType string `validate:"omitempty,oneof=ALL spot futures"`
	Sort         string `validate:"omitempty,max=20"`
	Offset       int    `validate:"min=0"`
	Limit        int    `validate:"min=0,max=500"`
	Refresh      bool
}

func parseListQuery(q url.Values) (listQuery, error) {
	var lq listQuery
	var err error

	if lq.TimeFrame, err = intParam(q, "timeFrame", 0); err != nil {
		return lq, err
	}
	if lq.Offset, err = intParam(q, "offset", 0); err != nil {
		return lq, err
	}
	if lq.Limit, err = intParam(q, "limit", defaultLimit); err != nil {
		return lq, err
	}
	if lq.Refresh, err = boolParam(q, "refresh"); err != nil {
		return lq, err
	}

	lq.Coin = q.Get("coin")
	lq.Exchange = q.Get("exchange")
	lq.ExchangeType = normalizeExchangeType(q.Get("exchangeType"))
	lq.Sort = q.Get("sort")

	if err := validate.Struct(lq); err != nil {
		return lq, validationError(err)
	}
	return lq, nil
}

func normalizeExchangeType(v string) string {
	if strings.EqualFold(v, provider.All) {
		return provider.All
	}
	return strings.ToLower(v)
}
