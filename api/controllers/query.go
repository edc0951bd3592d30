package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/pagination"
)

func paginationFromQuery(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		params.Limit = value
	}
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))
	return params, nil
}

// statusesFromQuery parses a comma list like "pending,confirmed".
func statusesFromQuery(r *http.Request) ([]enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	var statuses []enums.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		status, err := enums.ParseOrderStatus(strings.TrimSpace(part))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
