// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/router"
)

// MsgInvalidBody is returned when a request body fails to decode or
// validate.
const MsgInvalidBody = "Dữ liệu gửi lên không hợp lệ"

const maxBodyBytes = 1 << 20 // 1 MiB

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeValid decodes the JSON request body into dst and runs struct
// validation. Unknown fields are rejected so client typos surface instead
// of silently dropping data.
func DecodeValid(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validate request body: %w", err)
	}
	return nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination reads limit/offset (or page) parameters, clamped to sane
// bounds. Both ?limit=&offset= and ?page= styles are accepted; page wins
// when both are present.
func Pagination(r *http.Request) (limit, offset int) {
	params := router.Params(r)
	if len(params) == 0 {
		params = map[string]string{}
		for name, values := range r.URL.Query() {
			if len(values) > 0 {
				params[name] = values[0]
			}
		}
	}

	limit = defaultPageSize
	if raw := params["limit"]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := params["offset"]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}
	if raw := params["page"]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}
