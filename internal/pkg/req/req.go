/*
Package req provides helpers for binding HTTP request bodies to structs with
strict JSON decoding.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"hubble/internal/pkg/errs"
)

// BindJSON decodes the request body into dst, rejecting unknown fields and
// trailing content.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.New(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.New(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.New(errs.ErrExtraContentInBody)
	}

	return nil
}
