package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/qsecurex/portal/internal/api/middleware"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/utils"
	"github.com/qsecurex/portal/internal/pkg/validator"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, val *validator.Validator, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}
	if validationErrs := val.Validate(dst); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return false
	}
	return true
}

// requireUserID returns the authenticated user's ID or writes a 401
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return "", false
	}
	return userID, true
}

// writeErr renders err, hiding non-AppError details
func writeErr(w http.ResponseWriter, err error) {
	utils.WriteAnyError(w, err)
}
