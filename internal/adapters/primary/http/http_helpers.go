package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/lorrc/skycrm-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/skycrm-backend/internal/adapters/primary/validation"
	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

const maxItemsPerPage = 100

// requireIdentity returns the caller identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request, eh *ErrorHandler) (domain.Identity, bool) {
	identity, ok := mw.IdentityFromContext(r.Context())
	if !ok {
		eh.Handle(w, r, apperrors.ErrUnauthorized)
		return domain.Identity{}, false
	}
	return identity, true
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return validation.ParseUUIDParam(name, chi.URLParam(r, name))
}

// parseOptionalUUID parses a possibly empty id from a request body.
func parseOptionalUUID(field string, value *string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := validation.ParseUUIDParam(field, *value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseUUIDs parses a list of ids from a request body.
func parseUUIDs(field string, values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := validation.ParseUUIDParam(field, v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseDate accepts RFC3339 timestamps and plain dates.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	errs := apperrors.NewValidationErrors()
	errs.Add(field, "Must be a date (YYYY-MM-DD) or RFC3339 timestamp")
	return time.Time{}, errs
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
