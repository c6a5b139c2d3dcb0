package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

var subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Tenant is an isolated customer account of the CRM.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	Subdomain string
	CreatedAt time.Time
}

// NewTenant validates and builds a tenant. The subdomain is lower-cased.
func NewTenant(name, subdomain string) (*Tenant, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return nil, apperrors.ErrSubdomainRequired
	}

	errs := apperrors.NewValidationErrors()
	if !subdomainRegex.MatchString(subdomain) {
		errs.Add("subdomain", "Subdomain may only contain lowercase letters, digits and hyphens")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("tenantName", "Tenant name is required")
	} else if len(name) > MaxNameLength {
		errs.Add("tenantName", "Tenant name must be 255 characters or less")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	return &Tenant{
		ID:        uuid.New(),
		Name:      name,
		Subdomain: subdomain,
		CreatedAt: time.Now().UTC(),
	}, nil
}
