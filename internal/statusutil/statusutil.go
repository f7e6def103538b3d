package statusutil

import (
	"fmt"
	"slices"
	"strings"

	"mbkm-console/internal/listing"
	"mbkm-console/internal/model"
)

var (
	activeFilters     = []string{listing.StatusAll, "active", "inactive"}
	registrantFilters = []string{
		listing.StatusAll,
		string(model.RegistrantPending),
		string(model.RegistrantApproved),
		string(model.RegistrantRejected),
	}
)

// ReviewStatus maps user input to a registrant review status.
// English and Indonesian verbs are accepted next to the status ids.
func ReviewStatus(s string) (model.RegistrantStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve", "accept", "terima", "diterima":
		return model.RegistrantApproved, nil
	case "rejected", "reject", "tolak", "ditolak":
		return model.RegistrantRejected, nil
	case "pending", "reset", "menunggu":
		return model.RegistrantPending, nil
	case "":
		return "", model.NewValidationError("status", "is required")
	default:
		return "", model.NewValidationError("status", fmt.Sprintf("unknown review status %q (want approved, rejected or pending)", strings.TrimSpace(s)))
	}
}

// Filters lists the status filter values a resource accepts, "all" first.
func Filters(resource string) []string {
	if strings.EqualFold(strings.TrimSpace(resource), "registrants") {
		return slices.Clone(registrantFilters)
	}
	return slices.Clone(activeFilters)
}

// NormalizeFilter validates a status filter for resource. Empty means "all".
func NormalizeFilter(resource, s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return listing.StatusAll, nil
	}
	allowed := Filters(resource)
	if !slices.Contains(allowed, s) {
		return "", model.NewValidationError("status", fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
	}
	return s, nil
}
