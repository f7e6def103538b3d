package statusutil

import (
	"errors"
	"testing"

	"mbkm-console/internal/model"
)

func TestReviewStatus(t *testing.T) {
	tests := []struct {
		in   string
		want model.RegistrantStatus
	}{
		{"approved", model.RegistrantApproved},
		{" Approve ", model.RegistrantApproved},
		{"terima", model.RegistrantApproved},
		{"REJECTED", model.RegistrantRejected},
		{"tolak", model.RegistrantRejected},
		{"reset", model.RegistrantPending},
	}
	for _, tt := range tests {
		got, err := ReviewStatus(tt.in)
		if err != nil {
			t.Fatalf("ReviewStatus(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ReviewStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"", "maybe"} {
		_, err := ReviewStatus(in)
		var verr *model.ValidationError
		if !errors.As(err, &verr) || verr.Field != "status" {
			t.Fatalf("ReviewStatus(%q): expected status validation error, got %v", in, err)
		}
	}
}

func TestNormalizeFilter(t *testing.T) {
	tests := []struct {
		resource, in, want string
		wantErr            bool
	}{
		{resource: "registrants", in: "", want: "all"},
		{resource: "registrants", in: "Pending", want: "pending"},
		{resource: "registrants", in: "active", wantErr: true},
		{resource: "places", in: "inactive", want: "inactive"},
		{resource: "programs", in: "ALL", want: "all"},
		{resource: "settings", in: "approved", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeFilter(tt.resource, tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("NormalizeFilter(%q, %q): expected error", tt.resource, tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("NormalizeFilter(%q, %q) = %q, %v; want %q", tt.resource, tt.in, got, err, tt.want)
		}
	}
}

func TestFilters_ReturnsCopy(t *testing.T) {
	f := Filters("places")
	f[0] = "mutated"
	if Filters("places")[0] != "all" {
		t.Fatalf("Filters must not share its backing array")
	}
}
