package handler

import (
	"strings"
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()
	status := "BROKEN"

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"missing email", &signInRequest{Password: "x"}, "email is required"},
		{"short password", &signUpRequest{Email: "a@example.com", Password: "abc"}, "password must be at least 6 characters"},
		{"unknown role", &signUpRequest{Email: "a@example.com", Password: "secret1", Role: "ROOT"}, "role must be one of"},
		{"unknown place status", &placePatchRequest{Status: &status}, "status must be one of AVAILABLE OCCUPIED MAINTENANCE"},
		{"empty place list", &placeBookingsRequest{PlaceIDs: []int64{}}, "placeIds must have at least 1 elements"},
		{"bad date", &placeBookingsRequest{PlaceIDs: []int64{1}, Date: "03/02/2026"}, "date must match 2006-01-02"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.in)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want message containing %q", err, tc.want)
			}
		})
	}
}

func TestValidator_Accepts(t *testing.T) {
	v := NewValidator()
	status := "MAINTENANCE"
	for _, in := range []any{
		&signUpRequest{Email: "a@example.com", Password: "secret1", Role: "MANAGER", WorkspaceID: 2},
		&placePatchRequest{Status: &status},
		&placePatchRequest{},
		&placeBookingsRequest{PlaceIDs: []int64{1, 2}, Date: "2026-03-02"},
	} {
		if err := v.Validate(in); err != nil {
			t.Fatalf("Validate(%T) = %v", in, err)
		}
	}
}
