package order

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{"PENDING", StatusPending, false},
		{"PAID", StatusPaid, false},
		{" SHIPPED ", StatusShipped, false},
		{"CANCELLED", StatusCancelled, false},
		{"paid", statusUnknown, true},
		{"REFUNDED", statusUnknown, true},
		{"", statusUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Fatalf("err = %v, want ErrInvalidStatus", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if got.String() != tt.want.String() {
				t.Errorf("String() = %s", got.String())
			}
		})
	}
}

func TestPermissiveTransitionsAllowEverything(t *testing.T) {
	table := PermissiveTransitions()
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			if !table.Allows(from, to) {
				t.Errorf("%s -> %s should be allowed", from, to)
			}
		}
	}
	if table.Allows(statusUnknown, StatusPaid) {
		t.Error("unknown status must never be allowed")
	}
}

func TestStrictTransitions(t *testing.T) {
	table := StrictTransitions()

	allowed := map[[2]Status]bool{
		{StatusPending, StatusPaid}:        true,
		{StatusPending, StatusCancelled}:   true,
		{StatusPaid, StatusShipped}:        true,
		{StatusPaid, StatusCancelled}:      true,
		{StatusShipped, StatusCancelled}:   true,
		{StatusPending, StatusPending}:     true,
		{StatusPaid, StatusPaid}:           true,
		{StatusShipped, StatusShipped}:     true,
		{StatusCancelled, StatusCancelled}: true,
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := allowed[[2]Status{from, to}]
			if got := table.Allows(from, to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}
