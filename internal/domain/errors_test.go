package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "order not found", err: ErrOrderNotFound, check: IsNotFound, want: true},
		{name: "wrapped product not found", err: fmt.Errorf("load: %w", ErrProductNotFound), check: IsNotFound, want: true},
		{name: "qty invalid is validation", err: ErrItemQtyInvalid, check: IsValidation, want: true},
		{name: "empty order is business rule", err: ErrEmptyOrder, check: IsBusinessRule, want: true},
		{name: "invalid transition is business rule", err: ErrInvalidTransition, check: IsBusinessRule, want: true},
		{name: "document too large is capacity", err: ErrDocumentTooLarge, check: IsCapacity, want: true},
		{name: "code exhausted is capacity", err: ErrOrderCodeExhausted, check: IsCapacity, want: true},
		{name: "unauthorized is gateway", err: ErrGatewayUnauthorized, check: IsGateway, want: true},
		{name: "joined gateway error", err: errors.Join(ErrSnapshotEmpty, errors.New("extra")), check: IsGateway, want: true},
		{name: "not found is not validation", err: ErrOrderNotFound, check: IsValidation, want: false},
		{name: "nil error", err: nil, check: IsNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestProductValidate(t *testing.T) {
	p := Product{Name: " "}
	if errs := p.Validate(); len(errs) != 1 || !errors.Is(errs[0], ErrNameRequired) {
		t.Fatalf("expected name error, got %v", errs)
	}
}
