package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priced struct {
	Price decimal.Decimal `validate:"decimal_gte0"`
}

func TestDecimalNonNegative(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	tests := []struct {
		price string
		ok    bool
	}{
		{"0", true},
		{"120000", true},
		{"0.01", true},
		{"-1", false},
		{"-0.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			err := v.Struct(priced{Price: decimal.RequireFromString(tt.price)})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
