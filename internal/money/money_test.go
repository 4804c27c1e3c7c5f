package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"7", 700, false},
		{"0.01", 1, false},
		{"12.3", 1230, false},
		{"0", 0, true},
		{"-5.00", 0, true},
		{"12.345", 0, true}, // sub-minor precision is rejected, not rounded
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountValidate(t *testing.T) {
	assert.NoError(t, Amount(1).Validate())
	assert.NoError(t, MaxMinor.Validate())
	assert.Error(t, Amount(0).Validate())
	assert.Error(t, Amount(-100).Validate())
	assert.Error(t, (MaxMinor + 1).Validate())
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "12.34", Amount(1234).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "100.00", Amount(10000).String())
}

func TestSum(t *testing.T) {
	assert.Equal(t, Amount(10000), Sum(3333, 3333, 3334))
	assert.Equal(t, Amount(0), Sum())
}
