package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "poolpay/pkg/domain-errors"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "1500.00", Format(150_000, "NGN"))
	assert.Equal(t, "0.05", Format(5, "usd"))
	assert.Equal(t, "1500", Format(1_500, "JPY"))
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in       string
		currency string
		want     int64
	}{
		{"1500", "NGN", 150_000},
		{"1500.5", "NGN", 150_050},
		{"0.01", "KES", 1},
		{"1500", "JPY", 1_500},
	}
	for _, tt := range tests {
		got, err := ParseMajor(tt.in, tt.currency)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "-1", "1.001", "99999999999999999999"} {
		_, err := ParseMajor(bad, "NGN")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "input %q", bad)
	}

	_, err := ParseMajor("10.5", "JPY")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRoundTrip(t *testing.T) {
	minor, err := ParseMajor(Format(123_456, "NGN"), "NGN")
	require.NoError(t, err)
	assert.Equal(t, int64(123_456), minor)
}
