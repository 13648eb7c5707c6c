package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "conceptbase/pkg/errors"
)

func TestNewFraction(t *testing.T) {
	tests := []struct {
		name        string
		numerator   uint64
		denominator uint64
		wantErr     bool
	}{
		{"one", 1, 1, false},
		{"zero", 0, 1, false},
		{"proper fraction", 9, 10, false},
		{"unnormalized", 50, 100, false},
		{"zero denominator", 1, 0, true},
		{"numerator above denominator", 3, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFraction(tt.numerator, tt.denominator)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeFractionOutOfRange))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.numerator, f.Numerator().Uint64())
			assert.Equal(t, tt.denominator, f.Denominator().Uint64())
		})
	}
}

func TestFractionCmp(t *testing.T) {
	tests := []struct {
		name string
		a, b Fraction
		want int
	}{
		{"equal same terms", MustFraction(1, 2), MustFraction(1, 2), 0},
		{"equal different terms", MustFraction(1, 2), MustFraction(2, 4), 0},
		{"less", MustFraction(1, 3), MustFraction(1, 2), -1},
		{"greater", MustFraction(3, 4), MustFraction(2, 3), 1},
		// The threshold cut from the decay scenario: 729/1000 < 3/4 because
		// 729*4 = 2916 < 3000 = 3*1000.
		{"decay threshold", MustFraction(729, 1000), MustFraction(3, 4), -1},
		{"zero below everything", ZeroFraction(), MustFraction(1, 1000000), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Cmp(tt.b))
			assert.Equal(t, tt.want >= 0, tt.a.AtLeast(tt.b))
			assert.Equal(t, tt.want <= 0, tt.a.AtMost(tt.b))
			assert.Equal(t, tt.want < 0, tt.a.LessThan(tt.b))
		})
	}
}

func TestFractionMul(t *testing.T) {
	a := MustFraction(9, 10)
	b := MustFraction(9, 10)

	product := a.Mul(b)
	assert.True(t, product.Equals(MustFraction(81, 100)))

	chained := product.Mul(MustFraction(9, 10))
	assert.True(t, chained.Equals(MustFraction(729, 1000)))

	// Multiplying values in [0,1] never leaves [0,1].
	assert.True(t, chained.AtMost(OneFraction()))
	assert.True(t, ZeroFraction().AtMost(chained))
}

func TestFractionMulDeepChainExact(t *testing.T) {
	// 64 multiplications of 9/10 overflow any fixed-width integer; the big
	// integer representation must stay exact.
	acc := OneFraction()
	step := MustFraction(9, 10)
	for i := 0; i < 64; i++ {
		acc = acc.Mul(step)
	}

	expected := OneFraction()
	for i := 0; i < 32; i++ {
		expected = expected.Mul(step.Mul(step))
	}
	assert.True(t, acc.Equals(expected))
	assert.True(t, acc.LessThan(MustFraction(1, 500)))
}

func TestMinCombine(t *testing.T) {
	tests := []struct {
		name string
		a, b Fraction
		want Fraction
	}{
		{"first smaller", MustFraction(1, 2), MustFraction(3, 4), MustFraction(1, 2)},
		{"second smaller", MustFraction(4, 5), MustFraction(70, 100), MustFraction(70, 100)},
		{"equal", MustFraction(2, 3), MustFraction(4, 6), MustFraction(2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinCombine(tt.a, tt.b)
			assert.True(t, got.Equals(tt.want), "got %s want %s", got, tt.want)
			// Pessimistic: never above either input.
			assert.True(t, got.AtMost(tt.a))
			assert.True(t, got.AtMost(tt.b))
		})
	}
}

func TestFractionJSONRoundTrip(t *testing.T) {
	original := MustFraction(95, 100)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"95/100"`, string(data))

	var decoded Fraction
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equals(decoded))
}

func TestParseFraction(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1/2", false},
		{"0/1", false},
		{"1/1", false},
		{"3/2", true},
		{"1/0", true},
		{"-1/2", true},
		{"abc", true},
		{"1", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseFraction(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFractionZeroValueIsZero(t *testing.T) {
	var f Fraction
	assert.True(t, f.Equals(ZeroFraction()))
	assert.Equal(t, "0/1", f.String())
}
