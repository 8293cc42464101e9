package coin

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/iov-one/htlc/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    string
		wantErr *errors.Error
	}{
		"zero":            {raw: "0", want: "0"},
		"positive":        {raw: "1000000000", want: "1000000000"},
		"negative":        {raw: "-42", want: "-42"},
		"beyond int64":    {raw: "18446744073709551616", want: "18446744073709551616"},
		"max":             {raw: "170141183460469231731687303715884105727", want: "170141183460469231731687303715884105727"},
		"min":             {raw: "-170141183460469231731687303715884105728", want: "-170141183460469231731687303715884105728"},
		"above max":       {raw: "170141183460469231731687303715884105728", wantErr: errors.ErrOverflow},
		"below min":       {raw: "-170141183460469231731687303715884105729", wantErr: errors.ErrOverflow},
		"not a number":    {raw: "ten", wantErr: errors.ErrInput},
		"decimal":         {raw: "1.5", wantErr: errors.ErrInput},
		"surrounding ws":  {raw: " 7 ", want: "7"},
		"empty":           {raw: "", wantErr: errors.ErrInput},
		"leading plus ok": {raw: "+9", want: "9"},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseAmount(tc.raw)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got.String())
			}
		})
	}
}

func TestAmountSign(t *testing.T) {
	assert.True(t, NewAmount(1).IsPositive())
	assert.True(t, NewAmount(-1).IsNegative())
	assert.True(t, NewAmount(0).IsZero())
	assert.True(t, Amount{}.IsZero())
	assert.True(t, MaxAmount().IsPositive())
	assert.True(t, MinAmount().IsNegative())
	assert.True(t, MustParseAmount("18446744073709551616").IsPositive())
}

func TestAmountCmp(t *testing.T) {
	values := []Amount{
		MinAmount(),
		MustParseAmount("-18446744073709551617"),
		NewAmount(-1),
		NewAmount(0),
		NewAmount(1),
		MustParseAmount("18446744073709551615"),
		MustParseAmount("18446744073709551616"),
		MaxAmount(),
	}
	for i := range values {
		for j := range values {
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			if got := values[i].Cmp(values[j]); got != want {
				t.Fatalf("%s cmp %s: want %d, got %d", values[i], values[j], want, got)
			}
		}
	}
}

func TestAmountArithmetic(t *testing.T) {
	cases := map[string]struct {
		a, b   Amount
		add    string
		addErr *errors.Error
		sub    string
		subErr *errors.Error
	}{
		"small values": {
			a: NewAmount(1000000000), b: NewAmount(100000000),
			add: "1100000000", sub: "900000000",
		},
		"carry into high word": {
			a: MustParseAmount("18446744073709551615"), b: NewAmount(1),
			add: "18446744073709551616", sub: "18446744073709551614",
		},
		"mixed signs": {
			a: NewAmount(-5), b: NewAmount(3),
			add: "-2", sub: "-8",
		},
		"max plus one": {
			a: MaxAmount(), b: NewAmount(1),
			addErr: errors.ErrOverflow, sub: "170141183460469231731687303715884105726",
		},
		"min minus one": {
			a: MinAmount(), b: NewAmount(1),
			add: "-170141183460469231731687303715884105727", subErr: errors.ErrOverflow,
		},
		"max minus negative": {
			a: MaxAmount(), b: NewAmount(-1),
			add: "170141183460469231731687303715884105726", subErr: errors.ErrOverflow,
		},
		"zero minus min": {
			a: NewAmount(0), b: MinAmount(),
			add: "-170141183460469231731687303715884105728", subErr: errors.ErrOverflow,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			sum, err := tc.a.Add(tc.b)
			if !tc.addErr.Is(err) {
				t.Fatalf("add: want %v, got %+v", tc.addErr, err)
			}
			if tc.addErr == nil {
				assert.Equal(t, tc.add, sum.String())
				assert.Equal(t, 0, new(big.Int).Add(tc.a.Big(), tc.b.Big()).Cmp(sum.Big()))
			}

			diff, err := tc.a.Sub(tc.b)
			if !tc.subErr.Is(err) {
				t.Fatalf("sub: want %v, got %+v", tc.subErr, err)
			}
			if tc.subErr == nil {
				assert.Equal(t, tc.sub, diff.String())
			}
		})
	}
}

func TestAmountBytes(t *testing.T) {
	cases := map[string]struct {
		amount Amount
		hex    string
	}{
		"one billion": {
			amount: NewAmount(1000000000),
			hex:    "0000000000000000000000003b9aca00",
		},
		"minus one": {
			amount: NewAmount(-1),
			hex:    "ffffffffffffffffffffffffffffffff",
		},
		"max": {
			amount: MaxAmount(),
			hex:    "7fffffffffffffffffffffffffffffff",
		},
		"min": {
			amount: MinAmount(),
			hex:    "80000000000000000000000000000000",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw := tc.amount.Bytes()
			assert.Equal(t, tc.hex, hex.EncodeToString(raw))

			got, err := AmountFromBytes(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.amount, got)
		})
	}

	_, err := AmountFromBytes([]byte{1, 2})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestAmountJSON(t *testing.T) {
	a := MustParseAmount("170141183460469231731687303715884105727")
	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"170141183460469231731687303715884105727"`, string(raw))

	var got Amount
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, a, got)

	require.NoError(t, json.Unmarshal([]byte(`1100000000`), &got))
	assert.Equal(t, NewAmount(1100000000), got)

	err = json.Unmarshal([]byte(`true`), &got)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestAmountFlag(t *testing.T) {
	var a Amount
	require.NoError(t, a.Set("1100000000"))
	assert.Equal(t, NewAmount(1100000000), a)
	assert.True(t, errors.ErrInput.Is(a.Set("many")))
}
