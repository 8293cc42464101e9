/*
Package coin implements Amount, a signed 128 bit integer used to express
escrowed values.

All arithmetic is checked: an operation whose result cannot be represented
returns errors.ErrOverflow instead of wrapping around. The binary encoding is
16 bytes of big-endian two's complement, which is the encoding used when an
amount takes part in the escrow identifier derivation.
*/
package coin

import (
	"encoding/binary"
	"encoding/json"
	"math/big"
	"math/bits"
	"strings"

	"github.com/iov-one/htlc/errors"
)

// AmountSize is the length of the binary representation of an amount.
const AmountSize = 16

var (
	maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	twoTo128  = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64    = new(big.Int).SetUint64(^uint64(0))
)

// Amount is a signed 128 bit integer. The zero value is zero.
type Amount struct {
	hi int64
	lo uint64
}

// NewAmount returns an amount of given value.
func NewAmount(v int64) Amount {
	a := Amount{lo: uint64(v)}
	if v < 0 {
		a.hi = -1
	}
	return a
}

// MaxAmount returns the largest representable amount.
func MaxAmount() Amount {
	return Amount{hi: 1<<63 - 1, lo: ^uint64(0)}
}

// MinAmount returns the smallest representable amount.
func MinAmount() Amount {
	return Amount{hi: -1 << 63}
}

// AmountFromBig converts given integer. It fails if the value does not fit
// into 128 bits.
func AmountFromBig(v *big.Int) (Amount, error) {
	if v == nil {
		return Amount{}, errors.Wrap(errors.ErrInput, "nil value")
	}
	if v.Cmp(maxAmount) > 0 || v.Cmp(minAmount) < 0 {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s does not fit 128 bits", v)
	}
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, twoTo128)
	}
	lo := new(big.Int).And(u, mask64).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	return Amount{hi: int64(hi), lo: lo}, nil
}

// ParseAmount decodes the base 10 representation of an amount.
func ParseAmount(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Amount{}, errors.Wrapf(errors.ErrInput, "invalid amount %q", s)
	}
	return AmountFromBig(v)
}

// MustParseAmount is like ParseAmount but panics on error. Use it only with
// constant input.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Big returns the value as a big integer.
func (a Amount) Big() *big.Int {
	v := big.NewInt(a.hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(a.lo))
}

// String returns the base 10 representation.
func (a Amount) String() string {
	return a.Big().String()
}

// Sign returns -1, 0 or 1 depending on the sign of the amount.
func (a Amount) Sign() int {
	switch {
	case a.hi < 0:
		return -1
	case a.hi == 0 && a.lo == 0:
		return 0
	default:
		return 1
	}
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.Sign() > 0
}

// IsNegative returns true if the amount is less than zero.
func (a Amount) IsNegative() bool {
	return a.Sign() < 0
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.Sign() == 0
}

// Cmp compares two amounts and returns -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	default:
		return 0
	}
}

// Equals returns true if both amounts are of the same value.
func (a Amount) Equals(b Amount) bool {
	return a == b
}

// Add returns the sum of both amounts.
func (a Amount) Add(b Amount) (Amount, error) {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	hi := a.hi + b.hi + int64(carry)
	// Adding two values of the same sign must not change the sign.
	if (a.hi < 0) == (b.hi < 0) && (hi < 0) != (a.hi < 0) {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", a, b)
	}
	return Amount{hi: hi, lo: lo}, nil
}

// Sub returns the difference of both amounts.
func (a Amount) Sub(b Amount) (Amount, error) {
	lo, borrow := bits.Sub64(a.lo, b.lo, 0)
	hi := a.hi - b.hi - int64(borrow)
	// Subtracting a value of the opposite sign must not change the sign.
	if (a.hi < 0) != (b.hi < 0) && (hi < 0) != (a.hi < 0) {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s - %s", a, b)
	}
	return Amount{hi: hi, lo: lo}, nil
}

// Bytes returns the 16 byte big-endian two's complement representation.
func (a Amount) Bytes() []byte {
	b := make([]byte, AmountSize)
	binary.BigEndian.PutUint64(b[:8], uint64(a.hi))
	binary.BigEndian.PutUint64(b[8:], a.lo)
	return b
}

// AmountFromBytes decodes the representation returned by Bytes.
func AmountFromBytes(b []byte) (Amount, error) {
	if len(b) != AmountSize {
		return Amount{}, errors.Wrapf(errors.ErrInput, "amount must be %d bytes, got %d", AmountSize, len(b))
	}
	return Amount{
		hi: int64(binary.BigEndian.Uint64(b[:8])),
		lo: binary.BigEndian.Uint64(b[8:]),
	}, nil
}

// MarshalJSON encodes the amount as a decimal string, as JSON numbers cannot
// safely carry 128 bits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both a decimal string and a number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrInput, "amount must be a string or a number")
		}
		s = n.String()
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Set parses given decimal value. It allows to use an amount as a
// flag.Value.
func (a *Amount) Set(s string) error {
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
