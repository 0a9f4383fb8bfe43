package domain

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "payout/pkg/domain-errors"
)

// AddressLength is the byte length of an account address.
const AddressLength = 20

// Address identifies a principal: an owner, recipient, provider or a
// controlled contract. The text form is the EIP-55 checksummed hex string.
type Address [AddressLength]byte

// ZeroAddress is the unset address.
var ZeroAddress Address

// ParseAddress constructs an Address from a 0x-prefixed or bare hex string.
//
// All-lowercase and all-uppercase inputs are accepted as-is. Mixed-case input
// must carry a valid EIP-55 checksum.
//
// Errors: returns CodeInvalidInput on bad length, bad hex or checksum mismatch.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(raw) != 2*AddressLength {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address must be 20 bytes of hex")
	}
	if _, err := hex.Decode(a[:], []byte(raw)); err != nil {
		return ZeroAddress, dErrors.New(dErrors.CodeInvalidInput, "address is not valid hex")
	}
	if isMixedCase(raw) && a.Hex()[2:] != raw {
		return ZeroAddress, dErrors.New(dErrors.CodeInvalidInput, "address checksum mismatch")
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests. It panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// BytesToAddress uses the last 20 bytes of b.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// Hex returns the EIP-55 checksummed form.
func (a Address) Hex() string {
	lower := hex.EncodeToString(a[:])
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i := range out {
		if out[i] < 'a' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] -= 'a' - 'A'
		}
	}
	return "0x" + string(out)
}

func (a Address) String() string {
	return a.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

// Value implements driver.Valuer; addresses are stored as 20-byte BYTEA.
func (a Address) Value() (driver.Value, error) {
	return a.Bytes(), nil
}

// Scan implements sql.Scanner for BYTEA and hex text columns.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		if len(v) != AddressLength {
			return fmt.Errorf("scan address: want %d bytes, got %d", AddressLength, len(v))
		}
		copy(a[:], v)
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("scan address: unsupported type %T", src)
	}
}
