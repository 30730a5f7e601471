// Package fcid implements the FatCatId identifier codec: the external,
// 26-character lowercase base32 rendering of a 128-bit ident UUID used to
// name every container, creator, file, fileset, webcapture, release, work,
// editor, editgroup, and changelog entry in the catalog.
package fcid

import (
	"database/sql/driver"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// encoding is RFC 4648 base32 without padding, matching the Rust
// implementation's data_encoding::BASE32_NOPAD.
var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Length is the fixed size of an encoded FatCatId.
const Length = 26

// BootstrapEditorUUID is the well-known editor identity that the
// `operator editor-bootstrap` command creates. MakeEditContext does not use
// it: callers pass the editor id explicitly.
const BootstrapEditorUUID = "00000000-0000-0000-AAAA-000000000001"

// FatCatId is a stable public identity: the base32 rendering of an ident
// UUID.
type FatCatId struct {
	id uuid.UUID
}

// Nil is the zero FatCatId.
var Nil = FatCatId{}

// New generates a new random (v4) FatCatId.
func New() FatCatId {
	return FatCatId{id: uuid.New()}
}

// FromUUID wraps an existing UUID as a FatCatId.
func FromUUID(u uuid.UUID) FatCatId {
	return FatCatId{id: u}
}

// MustParse parses s or panics. Useful for known-valid constants in tests
// and fixtures.
func MustParse(s string) FatCatId {
	id, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("fcid: invalid FatCatId %q: %v", s, err))
	}
	return id
}

// Parse decodes a 26-character base32 FatCatId into its UUID. Decoding is
// case-insensitive. Any length other than 26, or any character outside the
// base32 alphabet, is InvalidFatcatId.
func Parse(s string) (FatCatId, error) {
	if len(s) != Length {
		return FatCatId{}, &InvalidFatcatIdError{Value: s}
	}
	raw, err := encoding.DecodeString(strings.ToUpper(s))
	if err != nil {
		return FatCatId{}, &InvalidFatcatIdError{Value: s, Err: err}
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return FatCatId{}, &InvalidFatcatIdError{Value: s, Err: err}
	}
	return FatCatId{id: id}, nil
}

// InvalidFatcatIdError reports a malformed public identifier.
type InvalidFatcatIdError struct {
	Value string
	Err   error
}

func (e *InvalidFatcatIdError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid fatcat identifier %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid fatcat identifier %q: must be %d base32 characters", e.Value, Length)
}

func (e *InvalidFatcatIdError) Unwrap() error { return e.Err }

// UUID returns the underlying 128-bit identifier.
func (f FatCatId) UUID() uuid.UUID { return f.id }

// IsNil reports whether this is the zero FatCatId.
func (f FatCatId) IsNil() bool { return f.id == uuid.Nil }

// String always emits lowercase, 26-character base32 — the canonical
// rendering. Encoding never fails: every uuid.UUID is exactly 16 bytes.
func (f FatCatId) String() string {
	return strings.ToLower(encoding.EncodeToString(f.id[:]))
}

// Equal reports whether two FatCatIds name the same ident.
func (f FatCatId) Equal(other FatCatId) bool { return f.id == other.id }

// MarshalJSON implements json.Marshaler. A nil FatCatId marshals to null.
func (f FatCatId) MarshalJSON() ([]byte, error) {
	if f.IsNil() {
		return []byte("null"), nil
	}
	return json.Marshal(f.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FatCatId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("fcid: FatCatId must be a string: %w", err)
	}
	if s == "" {
		*f = FatCatId{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Scan implements sql.Scanner, reading the underlying UUID column.
func (f *FatCatId) Scan(value interface{}) error {
	if value == nil {
		*f = FatCatId{}
		return nil
	}
	switch v := value.(type) {
	case string:
		if v == "" {
			*f = FatCatId{}
			return nil
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("fcid: cannot scan string into FatCatId: %w", err)
		}
		*f = FatCatId{id: id}
		return nil
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("fcid: cannot scan bytes into FatCatId: %w", err)
		}
		*f = FatCatId{id: id}
		return nil
	default:
		return fmt.Errorf("fcid: cannot scan %T into FatCatId", value)
	}
}

// Value implements driver.Valuer, storing the underlying UUID as its
// canonical hyphenated string form (so the column type remains `uuid`).
func (f FatCatId) Value() (driver.Value, error) {
	if f.IsNil() {
		return nil, nil
	}
	return f.id.String(), nil
}
