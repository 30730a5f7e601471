package fcid

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fcidShape = regexp.MustCompile(`^[a-z2-7]{26}$`)

func TestEncodeKnownValue(t *testing.T) {
	u := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	f := FromUUID(u)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaae", f.String())
	assert.Regexp(t, fcidShape, f.String())
}

func TestDecodeKnownValue(t *testing.T) {
	f, err := Parse("aaaaaaaaaaaaaaaaaaaaaaaaae")
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("00000000-0000-0000-0000-000000000001"), f.UUID())
}

func TestRoundTripRandom(t *testing.T) {
	for i := 0; i < 256; i++ {
		u := uuid.New()
		encoded := FromUUID(u).String()
		assert.Len(t, encoded, Length)
		assert.Regexp(t, fcidShape, encoded)

		decoded, err := Parse(encoded)
		require.NoError(t, err)
		assert.Equal(t, u, decoded.UUID())
	}
}

func TestDecodeCaseInsensitive(t *testing.T) {
	lower, err := Parse("aaaaaaaaaaaaaaaaaaaaaaaaae")
	require.NoError(t, err)
	upper, err := Parse("AAAAAAAAAAAAAAAAAAAAAAAAAE")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := Parse("short")
	require.Error(t, err)
	var invalid *InvalidFatcatIdError
	assert.ErrorAs(t, err, &invalid)
}

func TestDecodeRejectsBadAlphabet(t *testing.T) {
	// '1', '0', '8', '9' are not in the RFC 4648 base32 alphabet.
	_, err := Parse("1aaaaaaaaaaaaaaaaaaaaaaaaa")
	require.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	f := New()
	data, err := json.Marshal(f)
	require.NoError(t, err)

	var decoded FatCatId
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, f.Equal(decoded))
}

func TestJSONNil(t *testing.T) {
	data, err := json.Marshal(Nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var decoded FatCatId
	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.True(t, decoded.IsNil())
}

func TestScanValueRoundTrip(t *testing.T) {
	f := New()
	v, err := f.Value()
	require.NoError(t, err)

	var scanned FatCatId
	require.NoError(t, scanned.Scan(v))
	assert.True(t, f.Equal(scanned))
}
