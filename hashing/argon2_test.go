package hashing_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/go-crypt/crypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"github.com/hasbyte1/go-argon2-async/hashing"
)

func newTestInvoker(t testing.TB) *hashing.Invoker {
	t.Helper()
	inv, err := hashing.NewInvoker(hashing.DefaultParams())
	require.NoError(t, err)
	return inv
}

// mustHash hashes with a normalised salt, the same way a pool task does.
func mustHash(t testing.TB, inv *hashing.Invoker, plaintext, salt string) string {
	t.Helper()
	encoded, err := inv.HashEncoded([]byte(plaintext), hashing.NormalizeSalt([]byte(salt)))
	require.NoError(t, err)
	require.NotEmpty(t, encoded)
	return encoded
}

// ──────────────────────────────────────────────────────────────────────────────
// Encoding
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoker_HashEncoded_PHCFormat(t *testing.T) {
	inv := newTestInvoker(t)
	encoded := mustHash(t, inv, "correct battery horse", "abcdefghijklmnop")

	assert.True(t, strings.HasPrefix(encoded, "$argon2i$v=19$m=4096,t=3,p=1$"), "got %q", encoded)
	assert.Contains(t, encoded, "$YWJjZGVmZ2hpamtsbW5vcA$")
	assert.Len(t, encoded, hashing.EncodedLen(hashing.DefaultParams(), 16)-1)
	assert.LessOrEqual(t, len(encoded)+1, hashing.EncodedCapacity)
}

func TestInvoker_HashEncoded_Deterministic(t *testing.T) {
	inv := newTestInvoker(t)
	first := mustHash(t, inv, "correct battery horse", "abcdefghijklmnop")
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, mustHash(t, inv, "correct battery horse", "abcdefghijklmnop"))
	}
}

func TestInvoker_HashEncoded_DifferentInputsDiffer(t *testing.T) {
	inv := newTestInvoker(t)
	base := mustHash(t, inv, "password-one", "abcdefghijklmnop")

	assert.NotEqual(t, base, mustHash(t, inv, "password-two", "abcdefghijklmnop"), "plaintext change")
	assert.NotEqual(t, base, mustHash(t, inv, "password-one", "abcdefghijklmnoq"), "salt change")
}

func TestInvoker_HashEncoded_EmptyPlaintext(t *testing.T) {
	inv := newTestInvoker(t)
	encoded := mustHash(t, inv, "", "abcdefghijklmnop")

	d, err := hashing.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, argon2.Key(nil, []byte("abcdefghijklmnop"), 3, 4096, 1, 32), d.Digest)
}

func TestInvoker_HashEncoded_PaddingIsLoadBearing(t *testing.T) {
	inv := newTestInvoker(t)

	short := mustHash(t, inv, "x", "short")
	zeroPadded := mustHash(t, inv, "x", "short\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	spacePadded := mustHash(t, inv, "x", "short           ")

	assert.Equal(t, short, zeroPadded, "implicit and explicit zero padding must agree")
	assert.NotEqual(t, short, spacePadded)

	d, err := hashing.Decode(short)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("short"), make([]byte, 11)...), d.Salt)
}

// ──────────────────────────────────────────────────────────────────────────────
// Decode / independent verification
// ──────────────────────────────────────────────────────────────────────────────

func TestDecode_ReproducesDigest(t *testing.T) {
	inv := newTestInvoker(t)
	encoded := mustHash(t, inv, "correct battery horse", "abcdefghijklmnop")

	d, err := hashing.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, hashing.VariantArgon2i, d.Variant)
	assert.Equal(t, uint32(argon2.Version), d.Version)
	assert.Equal(t, hashing.MemoryKiB, d.MemoryKiB)
	assert.Equal(t, hashing.TimeCost, d.TimeCost)
	assert.Equal(t, hashing.Parallelism, d.Parallelism)
	assert.Equal(t, []byte("abcdefghijklmnop"), d.Salt)

	recomputed := argon2.Key([]byte("correct battery horse"), d.Salt,
		d.TimeCost, d.MemoryKiB, d.Parallelism, uint32(len(d.Digest)))
	assert.True(t, bytes.Equal(recomputed, d.Digest))
}

// go-crypt is an unrelated PHC implementation; agreeing with it shows the
// encoding is the standard one and not merely self-consistent.
func TestEncodedHash_VerifiesWithGoCrypt(t *testing.T) {
	inv := newTestInvoker(t)
	encoded := mustHash(t, inv, "correct battery horse", "abcdefghijklmnop")

	ok, err := crypt.CheckPassword("correct battery horse", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = crypt.CheckPassword("correct battery staple", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecode_Invalid(t *testing.T) {
	salt := base64.RawStdEncoding.EncodeToString([]byte("abcdefghijklmnop"))
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not phc", "not-a-hash"},
		{"argon2id", "$argon2id$v=19$m=4096,t=3,p=1$" + salt + "$AAAA"},
		{"missing version key", "$argon2i$19$m=4096,t=3,p=1$" + salt + "$AAAA"},
		{"missing p", "$argon2i$v=19$m=4096,t=3$" + salt + "$AAAA"},
		{"non-numeric m", "$argon2i$v=19$m=lots,t=3,p=1$" + salt + "$AAAA"},
		{"lanes overflow", "$argon2i$v=19$m=4096,t=3,p=256$" + salt + "$AAAA"},
		{"bad salt", "$argon2i$v=19$m=4096,t=3,p=1$!!!$AAAA"},
		{"bad digest", "$argon2i$v=19$m=4096,t=3,p=1$" + salt + "$!!!"},
		{"too many segments", "$argon2i$v=19$m=4096,t=3,p=1$" + salt + "$AAAA$x"},
		{"version 16", "$argon2i$v=16$m=4096,t=3,p=1$" + salt + "$AAAA"},
		{"empty digest", "$argon2i$v=19$m=4096,t=3,p=1$" + salt + "$"},
		{"empty salt", "$argon2i$v=19$m=4096,t=3,p=1$$AAAA"},
		{"duplicate key", "$argon2i$v=19$m=4096,t=3,p=1,p=1$" + salt + "$AAAA"},
		{"unknown key", "$argon2i$v=19$m=4096,t=3,p=1,x=1$" + salt + "$AAAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hashing.Decode(tt.encoded)
			assert.True(t, errors.Is(err, hashing.ErrInvalidHash), "got %v", err)
		})
	}
}

func TestDecode_KeepsParseCause(t *testing.T) {
	salt := base64.RawStdEncoding.EncodeToString([]byte("abcdefghijklmnop"))

	_, err := hashing.Decode("$argon2i$v=19$m=lots,t=3,p=1$" + salt + "$AAAA")
	assert.True(t, errors.Is(err, hashing.ErrInvalidHash), "got %v", err)
	assert.True(t, errors.Is(err, strconv.ErrSyntax), "got %v", err)

	_, err = hashing.Decode("$argon2i$v=19$m=4096,t=3,p=1$" + salt + "$!!!")
	assert.True(t, errors.Is(err, hashing.ErrInvalidHash), "got %v", err)
	var corrupt base64.CorruptInputError
	assert.True(t, errors.As(err, &corrupt), "got %v", err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Failure statuses
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoker_HashEncoded_RejectedParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*hashing.Params)
		want   hashing.Status
	}{
		{"time=0", func(p *hashing.Params) { p.TimeCost = 0 }, hashing.StatusTimeTooSmall},
		{"lanes=0", func(p *hashing.Params) { p.Parallelism = 0 }, hashing.StatusLanesTooFew},
		{"memory too low", func(p *hashing.Params) { p.MemoryKiB = 7 }, hashing.StatusMemoryTooLittle},
		{"digest too short", func(p *hashing.Params) { p.DigestLen = 3 }, hashing.StatusOutputTooShort},
		{"argon2id", func(p *hashing.Params) { p.Variant = "argon2id" }, hashing.StatusIncorrectType},
		{"version 16", func(p *hashing.Params) { p.Version = 0x10 }, hashing.StatusIncorrectVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := hashing.DefaultParams()
			tt.mutate(&p)
			inv, err := hashing.NewInvoker(p)
			require.NoError(t, err)

			encoded, err := inv.HashEncoded([]byte("pw"), []byte("abcdefghijklmnop"))
			assert.Empty(t, encoded)
			require.True(t, errors.Is(err, hashing.ErrComputation), "got %v", err)

			var ce *hashing.ComputationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.want, ce.Status)
		})
	}
}

func TestInvoker_HashEncoded_SaltTooShortUnnormalised(t *testing.T) {
	inv := newTestInvoker(t)
	_, err := inv.HashEncoded([]byte("pw"), []byte("1234567"))

	var ce *hashing.ComputationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, hashing.StatusSaltTooShort, ce.Status)
}

func TestInvoker_HashEncoded_CapacityBoundary(t *testing.T) {
	inv := newTestInvoker(t)

	// A 25-byte salt encodes to exactly EncodedCapacity bytes with the terminator.
	encoded, err := inv.HashEncoded([]byte("pw"), bytes.Repeat([]byte{'s'}, 25))
	require.NoError(t, err)
	assert.Len(t, encoded, hashing.EncodedCapacity-1)

	encoded, err = inv.HashEncoded([]byte("pw"), bytes.Repeat([]byte{'s'}, 26))
	assert.Empty(t, encoded)
	var ce *hashing.ComputationError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, hashing.StatusEncodingFail, ce.Status)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "time cost is too small", hashing.StatusTimeTooSmall.String())
	assert.Equal(t, "unknown status 99", hashing.Status(99).String())
}
