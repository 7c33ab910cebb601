package hashing

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Input limits enforced by the reference Argon2 library.
const (
	minDigestLen  = 4
	minSaltLen    = 8
	minTimeCost   = 1
	minLanes      = 1
	syncPoints    = 4
	maxInputBytes = math.MaxUint32
)

// ──────────────────────────────────────────────────────────────────────────────
// Invoker
// ──────────────────────────────────────────────────────────────────────────────

// Invoker computes encoded Argon2i hashes with a fixed [Params] set.
//
// # Thread safety
//
// Invoker is immutable after construction and safe for concurrent use. Every
// call allocates its own output buffer.
type Invoker struct {
	params Params
}

// NewInvoker constructs an Invoker. It returns a [*ConfigurationError] when
// the encoded capacity of p is too small for p itself.
func NewInvoker(p Params) (*Invoker, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Invoker{params: p}, nil
}

// Params returns the parameter set used by the invoker.
func (inv *Invoker) Params() Params { return inv.params }

// HashEncoded hashes plaintext with salt and returns the PHC-encoded result.
// salt is used exactly as given; callers normalise it first with
// [NormalizeSalt].
//
// Every failure is a [*ComputationError] with a non-OK [Status]. HashEncoded
// never returns an empty string together with a nil error.
func (inv *Invoker) HashEncoded(plaintext, salt []byte) (string, error) {
	p := inv.params
	if st, detail := checkInputs(p, len(plaintext), len(salt)); st != StatusOK {
		return "", &ComputationError{Status: st, Detail: detail}
	}

	need := EncodedLen(p, len(salt))
	if need > p.EncodedCapacity {
		return "", &ComputationError{
			Status: StatusEncodingFail,
			Detail: fmt.Sprintf("need %d bytes, buffer holds %d", need, p.EncodedCapacity),
		}
	}

	digest := argon2.Key(plaintext, salt, p.TimeCost, p.MemoryKiB, p.Parallelism, p.DigestLen)

	buf := make([]byte, 0, p.EncodedCapacity)
	buf = appendHeader(buf, p)
	buf = base64.RawStdEncoding.AppendEncode(buf, salt)
	buf = append(buf, '$')
	buf = base64.RawStdEncoding.AppendEncode(buf, digest)
	return string(buf), nil
}

// checkInputs applies the reference library's input validation in its order.
func checkInputs(p Params, plainLen, saltLen int) (Status, string) {
	switch {
	case p.Variant != VariantArgon2i:
		return StatusIncorrectType, string(p.Variant)
	case p.Version != argon2.Version:
		return StatusIncorrectVersion, strconv.FormatUint(uint64(p.Version), 10)
	case p.DigestLen < minDigestLen:
		return StatusOutputTooShort, fmt.Sprintf("digest length %d < %d", p.DigestLen, minDigestLen)
	case uint64(plainLen) > maxInputBytes:
		return StatusPwdTooLong, fmt.Sprintf("%d bytes", plainLen)
	case saltLen < minSaltLen:
		return StatusSaltTooShort, fmt.Sprintf("salt length %d < %d", saltLen, minSaltLen)
	case uint64(saltLen) > maxInputBytes:
		return StatusSaltTooLong, fmt.Sprintf("%d bytes", saltLen)
	case p.TimeCost < minTimeCost:
		return StatusTimeTooSmall, fmt.Sprintf("t=%d", p.TimeCost)
	case p.Parallelism < minLanes:
		return StatusLanesTooFew, fmt.Sprintf("p=%d", p.Parallelism)
	case p.MemoryKiB < 2*syncPoints*uint32(p.Parallelism):
		return StatusMemoryTooLittle, fmt.Sprintf("m=%d KiB < %d KiB", p.MemoryKiB, 2*syncPoints*uint32(p.Parallelism))
	}
	return StatusOK, ""
}

// ──────────────────────────────────────────────────────────────────────────────
// PHC string format decoding
// ──────────────────────────────────────────────────────────────────────────────

// Decoded holds the parameters and raw values parsed from an encoded hash.
type Decoded struct {
	Variant     Variant
	Version     uint32
	MemoryKiB   uint32
	TimeCost    uint32
	Parallelism uint8
	Salt        []byte
	Digest      []byte
}

// Decode parses an encoded hash produced by [Invoker.HashEncoded]:
//
//	$argon2i$v=19$m=4096,t=3,p=1$<salt_base64>$<digest_base64>
//
// The encoded form is a versioned contract; anything that reads it should go
// through Decode. Only version 19 is accepted, the parameter segment must hold
// exactly m, t and p, and neither salt nor digest may be empty.
func Decode(encoded string) (*Decoded, error) {
	// The leading "$" produces an empty first element.
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.Wrapf(ErrInvalidHash, "expected 5-segment PHC string, got %d segments", len(parts)-1)
	}

	if parts[1] != string(VariantArgon2i) {
		return nil, errors.Wrapf(ErrInvalidHash, "unknown argon2 variant %q", parts[1])
	}

	version, err := parseKV(parts[2], "v")
	if err != nil {
		return nil, err
	}
	if version != argon2.Version {
		return nil, errors.Wrapf(ErrInvalidHash, "unsupported version %d", version)
	}

	kvs, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}
	memory, time, lanes := kvs["m"], kvs["t"], kvs["p"]
	if memory > math.MaxUint32 || time > math.MaxUint32 || lanes > math.MaxUint8 {
		return nil, errors.Wrapf(ErrInvalidHash, "parameter out of range in %q", parts[3])
	}

	salt, err := decodeSegment(parts[4], "salt")
	if err != nil {
		return nil, err
	}
	digest, err := decodeSegment(parts[5], "digest")
	if err != nil {
		return nil, err
	}

	return &Decoded{
		Variant:     VariantArgon2i,
		Version:     uint32(version),
		MemoryKiB:   uint32(memory),
		TimeCost:    uint32(time),
		Parallelism: uint8(lanes),
		Salt:        salt,
		Digest:      digest,
	}, nil
}

// formatError is an [ErrInvalidHash] that keeps the parse error that caused
// it reachable through errors.Is and errors.As.
type formatError struct {
	msg   string
	cause error
}

func (e *formatError) Error() string { return ErrInvalidHash.Error() + ": " + e.msg + ": " + e.cause.Error() }

func (e *formatError) Is(target error) bool { return target == ErrInvalidHash }

func (e *formatError) Unwrap() error { return e.cause }

func invalidHash(cause error, format string, args ...any) error {
	return errors.WithStack(&formatError{msg: fmt.Sprintf(format, args...), cause: cause})
}

// parseKV parses a "key=value" string and returns the uint64 value.
func parseKV(s, key string) (uint64, error) {
	prefix := key + "="
	if !strings.HasPrefix(s, prefix) {
		return 0, errors.Wrapf(ErrInvalidHash, "expected %q prefix in %q", prefix, s)
	}
	v, err := strconv.ParseUint(s[len(prefix):], 10, 64)
	if err != nil {
		return 0, invalidHash(err, "non-numeric value in %q", s)
	}
	return v, nil
}

// parseParams splits "m=4096,t=3,p=1" into a map holding exactly m, t and p.
func parseParams(s string) (map[string]uint64, error) {
	out := make(map[string]uint64, 3)
	for _, kv := range strings.Split(s, ",") {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			return nil, errors.Wrapf(ErrInvalidHash, "malformed param %q", kv)
		}
		key := kv[:eq]
		switch key {
		case "m", "t", "p":
		default:
			return nil, errors.Wrapf(ErrInvalidHash, "unknown param %q", key)
		}
		if _, dup := out[key]; dup {
			return nil, errors.Wrapf(ErrInvalidHash, "duplicate param %q", key)
		}
		v, err := parseKV(kv, key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	if len(out) != 3 {
		return nil, errors.Wrapf(ErrInvalidHash, "missing m/t/p in parameter segment %q", s)
	}
	return out, nil
}

func decodeSegment(seg, name string) ([]byte, error) {
	if seg == "" {
		return nil, errors.Wrapf(ErrInvalidHash, "empty %s", name)
	}
	b, err := base64.RawStdEncoding.DecodeString(seg)
	if err != nil {
		return nil, invalidHash(err, "invalid %s base64", name)
	}
	return b, nil
}
