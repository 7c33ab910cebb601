package hashing

import (
	"encoding/base64"
	"strconv"

	"github.com/inhies/go-bytesize"
	"golang.org/x/crypto/argon2"
)

// Variant names the Argon2 flavour written into the encoded hash.
type Variant string

// VariantArgon2i is the only variant this package produces.
const VariantArgon2i Variant = "argon2i"

// The fixed parameter set. Changing any of these changes every hash the
// package produces.
const (
	// TimeCost is the number of passes over memory.
	TimeCost uint32 = 3

	// MemoryKiB is the memory cost in KiB (4 MiB).
	MemoryKiB uint32 = 4096

	// Parallelism is the number of lanes.
	Parallelism uint8 = 1

	// DigestLen is the raw digest length in bytes.
	DigestLen uint32 = 32

	// SaltMinLen is the length shorter salts are zero-padded to.
	SaltMinLen = 16

	// EncodedCapacity is the size of the encoded output buffer, including the
	// terminator byte.
	EncodedCapacity = 108
)

// minEncodedLen is the encoded size, terminator included, of a hash made with
// the fixed parameters and a SaltMinLen salt. The header literal must follow
// the constants above.
const minEncodedLen = len("$argon2i$v=19$m=4096,t=3,p=1$") +
	(SaltMinLen*8+5)/6 + len("$") + (int(DigestLen)*8+5)/6 + 1

// Fails to compile when EncodedCapacity cannot hold minEncodedLen bytes.
var _ [EncodedCapacity - minEncodedLen]struct{}

// Params is the parameter set handed to an [Invoker]. Production code uses
// [DefaultParams]; other values exist so tests can drive the failure paths.
//
// Params is a value type: copies are independent and never mutated after
// construction.
type Params struct {
	Variant         Variant
	Version         uint32
	TimeCost        uint32
	MemoryKiB       uint32
	Parallelism     uint8
	DigestLen       uint32
	EncodedCapacity int
}

// DefaultParams returns the fixed parameter set.
func DefaultParams() Params {
	return Params{
		Variant:         VariantArgon2i,
		Version:         argon2.Version,
		TimeCost:        TimeCost,
		MemoryKiB:       MemoryKiB,
		Parallelism:     Parallelism,
		DigestLen:       DigestLen,
		EncodedCapacity: EncodedCapacity,
	}
}

// MemoryBytes reports the memory cost as a byte size, for logging.
func (p Params) MemoryBytes() bytesize.ByteSize {
	return bytesize.ByteSize(p.MemoryKiB) * bytesize.KB
}

// Validate checks that EncodedCapacity can hold a hash produced with p and a
// SaltMinLen salt. A failure is a [*ConfigurationError].
//
// Range checks on the cost parameters happen per call in the invoker and are
// reported as a [*ComputationError].
func (p Params) Validate() error {
	if need := EncodedLen(p, SaltMinLen); need > p.EncodedCapacity {
		return &ConfigurationError{Capacity: p.EncodedCapacity, Required: need}
	}
	return nil
}

// EncodedLen returns the exact number of bytes, terminator included, needed
// to encode a hash made with p and a salt of saltLen bytes.
func EncodedLen(p Params, saltLen int) int {
	return len(appendHeader(nil, p)) +
		base64.RawStdEncoding.EncodedLen(saltLen) + 1 +
		base64.RawStdEncoding.EncodedLen(int(p.DigestLen)) + 1
}

// appendHeader writes "$<variant>$v=<version>$m=<m>,t=<t>,p=<p>$".
func appendHeader(dst []byte, p Params) []byte {
	dst = append(dst, '$')
	dst = append(dst, p.Variant...)
	dst = append(dst, "$v="...)
	dst = strconv.AppendUint(dst, uint64(p.Version), 10)
	dst = append(dst, "$m="...)
	dst = strconv.AppendUint(dst, uint64(p.MemoryKiB), 10)
	dst = append(dst, ",t="...)
	dst = strconv.AppendUint(dst, uint64(p.TimeCost), 10)
	dst = append(dst, ",p="...)
	dst = strconv.AppendUint(dst, uint64(p.Parallelism), 10)
	return append(dst, '$')
}
