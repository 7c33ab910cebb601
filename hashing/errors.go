package hashing

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors returned by hashing operations.
//
// Use [errors.Is] for comparisons:
//
//	pool.Hash(plain, salt, func(err error, encoded string) {
//	    if errors.Is(err, hashing.ErrComputation) {
//	        // the primitive rejected the input
//	    }
//	})
var (
	// ErrValidation classifies every [*ValidationError]: a call was rejected
	// synchronously, before any work was queued.
	ErrValidation = errors.New("hashing: invalid call arguments")

	// ErrComputation classifies every [*ComputationError]: the Argon2
	// primitive refused the input or the encoded result did not fit.
	ErrComputation = errors.New("hashing: argon2 computation failed")

	// ErrConfiguration classifies every [*ConfigurationError]. It is only
	// returned at construction time.
	ErrConfiguration = errors.New("hashing: invalid configuration")

	// ErrInvalidHash is returned by [Decode] when an encoded hash has an
	// unrecognised format, missing fields, or invalid base64.
	ErrInvalidHash = errors.New("hashing: invalid or unrecognised hash string")

	// ErrInvalidOption is returned when a constructor is called with an
	// option value outside the allowed range (e.g. zero workers).
	ErrInvalidOption = errors.New("hashing: invalid option value")

	// ErrPoolClosed is returned by [Pool.Hash] and [Pool.Submit] once
	// [Pool.Close] has been called.
	ErrPoolClosed = errors.New("hashing: pool is closed")
)

// ValidationError reports malformed or missing call arguments. It is always
// returned synchronously from the submitting call.
type ValidationError struct {
	Arg    int // zero-based argument position, -1 when not tied to one
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Arg < 0 {
		return fmt.Sprintf("hashing: %s", e.Reason)
	}
	return fmt.Sprintf("hashing: argument %d: %s", e.Arg, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ComputationError carries a non-OK [Status] from the invoker across the
// asynchronous boundary to the completion callback.
type ComputationError struct {
	Status Status
	Detail string
}

func (e *ComputationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("hashing: argon2: %s", e.Status)
	}
	return fmt.Sprintf("hashing: argon2: %s: %s", e.Status, e.Detail)
}

// Is makes errors.Is(err, ErrComputation) hold.
func (e *ComputationError) Is(target error) bool { return target == ErrComputation }

// ConfigurationError is a fatal start-up error: the encoded buffer capacity
// cannot hold a hash produced with the configured parameters.
type ConfigurationError struct {
	Capacity int
	Required int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hashing: encoded capacity %d is smaller than the %d bytes required by the parameter set",
		e.Capacity, e.Required)
}

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Status mirrors the result codes of the reference Argon2 library, so a
// failure reads the same whichever implementation produced it.
type Status int

const (
	StatusOK Status = iota
	StatusOutputTooShort
	StatusPwdTooLong
	StatusSaltTooShort
	StatusSaltTooLong
	StatusTimeTooSmall
	StatusMemoryTooLittle
	StatusLanesTooFew
	StatusIncorrectType
	StatusIncorrectVersion
	StatusEncodingFail
)

var statusText = map[Status]string{
	StatusOK:               "OK",
	StatusOutputTooShort:   "output is too short",
	StatusPwdTooLong:       "password is too long",
	StatusSaltTooShort:     "salt is too short",
	StatusSaltTooLong:      "salt is too long",
	StatusTimeTooSmall:     "time cost is too small",
	StatusMemoryTooLittle:  "memory cost is too small",
	StatusLanesTooFew:      "too few lanes",
	StatusIncorrectType:    "there is no such version of Argon2",
	StatusIncorrectVersion: "the version of Argon2 is not supported",
	StatusEncodingFail:     "encoding failed",
}

func (s Status) String() string {
	if txt, ok := statusText[s]; ok {
		return txt
	}
	return fmt.Sprintf("unknown status %d", int(s))
}
