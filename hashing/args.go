package hashing

import "fmt"

// HashArgs is the entry point for dynamically typed hosts (script bindings,
// RPC shims) that forward untyped call arguments. It expects
//
//	(plaintext string|[]byte, salt string|[]byte, onComplete Callback|func(error, string))
//
// and otherwise behaves exactly like [Pool.Hash]. Missing or mistyped
// arguments are reported as a [*ValidationError] before anything is queued.
// Extra arguments are ignored.
func (p *Pool) HashArgs(args ...any) error {
	if len(args) < 3 {
		return &ValidationError{Arg: -1, Reason: "3 arguments expected"}
	}
	plaintext, err := bytesArg(args, 0)
	if err != nil {
		return err
	}
	salt, err := bytesArg(args, 1)
	if err != nil {
		return err
	}
	onComplete, err := callbackArg(args, 2)
	if err != nil {
		return err
	}
	return p.Hash(plaintext, salt, onComplete)
}

func bytesArg(args []any, i int) ([]byte, error) {
	switch v := args[i].(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, &ValidationError{Arg: i, Reason: fmt.Sprintf("expected string or []byte, got %T", v)}
	}
}

func callbackArg(args []any, i int) (Callback, error) {
	switch v := args[i].(type) {
	case Callback:
		return v, nil
	case func(error, string):
		return v, nil
	default:
		return nil, &ValidationError{Arg: i, Reason: fmt.Sprintf("expected a callback, got %T", v)}
	}
}
