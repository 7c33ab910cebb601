// Package hashing computes Argon2i password hashes off the caller's goroutine
// and hands the encoded result back on the caller's own execution context.
//
// # Architecture
//
// A request flows through four pieces:
//
//   - [NormalizeSalt] zero-pads salts shorter than [SaltMinLen] bytes.
//   - [Invoker] runs Argon2i with the fixed [DefaultParams] and encodes the
//     result into a buffer of [EncodedCapacity] bytes.
//   - [Pool] queues a [Task] per request and runs it on a worker goroutine.
//   - [Loop] is the caller's context: completions are posted to it and run
//     on whichever goroutine drives [Loop.Run] or [Loop.Drain].
//
// # Quick start
//
//	loop := hashing.NewLoop()
//	pool, err := hashing.NewPool(loop, hashing.DefaultPoolOptions())
//	if err != nil { log.Fatal(err) }
//	defer pool.Close()
//
//	err = pool.Hash([]byte("correct battery horse"), []byte("abcdefghijklmnop"),
//	    func(err error, encoded string) {
//	        // runs inside loop.Run, never on a worker
//	    })
//
//	go loop.Run(ctx) // or call loop.Drain() from the host's own tick
//
// # Fixed parameters
//
// Argon2i, version 19, t=3, m=4096 KiB, p=1, 32-byte digest. The parameters
// are not configurable in production; [Params] exists so tests can inject a
// set the primitive rejects.
//
// # Encoded hash format
//
// Hashes are PHC strings:
//
//	$argon2i$v=19$m=4096,t=3,p=1$<base64-salt>$<base64-digest>
//
// Base64 is the standard alphabet without padding. The string is a versioned
// contract; parse it with [Decode].
//
// # Errors
//
// Argument problems are a [*ValidationError] returned synchronously. Failures
// of the primitive are a [*ComputationError] delivered through the callback.
// An undersized [Params.EncodedCapacity] is a [*ConfigurationError] from
// [NewPool]. Nothing is retried.
package hashing
