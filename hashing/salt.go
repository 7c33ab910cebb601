package hashing

// NormalizeSalt returns salt zero-padded to [SaltMinLen] bytes. Salts that are
// already long enough are returned as-is, without a copy or truncation.
func NormalizeSalt(salt []byte) []byte {
	if len(salt) >= SaltMinLen {
		return salt
	}
	out := make([]byte, SaltMinLen)
	copy(out, salt)
	return out
}
