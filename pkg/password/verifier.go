package password

import "strings"

// Verify checks a password against a stored hash of any supported algorithm
func Verify(password, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, argon2Prefix):
		return VerifyArgon2(password, encodedHash)
	case isBcrypt(encodedHash):
		return VerifyBcrypt(password, encodedHash)
	default:
		return false, ErrUnsupportedHash
	}
}

// Verifier is the credential check used by the login flow. A malformed or
// unsupported stored hash never matches.
type Verifier struct {
	// OnError, when set, receives hash decoding failures. It never sees the raw password.
	OnError func(err error)
}

// Verify reports whether raw matches the stored hash
func (v Verifier) Verify(raw, hash string) bool {
	ok, err := Verify(raw, hash)
	if err != nil {
		if v.OnError != nil {
			v.OnError(err)
		}
		return false
	}
	return ok
}
