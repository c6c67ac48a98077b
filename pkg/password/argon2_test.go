package password

import (
	"errors"
	"strings"
	"testing"
)

// fastParams keeps the suite quick; production uses DefaultParams.
var fastParams = &Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		params   *Params
		prefix   string
	}{
		{
			name:     "default params",
			password: "SecurePassword123!",
			params:   nil,
			prefix:   "$argon2id$v=19$m=65536,t=3,p=2$",
		},
		{
			name:     "custom params",
			password: "AnotherPassword456!",
			params:   fastParams,
			prefix:   "$argon2id$v=19$m=8192,t=1,p=1$",
		},
		{
			name:     "empty password",
			password: "",
			params:   fastParams,
			prefix:   "$argon2id$v=19$",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := Hash(tt.password, tt.params)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if !strings.HasPrefix(hash, tt.prefix) {
				t.Errorf("Hash() = %s, want prefix %s", hash, tt.prefix)
			}
		})
	}
}

func TestVerifyArgon2(t *testing.T) {
	const password = "TestPassword123!"
	hash, err := Hash(password, fastParams)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  error
	}{
		{name: "correct password", password: password, hash: hash, want: true},
		{name: "incorrect password", password: "WrongPassword", hash: hash, want: false},
		{name: "not an argon2 hash", password: password, hash: "invalid-hash", wantErr: ErrInvalidHash},
		{name: "missing parts", password: password, hash: "$argon2id$v=19$m=65536", wantErr: ErrInvalidHash},
		{name: "wrong version", password: password, hash: "$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA", wantErr: ErrIncompatibleVersion},
		{name: "bad salt encoding", password: password, hash: "$argon2id$v=19$m=65536,t=3,p=2$!!$aGFzaA", wantErr: ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyArgon2(tt.password, tt.hash)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("VerifyArgon2() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyArgon2() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("VerifyArgon2() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashUniqueness(t *testing.T) {
	const password = "SamePassword123!"

	hash1, err := Hash(password, fastParams)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	hash2, err := Hash(password, fastParams)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}

	for _, h := range []string{hash1, hash2} {
		if ok, err := VerifyArgon2(password, h); err != nil || !ok {
			t.Errorf("VerifyArgon2() failed for %s", h)
		}
	}
}

func TestDecodeArgon2(t *testing.T) {
	hash, err := Hash("TestPassword", fastParams)
	if err != nil {
		t.Fatalf("Failed to create hash: %v", err)
	}

	params, salt, key, err := decodeArgon2(hash)
	if err != nil {
		t.Fatalf("decodeArgon2() error = %v", err)
	}
	if params.Memory != fastParams.Memory || params.Iterations != fastParams.Iterations {
		t.Errorf("decodeArgon2() params = %+v, want %+v", params, fastParams)
	}
	if len(salt) != int(fastParams.SaltLength) {
		t.Errorf("decodeArgon2() salt length = %d", len(salt))
	}
	if len(key) != int(fastParams.KeyLength) {
		t.Errorf("decodeArgon2() key length = %d", len(key))
	}
}

func BenchmarkVerifyArgon2(b *testing.B) {
	const password = "BenchmarkPassword123!"
	hash, _ := Hash(password, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = VerifyArgon2(password, hash)
	}
}
