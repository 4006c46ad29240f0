// Package custody encrypts and decrypts 32-byte wallet seeds at rest.
// Decryption fails closed: anything short of an exact round-trip is an error.
package custody

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"custodial_swap_back/models"
)

const (
	SeedLen    = 32
	keyLen     = 32
	nonceLen   = 12
	tagLen     = 16
	envVersion = "v1"
)

// CustodyError indicates key or ciphertext corruption. It is never retried
// and must be escalated by callers, not swallowed.
type CustodyError struct {
	Code string
	Err  error
}

func (e *CustodyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("custody: %s: %v", e.Code, e.Err)
	}
	return "custody: " + e.Code
}

func (e *CustodyError) Unwrap() error { return e.Err }

func custodyErr(code string, err error) *CustodyError {
	return &CustodyError{Code: code, Err: err}
}

// Store holds the service-wide symmetric key. It has no other state and
// the key is injected once at construction, never read from a global.
type Store struct {
	key []byte
}

func New(key []byte) (*Store, error) {
	if len(key) != keyLen {
		return nil, custodyErr("bad_key_length", fmt.Errorf("want %d bytes, got %d", keyLen, len(key)))
	}
	k := make([]byte, keyLen)
	copy(k, key)
	return &Store{key: k}, nil
}

// Encrypt seals a 32-byte seed under AES-256-GCM with a fresh 96-bit nonce.
func (s *Store) Encrypt(seed []byte) (models.SeedEnvelope, error) {
	var env models.SeedEnvelope
	if len(seed) != SeedLen {
		return env, custodyErr("bad_seed_length", fmt.Errorf("want %d bytes, got %d", SeedLen, len(seed)))
	}

	gcm, err := s.aead()
	if err != nil {
		return env, err
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return env, custodyErr("nonce_generation_failed", err)
	}

	sealed := gcm.Seal(nil, nonce, seed, nil)
	env.Version = envVersion
	env.Nonce = nonce
	env.Ciphertext = sealed[:len(sealed)-tagLen]
	env.Tag = sealed[len(sealed)-tagLen:]
	return env, nil
}

// Decrypt opens an envelope and returns the seed. Unknown versions, tag
// mismatches, and wrong-length plaintexts are all fatal custody errors.
func (s *Store) Decrypt(env models.SeedEnvelope) ([]byte, error) {
	if env.Version != envVersion {
		return nil, custodyErr("unsupported_version", fmt.Errorf("version %q", env.Version))
	}
	if len(env.Nonce) != nonceLen || len(env.Tag) != tagLen {
		return nil, custodyErr("decrypt_failed", fmt.Errorf("malformed envelope"))
	}

	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+tagLen)
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	seed, err := gcm.Open(nil, env.Nonce, sealed, nil)
	if err != nil {
		return nil, custodyErr("decrypt_failed", err)
	}
	if len(seed) != SeedLen {
		return nil, custodyErr("bad_seed_length", fmt.Errorf("decrypted %d bytes", len(seed)))
	}
	return seed, nil
}

func (s *Store) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, custodyErr("cipher_init_failed", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, custodyErr("cipher_init_failed", err)
	}
	return gcm, nil
}
