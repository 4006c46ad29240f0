package models

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// SeedEnvelope is the at-rest form of a wallet seed: AEAD ciphertext with
// its nonce and auth tag, prefixed by an algorithm version.
type SeedEnvelope struct {
	Version    string
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// Encode serializes the envelope into the encrypted_private_key column
// format: "<version>:" + base64(nonce || ciphertext || tag).
func (e SeedEnvelope) Encode() string {
	blob := make([]byte, 0, len(e.Nonce)+len(e.Ciphertext)+len(e.Tag))
	blob = append(blob, e.Nonce...)
	blob = append(blob, e.Ciphertext...)
	blob = append(blob, e.Tag...)
	return e.Version + ":" + base64.StdEncoding.EncodeToString(blob)
}

// DecodeSeedEnvelope parses the column format back into an envelope.
// Nonce is 12 bytes, tag 16; the rest is ciphertext.
func DecodeSeedEnvelope(s string) (SeedEnvelope, error) {
	var env SeedEnvelope
	idx := strings.IndexByte(s, ':')
	if idx <= 0 {
		return env, fmt.Errorf("malformed seed envelope")
	}
	env.Version = s[:idx]
	blob, err := base64.StdEncoding.DecodeString(s[idx+1:])
	if err != nil {
		return env, fmt.Errorf("malformed seed envelope: %w", err)
	}
	if len(blob) < 12+16 {
		return env, fmt.Errorf("seed envelope too short")
	}
	env.Nonce = blob[:12]
	env.Tag = blob[len(blob)-16:]
	env.Ciphertext = blob[12 : len(blob)-16]
	return env, nil
}
