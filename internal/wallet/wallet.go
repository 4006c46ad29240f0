// Package wallet derives Solana keypairs from custody seeds.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	solana "github.com/gagliardetto/solana-go"

	"custodial_swap_back/internal/custody"
	"custodial_swap_back/models"
)

// Keypair is the in-memory signing material for one request. It must not
// outlive the request that loaded it.
type Keypair struct {
	PrivateKey solana.PrivateKey
	Address    string
}

// FromSeed derives the ed25519 keypair for a 32-byte seed. The same seed
// always yields the same public key, which is what lets the allocator
// cross-check stored key material.
func FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != custody.SeedLen {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", custody.SeedLen, len(seed))
	}
	priv := solana.PrivateKey(ed25519.NewKeyFromSeed(seed))
	return &Keypair{
		PrivateKey: priv,
		Address:    priv.PublicKey().String(),
	}, nil
}

// GenerateManaged creates a fresh wallet row for the provisioning flow:
// random seed, sealed envelope, status available.
func GenerateManaged(store *custody.Store, label string) (models.ManagedWallet, error) {
	seed := make([]byte, custody.SeedLen)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return models.ManagedWallet{}, fmt.Errorf("generate seed: %w", err)
	}

	kp, err := FromSeed(seed)
	if err != nil {
		return models.ManagedWallet{}, err
	}

	env, err := store.Encrypt(seed)
	if err != nil {
		return models.ManagedWallet{}, err
	}

	return models.ManagedWallet{
		PublicKey:           kp.Address,
		EncryptedPrivateKey: env.Encode(),
		Status:              models.WalletAvailable,
		Label:               label,
	}, nil
}
