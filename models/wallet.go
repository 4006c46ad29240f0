package models

import (
	"database/sql"
	"time"
)

type WalletStatus string

const (
	WalletAvailable WalletStatus = "available"
	WalletAssigned  WalletStatus = "assigned"
	WalletRetired   WalletStatus = "retired"
)

// ManagedWallet is a custodial keypair held on behalf of a user. The seed
// never leaves the encrypted_private_key envelope outside of a single request.
type ManagedWallet struct {
	PublicKey           string         `db:"public_key" json:"public_key"`
	EncryptedPrivateKey string         `db:"encrypted_private_key" json:"-"`
	Status              WalletStatus   `db:"status" json:"status"`
	Label               string         `db:"label" json:"label"`
	Metadata            sql.NullString `db:"metadata" json:"metadata,omitempty"`
	AssignedUserID      sql.NullInt64  `db:"assigned_user_id" json:"assigned_user_id,omitempty"`
	AssignedAt          sql.NullTime   `db:"assigned_at" json:"assigned_at,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
}

type WalletResponse struct {
	PublicKey string       `json:"public_key" db:"public_key"`
	Label     string       `json:"label" db:"label"`
	Status    WalletStatus `json:"status" db:"status"`
}
