package models

type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

type UserSubscription struct {
	UserID int64  `db:"user_id" json:"user_id"`
	Tier   Tier   `db:"tier" json:"tier"`
	Status string `db:"status" json:"status"`
}

func (s UserSubscription) Active() bool {
	return s.Status == "active"
}
