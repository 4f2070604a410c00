package types

import "time"

type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionNone      SubscriptionStatus = "none"
)

// Profile is a tenant's account record. Created once at signup, mutated by
// subscription changes, never deleted.
type Profile struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	Tier      Tier
	Directory string

	SubscriptionID        *string
	SubscriptionStatus    SubscriptionStatus
	SubscriptionStartDate *time.Time
	SubscriptionEndDate   *time.Time
}