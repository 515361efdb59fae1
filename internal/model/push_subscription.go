package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations. No wards means the subscriber receives every alert.
	Wards []SubscriptionWard `gorm:"foreignKey:Endpoint;constraint:OnDelete:CASCADE"`
}

// SubscriptionWard scopes a subscription to capacity alerts for one ward.
type SubscriptionWard struct {
	Endpoint string `gorm:"primaryKey"`
	Ward     string `gorm:"primaryKey;size:128"`
}

// WardNames flattens the subscription's ward scope.
func (s PushSubscription) WardNames() []string {
	names := make([]string, 0, len(s.Wards))
	for _, w := range s.Wards {
		names = append(names, w.Ward)
	}
	return names
}
