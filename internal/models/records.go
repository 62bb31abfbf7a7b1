package models

import "time"

// User is a profile record owned by the registration flow. The dispatcher
// reads it to resolve a device token and clears the token when the provider
// reports it permanently invalid.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName,omitempty"`
	Email        string `json:"email,omitempty"`
	DeviceToken  string `json:"fcmToken,omitempty"`
	Platform     string `json:"platform,omitempty"`
}

// DisplayName prefers the business name vendors register under.
func (u *User) DisplayName() string {
	if u.BusinessName != "" {
		return u.BusinessName
	}
	if u.Name != "" {
		return u.Name
	}
	return "Vendor"
}

// Chat is a two-party buyer/vendor conversation carrying an order status.
// Status transitions on it trigger order-update pushes to the counterparty.
type Chat struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	BuyerID         string    `json:"buyerId"`
	VendorID        string    `json:"vendorId"`
	BundleID        string    `json:"bundleId"`
	Status          string    `json:"status"`
	ActiveOrderID   string    `json:"activeOrderId,omitempty"`
	RecipientNumber string    `json:"recipientNumber,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// OtherParty returns the participant that is not the acting user, falling
// back to the buyer when the actor is neither participant (e.g. an admin).
func (c *Chat) OtherParty(actorID string) string {
	switch actorID {
	case c.BuyerID:
		return c.VendorID
	case c.VendorID:
		return c.BuyerID
	default:
		return c.BuyerID
	}
}

// Listing is a data-bundle catalog entry.
type Listing struct {
	ID         string  `gorm:"primaryKey" json:"id"`
	Name       string  `json:"name"`
	DataAmount string  `json:"dataAmount,omitempty"`
	Validity   string  `json:"validity,omitempty"`
	Price      float64 `json:"price"`
}

// Transaction is the purchase record the backfill derives from legacy chats.
type Transaction struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `json:"userId"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	BundleID        string    `json:"bundleId,omitempty"`
	BundleName      string    `json:"bundleName,omitempty"`
	DataAmount      string    `json:"dataAmount,omitempty"`
	Validity        string    `json:"validity,omitempty"`
	RecipientNumber string    `json:"recipientNumber,omitempty"`
	Provider        string    `json:"provider"`
	ChatID          string    `json:"chatId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Report is a user-submitted abuse/problem report. Its creation triggers an
// email to the operations inbox rather than a push.
type Report struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	ReporterID string    `json:"reporterId"`
	SubjectID  string    `json:"subjectId"`
	Reason     string    `json:"reason"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
