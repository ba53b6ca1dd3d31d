package api

import "time"

const timestampLayout = "2006-01-02 15:04:05"

// envelope mirrors the {"data": ...} wrapper every endpoint responds with.
type envelope[T any] struct {
	Data T `json:"data"`
}

// User mirrors the profile returned by GET /user.
type User struct {
	Contacts        []Contact     `json:"contacts"`
	Transactions    []Transaction `json:"transactions"`
	Theme           string        `json:"theme"`
	DefaultCurrency string        `json:"default_currency"`
	Locale          string        `json:"locale"`
	Verifier        string        `json:"verifier"`
	VerifierID      string        `json:"verifier_id"`
	Permissions     []Permission  `json:"permissions"`
}

// HasVerifier reports whether the profile carries a verifier binding.
func (u User) HasVerifier() bool {
	return u.Verifier != "" && u.VerifierID != ""
}

// Contact is an address book entry.
type Contact struct {
	ID       int64  `json:"id"`
	Contact  string `json:"contact"`
	Name     string `json:"name"`
	Verifier string `json:"verifier"`
}

// ContactRequest is the body for POST /contact.
type ContactRequest struct {
	Contact  string `json:"contact"`
	Name     string `json:"name"`
	Verifier string `json:"verifier"`
}

// Transaction is a past on-chain transaction recorded by the backend.
type Transaction struct {
	ID               int64  `json:"id"`
	CreatedAt        string `json:"created_at"`
	From             string `json:"from"`
	To               string `json:"to"`
	TotalAmount      string `json:"total_amount"`
	CurrencyAmount   string `json:"currency_amount"`
	SelectedCurrency string `json:"selected_currency"`
	Status           string `json:"status"`
	Network          string `json:"network"`
	TransactionHash  string `json:"transaction_hash"`
	Type             string `json:"type"`
}

// ParsedCreatedAt returns the creation timestamp as time.Time when possible.
func (t Transaction) ParsedCreatedAt() time.Time {
	return parseTime(t.CreatedAt)
}

// Permission is a granted dapp permission.
type Permission struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Origin      string `json:"origin,omitempty"`
}

// PaymentOrder is a fiat on-ramp order from the orders endpoint.
type PaymentOrder struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	From           string  `json:"from"`
	To             string  `json:"to"`
	Action         string  `json:"action"`
	TotalAmount    string  `json:"totalAmount"`
	CurrencyAmount string  `json:"currencyAmount"`
	Currency       string  `json:"currency"`
	EthRate        float64 `json:"ethRate"`
	Status         string  `json:"status"`
}

// ParsedDate returns the order timestamp as time.Time when possible.
func (o PaymentOrder) ParsedDate() time.Time {
	return parseTime(o.Date)
}

// BillboardEvent is an announcement scoped to a call-to-action link and locale.
type BillboardEvent struct {
	CallToActionLink string `json:"callToActionLink"`
	Locale           string `json:"locale"`
	EventName        string `json:"eventName"`
	Description      string `json:"description"`
	ImageURL         string `json:"imageUrl"`
	CallToActionText string `json:"callToActionText"`
}

// CreateUserRequest is the body for POST /user.
type CreateUserRequest struct {
	DefaultCurrency string `json:"default_currency"`
	Theme           string `json:"theme"`
	Verifier        string `json:"verifier"`
	VerifierID      string `json:"verifier_id"`
	Locale          string `json:"locale"`
}

// LoginRecord is the body for POST /user/recordLogin.
type LoginRecord struct {
	Hostname   string `json:"hostname"`
	Verifier   string `json:"verifier"`
	VerifierID string `json:"verifierId"`
	Metadata   string `json:"metadata"`
}

// VerifierRequest is the body for PATCH /user/verifier.
type VerifierRequest struct {
	Verifier   string `json:"verifier"`
	VerifierID string `json:"verifierId"`
}

// DeletedContact is the payload returned by DELETE /contact/{id}.
type DeletedContact struct {
	ID int64 `json:"id"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	if ts, err := time.ParseInLocation(timestampLayout, value, time.Local); err == nil {
		return ts
	}
	return time.Time{}
}
