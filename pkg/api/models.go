package api

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type User struct {
	Id       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Customer struct {
	Id        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

type ImportCustomersRequest struct {
	Customers []CreateCustomerRequest `json:"customers"`
}

type Campaign struct {
	Id           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	RewardAmount float64   `json:"reward_amount"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateCampaignRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	RewardAmount float64 `json:"reward_amount"`
}

type UpdateCampaignRequest struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	RewardAmount *float64 `json:"reward_amount,omitempty"`
	Active       *bool    `json:"active,omitempty"`
}

type Referral struct {
	Id            uint      `json:"id"`
	CampaignId    uint      `json:"campaign_id"`
	CustomerId    uint      `json:"customer_id"`
	ReferredName  string    `json:"referred_name"`
	ReferredEmail string    `json:"referred_email"`
	Status        string    `json:"status"`
	Code          uuid.UUID `json:"code"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateReferralRequest struct {
	CampaignId    uint   `json:"campaign_id"`
	CustomerId    uint   `json:"customer_id"`
	ReferredName  string `json:"referred_name"`
	ReferredEmail string `json:"referred_email"`
}

type UpdateReferralStatusRequest struct {
	Status string `json:"status"`
}

type Reward struct {
	Id         uint      `json:"id"`
	ReferralId uint      `json:"referral_id"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type Activity struct {
	Id          uint      `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type ActivityQuery struct {
	Limit int `schema:"limit"`
}
