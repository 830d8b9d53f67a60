package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ReferralPending   string = "pending"
	ReferralContacted string = "contacted"
	ReferralConverted string = "converted"
	ReferralRewarded  string = "rewarded"
)

const (
	RewardPending string = "pending"
	RewardPaid    string = "paid"
)

type User struct {
	Id        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:64;not null"`
	Password  string `gorm:"not null"` // bcrypt hash
	Name      string
	Email     string
	CreatedAt time.Time
}

type Customer struct {
	Id     uint `gorm:"primaryKey"`
	UserId uint `gorm:"index;not null"`

	Name      string `gorm:"not null"`
	Email     string
	Phone     string
	Notes     string
	CreatedAt time.Time
}

type Campaign struct {
	Id     uint `gorm:"primaryKey"`
	UserId uint `gorm:"index;not null"`

	Name         string `gorm:"not null"`
	Description  string
	RewardAmount float64
	Active       bool `gorm:"default:true"`
	CreatedAt    time.Time
}

type Referral struct {
	Id     uint `gorm:"primaryKey"`
	UserId uint `gorm:"index;not null"`

	CampaignId uint      `gorm:"index;not null"`
	Campaign   *Campaign `gorm:"foreignKey:CampaignId"`

	CustomerId uint      `gorm:"index;not null"`
	Customer   *Customer `gorm:"foreignKey:CustomerId"`

	ReferredName  string
	ReferredEmail string
	Status        string    `gorm:"size:20;not null;default:pending"`
	Code          uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CreatedAt     time.Time
}

type Reward struct {
	Id     uint `gorm:"primaryKey"`
	UserId uint `gorm:"index;not null"`

	ReferralId uint      `gorm:"index;not null"`
	Referral   *Referral `gorm:"foreignKey:ReferralId;constraint:OnDelete:CASCADE"`

	Amount    float64
	Status    string `gorm:"size:20;not null;default:pending"`
	CreatedAt time.Time
}

type Activity struct {
	Id     uint `gorm:"primaryKey"`
	UserId uint `gorm:"index;not null"`

	Type        string `gorm:"size:40;not null"`
	Description string
	Metadata    datatypes.JSON
	CreatedAt   time.Time
}
