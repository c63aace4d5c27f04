package models

import (
	"time"
)

// Creator is a wallet-authenticated account that answers paid questions
type Creator struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"uniqueIndex;size:64;not null" json:"wallet_address"`
	Handle        string    `gorm:"uniqueIndex;size:30;not null" json:"handle"`
	DisplayName   string    `gorm:"size:100;not null" json:"display_name"`
	AvatarURL     string    `gorm:"size:500" json:"avatar_url"`
	Bio           string    `gorm:"type:text" json:"bio"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for Creator model
func (Creator) TableName() string {
	return "creators"
}
