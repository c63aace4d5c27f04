package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TokenSOL is the only token payments are currently verified for
const TokenSOL = "SOL"

// Offering is a priced question slot published by a creator
type Offering struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID   uint            `gorm:"not null;index" json:"creator_id"`
	Creator     Creator         `gorm:"foreignKey:CreatorID" json:"-"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(20,9);not null" json:"price"`
	Token       string          `gorm:"size:20;not null;default:SOL" json:"token"`
	IsActive    bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Offering) TableName() string {
	return "offerings"
}

func (o *Offering) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
