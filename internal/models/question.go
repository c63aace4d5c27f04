package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuestionStatus string

const (
	QuestionStatusPending  QuestionStatus = "pending"
	QuestionStatusReplied  QuestionStatus = "replied"
	QuestionStatusArchived QuestionStatus = "archived"
)

// Valid reports whether s is one of the known statuses
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionStatusPending, QuestionStatusReplied, QuestionStatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether a question may move from s to next.
// pending -> replied happens once when a reply is attached; replied -> archived
// is only driven by the archive job. Nothing ever returns to pending.
func (s QuestionStatus) CanTransitionTo(next QuestionStatus) bool {
	switch s {
	case QuestionStatusPending:
		return next == QuestionStatusReplied
	case QuestionStatusReplied:
		return next == QuestionStatusArchived
	}
	return false
}

var questionStatuses = []QuestionStatus{QuestionStatusPending, QuestionStatusReplied, QuestionStatusArchived}

// StatusesLeadingTo lists the statuses that may transition to next, for use
// as the guard of a conditional update.
func StatusesLeadingTo(next QuestionStatus) []QuestionStatus {
	var out []QuestionStatus
	for _, s := range questionStatuses {
		if s.CanTransitionTo(next) {
			out = append(out, s)
		}
	}
	return out
}

// Question is a paid question addressed to an offering.
// The asker is known only through AccessCode; no wallet, session or IP is kept.
type Question struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OfferingID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"offering_id"`
	Offering         Offering        `gorm:"foreignKey:OfferingID" json:"offering,omitempty"`
	AccessCode       string          `gorm:"uniqueIndex;size:14;not null" json:"-"`
	Text             string          `gorm:"type:text;not null" json:"text"`
	Status           QuestionStatus  `gorm:"size:20;not null;default:pending;index" json:"status"`
	PaymentAmount    decimal.Decimal `gorm:"type:decimal(20,9);not null" json:"payment_amount"`
	PaymentToken     string          `gorm:"size:20;not null" json:"payment_token"`
	PaymentSignature string          `gorm:"uniqueIndex;size:128;not null" json:"payment_signature"`
	Reply            *Reply          `gorm:"foreignKey:QuestionID" json:"reply,omitempty"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	RepliedAt        *time.Time      `json:"replied_at,omitempty"`
	ArchivedAt       *time.Time      `json:"archived_at,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QuestionStatusPending
	}
	return nil
}
