package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"onlyanon/internal/accesscode"
	"onlyanon/internal/models"
)

// CreateQuestion inserts a question. The unique index on access_code is the
// real uniqueness guarantee: a violation on it is reported as
// accesscode.ErrCodeTaken so the issuer can retry with a fresh code, and a
// violation on payment_signature as ErrPaymentReused.
func (r *Repository) CreateQuestion(ctx context.Context, question *models.Question) error {
	err := r.db.WithContext(ctx).Create(question).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	// Both unique indexes translate to the same error; the signature is the
	// one we can check without leaking anything.
	used, checkErr := r.PaymentSignatureUsed(ctx, question.PaymentSignature)
	if checkErr != nil {
		return fmt.Errorf("failed to classify duplicate question: %w", checkErr)
	}
	if used {
		return ErrPaymentReused
	}
	return fmt.Errorf("%w: %v", accesscode.ErrCodeTaken, err)
}

// CodeExists reports whether any question holds the canonical code
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("access_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PaymentSignatureUsed reports whether a payment already bought a question
func (r *Repository) PaymentSignatureUsed(ctx context.Context, signature string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("payment_signature = ?", signature).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindQuestionByCode loads the question holding code with its offering,
// the offering's creator and the reply.
func (r *Repository) FindQuestionByCode(ctx context.Context, code string) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Offering.Creator").
		Preload("Reply").
		Where("access_code = ?", code).
		First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, accesscode.ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetQuestion retrieves a question with its offering and reply
func (r *Repository) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Offering").
		Preload("Reply").
		Where("id = ?", id).
		First(&question).Error
	if err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

// ListQuestionsForCreator returns the questions addressed to a creator's
// offerings, oldest first so the inbox reads as a queue.
func (r *Repository) ListQuestionsForCreator(
	ctx context.Context,
	creatorID uint,
	status models.QuestionStatus,
	limit int,
	offset int,
) ([]models.Question, error) {
	query := r.db.WithContext(ctx).
		Joins("Offering").
		Preload("Reply").
		Where("\"Offering\".\"creator_id\" = ?", creatorID)
	if status != "" {
		query = query.Where("questions.status = ?", status)
	}

	var questions []models.Question
	err := query.
		Order("questions.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ReplyToQuestion attaches a reply and moves the question from pending to
// replied in one transaction. The conditional status update makes a second
// reply fail with ErrQuestionNotPending even under concurrent requests.
func (r *Repository) ReplyToQuestion(ctx context.Context, questionID uuid.UUID, text string) (*models.Reply, error) {
	reply := &models.Reply{
		QuestionID: questionID,
		Text:       text,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.Question{}).
			Where("id = ? AND status IN ?", questionID, models.StatusesLeadingTo(models.QuestionStatusReplied)).
			Updates(map[string]interface{}{
				"status":     models.QuestionStatusReplied,
				"replied_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrQuestionNotPending
		}

		if err := tx.Create(reply).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrQuestionNotPending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// ArchiveRepliedBefore archives replied questions answered before cutoff
func (r *Repository) ArchiveRepliedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("status IN ? AND replied_at < ?", models.StatusesLeadingTo(models.QuestionStatusArchived), cutoff).
		Updates(map[string]interface{}{
			"status":      models.QuestionStatusArchived,
			"archived_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
