package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	"gorm.io/gorm"
)

type InteractionRepository interface {
	// CreateWithPoints inserts the interaction and shifts the receiver's
	// points in one transaction. Returns the receiver's new point total.
	CreateWithPoints(ctx context.Context, interaction *entity.Interaction) (int, error)
	FindReceived(ctx context.Context, receiverID uuid.UUID, limit int) ([]entity.Interaction, error)
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) CreateWithPoints(ctx context.Context, interaction *entity.Interaction) (int, error) {
	var points int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receiver entity.User
		if err := tx.Where("id = ?", interaction.ReceiverID).First(&receiver).Error; err != nil {
			return err
		}

		if err := tx.Create(interaction).Error; err != nil {
			return err
		}

		delta := interaction.PointsDelta()
		if err := tx.Model(&entity.User{}).
			Where("id = ?", interaction.ReceiverID).
			UpdateColumn("points", gorm.Expr("points + ?", delta)).Error; err != nil {
			return err
		}

		points = receiver.Points + delta
		return nil
	})
	if err != nil {
		return 0, err
	}

	return points, nil
}

func (r *interactionRepository) FindReceived(ctx context.Context, receiverID uuid.UUID, limit int) ([]entity.Interaction, error) {
	var interactions []entity.Interaction
	err := r.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("created_at desc").
		Limit(limit).
		Find(&interactions).Error
	return interactions, err
}
