package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/chitty_backend/config"
	"github.com/mmdatafocus/chitty_backend/utils"
)

type Member struct {
	ID         string     `gorm:"primary_key;size:36" json:"id"`
	Name       string     `gorm:"size:255;not null" json:"name" binding:"required"`
	ChittiId   string     `gorm:"index;size:36;not null" json:"chitti_id"`
	HasLifted  *bool      `gorm:"not null;default:false" json:"has_lifted"`
	LiftedDate *time.Time `json:"lifted_date"`
	// -1 until the member lifts
	LiftedMonth int       `gorm:"default:-1" json:"lifted_month"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMember struct {
	Name string `json:"name" binding:"required"`
}

func NewMemberRecord(name string, chittiId string) *Member {
	return &Member{
		ID:          uuid.NewString(),
		Name:        name,
		ChittiId:    chittiId,
		HasLifted:   utils.NewFalse(),
		LiftedMonth: -1,
	}
}

func GetMember(ctx context.Context, id string) (*Member, error) {
	return utils.FetchModel[Member](ctx, id)
}

// GetMembersByChittiId returns the chitty's members in join order.
func GetMembersByChittiId(ctx context.Context, chittiId string) ([]*Member, error) {
	return utils.FetchModelsWhere[Member](ctx, "created_at ASC", "chitti_id = ?", chittiId)
}

func UpdateMember(ctx context.Context, id string, input *NewMember) (*Member, error) {

	member, err := utils.FetchModel[Member](ctx, id)
	if err != nil {
		return nil, err
	}

	member.Name = input.Name

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(member).Update("name", member.Name).Error; err != nil {
		return nil, err
	}

	return member, nil
}

// MarkMemberLifted flags the member as having taken the pool for the given
// month. Calling it again overwrites lifted_date and lifted_month.
func MarkMemberLifted(ctx context.Context, id string, month int) (*Member, error) {

	if month <= 0 {
		return nil, errors.New("month must be positive")
	}

	member, err := utils.FetchModel[Member](ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	member.HasLifted = utils.NewTrue()
	member.LiftedDate = &now
	member.LiftedMonth = month

	db := config.GetDB()
	err = db.WithContext(ctx).Model(member).Updates(map[string]interface{}{
		"HasLifted":   member.HasLifted,
		"LiftedDate":  member.LiftedDate,
		"LiftedMonth": member.LiftedMonth,
	}).Error
	if err != nil {
		return nil, err
	}

	return member, nil
}

func GetLiftedMembers(ctx context.Context, chittiId string) ([]*Member, error) {
	return utils.FetchModelsWhere[Member](ctx, "lifted_month ASC", "chitti_id = ? AND has_lifted = ?", chittiId, true)
}

func GetNonLiftedMembers(ctx context.Context, chittiId string) ([]*Member, error) {
	return utils.FetchModelsWhere[Member](ctx, "created_at ASC", "chitti_id = ? AND has_lifted = ?", chittiId, false)
}

// DeleteMember hard deletes the member row only. Roster cleanup on the
// chitty goes through RemoveMemberFromChitty.
func DeleteMember(ctx context.Context, id string) error {

	member, err := utils.FetchModel[Member](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	return db.WithContext(ctx).Delete(member).Error
}
