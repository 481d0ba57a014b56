package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/chitty_backend/config"
	"github.com/mmdatafocus/chitty_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// lifted members pay 25% extra for the remaining months
var liftedPaymentFactor = decimal.NewFromFloat(1.25)

// StringList is stored as a JSON array column. Order is preserved,
// so the roster keeps join order.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

type Chitty struct {
	ID             string          `gorm:"primary_key;size:36" json:"id"`
	Name           string          `gorm:"index;size:255;not null" json:"name" binding:"required"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	TotalMembers   int             `gorm:"not null" json:"total_members"`
	TotalMonths    int             `gorm:"not null" json:"total_months"`
	RegularPayment decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"regular_payment"`
	LiftedPayment  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"lifted_payment"`
	StartDate      time.Time       `json:"start_date"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	MemberIds      StringList      `gorm:"type:json" json:"member_ids"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewChitty struct {
	Name         string          `json:"name" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	TotalMembers int             `json:"total_members" binding:"required"`
	TotalMonths  int             `json:"total_months" binding:"required"`
	// optional initial roster, added in order
	MemberNames []string `json:"member_names"`
}

// CalculatePayments recomputes the derived payment amounts.
// regular_payment and lifted_payment are never written independently;
// every path that touches amount or total_months goes through here.
func (c *Chitty) CalculatePayments() {
	if c.TotalMonths <= 0 {
		c.RegularPayment = decimal.Zero
		c.LiftedPayment = decimal.Zero
		return
	}
	c.RegularPayment = c.Amount.Div(decimal.NewFromInt(int64(c.TotalMonths)))
	c.LiftedPayment = c.RegularPayment.Mul(liftedPaymentFactor)
}

// NewChittyRecord builds an unsaved chitty with a generated id and
// derived payments computed.
func NewChittyRecord(name string, amount decimal.Decimal, totalMembers int, totalMonths int) *Chitty {
	chitty := Chitty{
		ID:           uuid.NewString(),
		Name:         name,
		Amount:       amount,
		TotalMembers: totalMembers,
		TotalMonths:  totalMonths,
		StartDate:    time.Now().UTC(),
		IsActive:     utils.NewTrue(),
		MemberIds:    StringList{},
	}
	chitty.CalculatePayments()
	return &chitty
}

// validate input for both create & update
func (input *NewChitty) validate() error {
	if !input.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if input.TotalMembers <= 0 {
		return errors.New("total members must be positive")
	}
	if input.TotalMonths <= 0 {
		return errors.New("total months must be positive")
	}
	return nil
}

func chittyCacheKey(id string) string {
	return "Chitty:" + id
}

func invalidateChittyCache(id string) {
	if err := config.RemoveRedisKey(chittyCacheKey(id)); err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"module":   "chitty.go",
			"chittyId": id,
		}).Warn("failed to invalidate chitty cache: " + err.Error())
	}
}

func CreateChitty(ctx context.Context, input *NewChitty) (*Chitty, error) {

	if err := input.validate(); err != nil {
		return nil, err
	}

	chitty := NewChittyRecord(input.Name, input.Amount, input.TotalMembers, input.TotalMonths)

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(chitty).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// initial roster, join order = slice order
	for _, memberName := range input.MemberNames {
		member := NewMemberRecord(memberName, chitty.ID)
		if err := tx.WithContext(ctx).Create(member).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		chitty.MemberIds = append(chitty.MemberIds, member.ID)
	}
	if len(input.MemberNames) > 0 {
		if err := tx.WithContext(ctx).Model(chitty).Update("member_ids", chitty.MemberIds).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return chitty, nil
}

// GetChitty fetches by id, redis first.
// Soft-deleted chitties stay fetchable here.
func GetChitty(ctx context.Context, id string) (*Chitty, error) {

	var cached Chitty
	exists, err := config.GetRedisObject(chittyCacheKey(id), &cached)
	if err != nil {
		return nil, err
	}
	if exists {
		return &cached, nil
	}

	chitty, err := utils.FetchModel[Chitty](ctx, id)
	if err != nil {
		return nil, err
	}

	if err := config.SetRedisObject(chittyCacheKey(id), chitty, utils.GetCacheLifespan()); err != nil {
		config.LogError(config.GetLogger(), "chitty.go", "GetChitty", "SetRedisObject", id, err)
	}
	return chitty, nil
}

func GetAllActiveChitties(ctx context.Context) ([]*Chitty, error) {
	return utils.FetchModelsWhere[Chitty](ctx, "created_at ASC", "is_active = ?", true)
}

func UpdateChitty(ctx context.Context, id string, input *NewChitty) (*Chitty, error) {

	if err := input.validate(); err != nil {
		return nil, err
	}

	chitty, err := utils.FetchModel[Chitty](ctx, id)
	if err != nil {
		return nil, err
	}

	chitty.Name = input.Name
	chitty.Amount = input.Amount
	chitty.TotalMembers = input.TotalMembers
	chitty.TotalMonths = input.TotalMonths
	chitty.CalculatePayments()

	db := config.GetDB()
	err = db.WithContext(ctx).Model(chitty).Updates(map[string]interface{}{
		"Name":           chitty.Name,
		"Amount":         chitty.Amount,
		"TotalMembers":   chitty.TotalMembers,
		"TotalMonths":    chitty.TotalMonths,
		"RegularPayment": chitty.RegularPayment,
		"LiftedPayment":  chitty.LiftedPayment,
	}).Error
	if err != nil {
		return nil, err
	}

	invalidateChittyCache(id)
	return chitty, nil
}

// DeleteChitty is a soft delete. Members and slips are kept.
func DeleteChitty(ctx context.Context, id string) error {

	chitty, err := utils.FetchModel[Chitty](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(chitty).Update("is_active", false).Error; err != nil {
		return err
	}

	invalidateChittyCache(id)
	return nil
}

// AddMemberToChitty creates the member and appends it to the roster
// in one transaction.
func AddMemberToChitty(ctx context.Context, chittyId string, memberName string) (*Chitty, error) {

	if memberName == "" {
		return nil, errors.New("member name is required")
	}

	chitty, err := utils.FetchModel[Chitty](ctx, chittyId)
	if err != nil {
		return nil, err
	}

	member := NewMemberRecord(memberName, chittyId)

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(member).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	chitty.MemberIds = append(chitty.MemberIds, member.ID)
	if err := tx.WithContext(ctx).Model(chitty).Update("member_ids", chitty.MemberIds).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invalidateChittyCache(chittyId)
	return chitty, nil
}

// RemoveMemberFromChitty removes the id from the roster and hard deletes
// the member record in one transaction.
func RemoveMemberFromChitty(ctx context.Context, chittyId string, memberId string) error {

	chitty, err := utils.FetchModel[Chitty](ctx, chittyId)
	if err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Member](ctx, memberId); err != nil {
		return err
	}

	roster := make(StringList, 0, len(chitty.MemberIds))
	for _, id := range chitty.MemberIds {
		if id != memberId {
			roster = append(roster, id)
		}
	}
	chitty.MemberIds = roster

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Model(chitty).Update("member_ids", chitty.MemberIds).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.WithContext(ctx).Where("id = ?", memberId).Delete(&Member{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	invalidateChittyCache(chittyId)
	return nil
}

// SearchChitties does a case-insensitive substring match on name
// (MySQL LIKE with the default collation is case-insensitive).
func SearchChitties(ctx context.Context, term string) ([]*Chitty, error) {
	return utils.FetchModelsWhere[Chitty](ctx, "created_at ASC", "name LIKE ?", "%"+term+"%")
}
