package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/mmdatafocus/chitty_backend/config"
	"github.com/mmdatafocus/chitty_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MonthlySlip struct {
	ID       string    `gorm:"primary_key;size:36" json:"id"`
	ChittiId string    `gorm:"size:36;not null;index:idx_slip_chitty_month,unique" json:"chitti_id"`
	Month    int       `gorm:"not null;index:idx_slip_chitty_month,unique" json:"month"`
	SlipDate time.Time `json:"slip_date"`
	// set once a member lifts on this slip
	LiftedMemberId *string              `gorm:"size:36" json:"lifted_member_id"`
	PaymentRecords []*SlipPaymentRecord `gorm:"foreignKey:SlipId" json:"payment_records"`
	CreatedAt      time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

// SlipPaymentRecord is a point-in-time snapshot of one member's dues on a
// slip. Row order (auto-inc id) is the roster order at generation time.
// Later roster or amount changes never rewrite existing rows.
type SlipPaymentRecord struct {
	ID          int             `gorm:"primary_key" json:"-"`
	SlipId      string          `gorm:"size:36;not null;index" json:"-"`
	MemberId    string          `gorm:"size:36;not null;index" json:"member_id"`
	MemberName  string          `gorm:"size:255;not null" json:"member_name"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	IsPaid      *bool           `gorm:"not null;default:false" json:"is_paid"`
	IsLifted    *bool           `gorm:"not null;default:false" json:"is_lifted"`
	PaymentDate *time.Time      `json:"payment_date"`
}

func (SlipPaymentRecord) TableName() string {
	return "slip_payment_records"
}

// SnapshotPaymentRecords builds the slip rows for the chitty's current
// roster. Members that have already lifted owe the lifted payment and
// their record carries is_lifted from the start.
func SnapshotPaymentRecords(chitty *Chitty, members []*Member) []*SlipPaymentRecord {
	records := make([]*SlipPaymentRecord, 0, len(members))
	for _, member := range members {
		lifted := utils.DereferencePtr(member.HasLifted, false)
		amount := chitty.RegularPayment
		if lifted {
			amount = chitty.LiftedPayment
		}
		records = append(records, &SlipPaymentRecord{
			MemberId:   member.ID,
			MemberName: member.Name,
			Amount:     amount,
			IsPaid:     utils.NewFalse(),
			IsLifted:   &lifted,
		})
	}
	return records
}

// RecordForMember returns the snapshot row for the member, nil if the
// member was not on the roster when the slip was generated.
func (s *MonthlySlip) RecordForMember(memberId string) *SlipPaymentRecord {
	for _, record := range s.PaymentRecords {
		if record.MemberId == memberId {
			return record
		}
	}
	return nil
}

// SetPaid updates the paid flag. payment_date is stamped on the first
// paid=true transition and never cleared afterwards.
func (r *SlipPaymentRecord) SetPaid(isPaid bool, now time.Time) {
	if isPaid {
		r.IsPaid = utils.NewTrue()
		if r.PaymentDate == nil {
			r.PaymentDate = &now
		}
		return
	}
	r.IsPaid = utils.NewFalse()
}

// SetLifted marks the row as the lift payout row. amount is the chitty's
// lifted payment as of the call, not generation time.
func (r *SlipPaymentRecord) SetLifted(amount decimal.Decimal) {
	r.IsLifted = utils.NewTrue()
	r.Amount = amount
}

func newMonthlySlipRecord(chittiId string, month int) *MonthlySlip {
	return &MonthlySlip{
		ID:       uuid.NewString(),
		ChittiId: chittiId,
		Month:    month,
		SlipDate: time.Now().UTC(),
	}
}

func fetchSlipByChittiAndMonth(ctx context.Context, chittiId string, month int) (*MonthlySlip, error) {
	db := config.GetDB()
	var slip MonthlySlip
	err := db.WithContext(ctx).Preload("PaymentRecords").
		Where("chitti_id = ? AND month = ?", chittiId, month).First(&slip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &slip, nil
}

// GenerateMonthlySlip creates the slip for (chittiId, month), snapshotting
// the current roster. Idempotent: an existing slip for the pair is returned
// unchanged. A best-effort redis lock keeps concurrent generators from
// racing past the existence check; the unique (chitti_id, month) index is
// the hard guarantee.
func GenerateMonthlySlip(ctx context.Context, chittiId string, month int) (*MonthlySlip, error) {

	chitty, err := GetChitty(ctx, chittiId)
	if err != nil {
		return nil, err
	}
	if month < 1 || month > chitty.TotalMonths {
		return nil, fmt.Errorf("month must be between 1 and %d", chitty.TotalMonths)
	}

	if locker := config.GetRedisLock(); locker != nil {
		lock, lockErr := locker.Obtain(ctx, "slipgen:"+chittiId, 10*time.Second, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(100 * time.Millisecond),
		})
		if lockErr == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		}
	}

	existing, err := fetchSlipByChittiAndMonth(ctx, chittiId, month)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}

	members, err := GetMembersByChittiId(ctx, chittiId)
	if err != nil {
		return nil, err
	}

	slip := newMonthlySlipRecord(chittiId, month)
	slip.PaymentRecords = SnapshotPaymentRecords(chitty, members)
	for _, record := range slip.PaymentRecords {
		record.SlipId = slip.ID
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(slip).Error; err != nil {
		tx.Rollback()
		// lost the race: another generator committed first
		if concurrent, fetchErr := fetchSlipByChittiAndMonth(ctx, chittiId, month); fetchErr == nil {
			return concurrent, nil
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return slip, nil
}

func GetSlip(ctx context.Context, id string) (*MonthlySlip, error) {
	return utils.FetchModel[MonthlySlip](ctx, id, "PaymentRecords")
}

func GetSlipsByChittiId(ctx context.Context, chittiId string) ([]*MonthlySlip, error) {
	db := config.GetDB()
	var slips []*MonthlySlip
	err := db.WithContext(ctx).Preload("PaymentRecords").
		Where("chitti_id = ?", chittiId).Order("month ASC").Find(&slips).Error
	if err != nil {
		return nil, err
	}
	return slips, nil
}

func GetSlipByChittiIdAndMonth(ctx context.Context, chittiId string, month int) (*MonthlySlip, error) {
	return fetchSlipByChittiAndMonth(ctx, chittiId, month)
}

// MarkSlipMemberLifted records the lift on the slip and the member in one
// transaction: member lift bookkeeping, slip.lifted_member_id, and the
// member's snapshot row get is_lifted with the chitty's current lifted
// payment. A memberId outside the snapshot is an error and nothing is
// written.
func MarkSlipMemberLifted(ctx context.Context, slipId string, memberId string) (*MonthlySlip, error) {

	slip, err := GetSlip(ctx, slipId)
	if err != nil {
		return nil, err
	}

	record := slip.RecordForMember(memberId)
	if record == nil {
		return nil, errors.New("member is not part of this slip")
	}

	chitty, err := GetChitty(ctx, slip.ChittiId)
	if err != nil {
		return nil, err
	}
	member, err := utils.FetchModel[Member](ctx, memberId)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	member.HasLifted = utils.NewTrue()
	member.LiftedDate = &now
	member.LiftedMonth = slip.Month

	record.SetLifted(chitty.LiftedPayment)
	slip.LiftedMemberId = &memberId

	db := config.GetDB()
	tx := db.Begin()

	err = tx.WithContext(ctx).Model(member).Updates(map[string]interface{}{
		"HasLifted":   member.HasLifted,
		"LiftedDate":  member.LiftedDate,
		"LiftedMonth": member.LiftedMonth,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.WithContext(ctx).Model(&MonthlySlip{ID: slip.ID}).
		Update("lifted_member_id", slip.LiftedMemberId).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.WithContext(ctx).Model(&SlipPaymentRecord{ID: record.ID}).Updates(map[string]interface{}{
		"IsLifted": record.IsLifted,
		"Amount":   record.Amount,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return slip, nil
}

// MarkPayment flips the paid flag on the member's snapshot row.
func MarkPayment(ctx context.Context, slipId string, memberId string, isPaid bool) (*MonthlySlip, error) {

	slip, err := GetSlip(ctx, slipId)
	if err != nil {
		return nil, err
	}

	record := slip.RecordForMember(memberId)
	if record == nil {
		return nil, errors.New("member is not part of this slip")
	}

	record.SetPaid(isPaid, time.Now().UTC())

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&SlipPaymentRecord{ID: record.ID}).Updates(map[string]interface{}{
		"IsPaid":      record.IsPaid,
		"PaymentDate": record.PaymentDate,
	}).Error
	if err != nil {
		return nil, err
	}

	return slip, nil
}

// DeleteSlip hard deletes the slip and its snapshot rows.
func DeleteSlip(ctx context.Context, id string) error {

	slip, err := utils.FetchModel[MonthlySlip](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Where("slip_id = ?", slip.ID).Delete(&SlipPaymentRecord{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.WithContext(ctx).Delete(slip).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
