package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/chitty_backend/config"
	"github.com/shopspring/decimal"
)

// Payment is a read-only projection over the slips' snapshot rows. It is
// not a table; the rows under monthly_slips are the single source of truth.
type Payment struct {
	SlipId      string          `json:"slip_id"`
	ChittiId    string          `json:"chitti_id"`
	Month       int             `json:"month"`
	MemberId    string          `json:"member_id"`
	MemberName  string          `json:"member_name"`
	Amount      decimal.Decimal `json:"amount"`
	IsPaid      *bool           `json:"is_paid"`
	IsLifted    *bool           `json:"is_lifted"`
	PaymentDate *time.Time      `json:"payment_date"`
}

const paymentProjectionSelect = `
	monthly_slips.id AS slip_id,
	monthly_slips.chitti_id AS chitti_id,
	monthly_slips.month AS month,
	slip_payment_records.member_id AS member_id,
	slip_payment_records.member_name AS member_name,
	slip_payment_records.amount AS amount,
	slip_payment_records.is_paid AS is_paid,
	slip_payment_records.is_lifted AS is_lifted,
	slip_payment_records.payment_date AS payment_date`

func fetchPayments(ctx context.Context, condition string, values ...interface{}) ([]*Payment, error) {
	db := config.GetDB()
	var payments []*Payment
	err := db.WithContext(ctx).Table("slip_payment_records").
		Select(paymentProjectionSelect).
		Joins("JOIN monthly_slips ON monthly_slips.id = slip_payment_records.slip_id").
		Where(condition, values...).
		Order("monthly_slips.month ASC, slip_payment_records.id ASC").
		Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []*Payment{}
	}
	return payments, nil
}

func GetPaymentsByChittiId(ctx context.Context, chittiId string) ([]*Payment, error) {
	return fetchPayments(ctx, "monthly_slips.chitti_id = ?", chittiId)
}

func GetPaymentsByChittiIdAndMonth(ctx context.Context, chittiId string, month int) ([]*Payment, error) {
	return fetchPayments(ctx, "monthly_slips.chitti_id = ? AND monthly_slips.month = ?", chittiId, month)
}

func GetPaymentsByMemberId(ctx context.Context, memberId string) ([]*Payment, error) {
	return fetchPayments(ctx, "slip_payment_records.member_id = ?", memberId)
}
