package models_test

import (
	"testing"
	"time"

	"github.com/mmdatafocus/chitty_backend/models"
	"github.com/mmdatafocus/chitty_backend/utils"
	"github.com/shopspring/decimal"
)

func testChittyWithMembers(liftedIdx ...int) (*models.Chitty, []*models.Member) {
	chitty := models.NewChittyRecord("Slip Chitty", decimal.NewFromInt(120000), 4, 12)

	names := []string{"Alpha", "Beta", "Gamma", "Delta"}
	members := make([]*models.Member, 0, len(names))
	for _, name := range names {
		members = append(members, models.NewMemberRecord(name, chitty.ID))
	}
	for _, i := range liftedIdx {
		members[i].HasLifted = utils.NewTrue()
		members[i].LiftedMonth = 1
	}
	return chitty, members
}

func TestSnapshotPaymentRecords_AmountsByLiftedStatus(t *testing.T) {
	chitty, members := testChittyWithMembers(1)

	records := models.SnapshotPaymentRecords(chitty, members)
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	for i, record := range records {
		if record.MemberId != members[i].ID {
			t.Fatalf("record %d out of roster order", i)
		}
		if record.MemberName != members[i].Name {
			t.Fatalf("record %d member name = %q, want %q", i, record.MemberName, members[i].Name)
		}
		if utils.DereferencePtr(record.IsPaid, true) {
			t.Fatalf("record %d should start unpaid", i)
		}
	}

	// the snapshot copies each member's lifted status, not just the amount
	if !utils.DereferencePtr(records[1].IsLifted, false) {
		t.Fatal("lifted member's record should carry is_lifted at generation")
	}
	for _, i := range []int{0, 2, 3} {
		if utils.DereferencePtr(records[i].IsLifted, true) {
			t.Fatalf("record %d should start un-lifted", i)
		}
	}

	if !records[1].Amount.Equal(chitty.LiftedPayment) {
		t.Fatalf("lifted member owes %s, want lifted payment %s", records[1].Amount, chitty.LiftedPayment)
	}
	if !records[0].Amount.Equal(chitty.RegularPayment) {
		t.Fatalf("regular member owes %s, want regular payment %s", records[0].Amount, chitty.RegularPayment)
	}
}

func TestRecordForMember(t *testing.T) {
	chitty, members := testChittyWithMembers()
	slip := models.MonthlySlip{
		ChittiId:       chitty.ID,
		Month:          1,
		PaymentRecords: models.SnapshotPaymentRecords(chitty, members),
	}

	record := slip.RecordForMember(members[2].ID)
	if record == nil {
		t.Fatal("expected record for snapshot member")
	}
	if record.MemberName != "Gamma" {
		t.Fatalf("record member name = %q, want Gamma", record.MemberName)
	}

	if slip.RecordForMember("not-a-member") != nil {
		t.Fatal("expected nil for member outside the snapshot")
	}
}

func TestSetPaid_PaymentDateStampedOnce(t *testing.T) {
	chitty, members := testChittyWithMembers()
	record := models.SnapshotPaymentRecords(chitty, members)[0]

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	record.SetPaid(true, first)
	if !utils.DereferencePtr(record.IsPaid, false) {
		t.Fatal("expected record to be paid")
	}
	if record.PaymentDate == nil || !record.PaymentDate.Equal(first) {
		t.Fatalf("payment date = %v, want %v", record.PaymentDate, first)
	}

	// un-paying keeps the original stamp
	record.SetPaid(false, first.Add(time.Hour))
	if utils.DereferencePtr(record.IsPaid, true) {
		t.Fatal("expected record to be unpaid")
	}
	if record.PaymentDate == nil || !record.PaymentDate.Equal(first) {
		t.Fatalf("payment date changed to %v, want %v", record.PaymentDate, first)
	}

	// re-paying later does not move the stamp either
	record.SetPaid(true, first.Add(48*time.Hour))
	if record.PaymentDate == nil || !record.PaymentDate.Equal(first) {
		t.Fatalf("payment date changed to %v, want %v", record.PaymentDate, first)
	}
}

func TestSetLifted_UsesGivenAmount(t *testing.T) {
	chitty, members := testChittyWithMembers()
	record := models.SnapshotPaymentRecords(chitty, members)[0]

	record.SetLifted(chitty.LiftedPayment)
	if !utils.DereferencePtr(record.IsLifted, false) {
		t.Fatal("expected record to be lifted")
	}
	if !record.Amount.Equal(chitty.LiftedPayment) {
		t.Fatalf("record amount = %s, want %s", record.Amount, chitty.LiftedPayment)
	}
}
