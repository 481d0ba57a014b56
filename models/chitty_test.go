package models_test

import (
	"testing"

	"github.com/mmdatafocus/chitty_backend/models"
	"github.com/mmdatafocus/chitty_backend/utils"
	"github.com/shopspring/decimal"
)

func TestNewChittyRecord_DerivedPayments(t *testing.T) {
	chitty := models.NewChittyRecord("Test Chitty", decimal.NewFromInt(120000), 12, 12)

	if !chitty.RegularPayment.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("regular payment = %s, want 10000", chitty.RegularPayment)
	}
	if !chitty.LiftedPayment.Equal(decimal.NewFromInt(12500)) {
		t.Fatalf("lifted payment = %s, want 12500", chitty.LiftedPayment)
	}
}

func TestNewChittyRecord_Defaults(t *testing.T) {
	chitty := models.NewChittyRecord("Defaults", decimal.NewFromInt(500000), 20, 20)

	if chitty.ID == "" {
		t.Fatal("expected generated id")
	}
	if !utils.DereferencePtr(chitty.IsActive, false) {
		t.Fatal("expected new chitty to be active")
	}
	if chitty.MemberIds == nil || len(chitty.MemberIds) != 0 {
		t.Fatalf("expected empty roster, got %v", chitty.MemberIds)
	}
	if chitty.StartDate.IsZero() {
		t.Fatal("expected start date to be set")
	}
}

func TestCalculatePayments_RecomputesAfterChange(t *testing.T) {
	chitty := models.NewChittyRecord("Recompute", decimal.NewFromInt(120000), 12, 12)

	chitty.Amount = decimal.NewFromInt(240000)
	chitty.TotalMonths = 24
	chitty.CalculatePayments()

	if !chitty.RegularPayment.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("regular payment = %s, want 10000", chitty.RegularPayment)
	}
	if !chitty.LiftedPayment.Equal(decimal.NewFromInt(12500)) {
		t.Fatalf("lifted payment = %s, want 12500", chitty.LiftedPayment)
	}
}

func TestCalculatePayments_FractionalSplit(t *testing.T) {
	chitty := models.NewChittyRecord("Odd Split", decimal.NewFromInt(100000), 3, 3)

	expectedRegular := decimal.NewFromInt(100000).Div(decimal.NewFromInt(3))
	if !chitty.RegularPayment.Equal(expectedRegular) {
		t.Fatalf("regular payment = %s, want %s", chitty.RegularPayment, expectedRegular)
	}
	expectedLifted := expectedRegular.Mul(decimal.NewFromFloat(1.25))
	if !chitty.LiftedPayment.Equal(expectedLifted) {
		t.Fatalf("lifted payment = %s, want %s", chitty.LiftedPayment, expectedLifted)
	}
}
