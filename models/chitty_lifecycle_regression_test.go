package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/chitty_backend/config"
	"github.com/mmdatafocus/chitty_backend/models"
	"github.com/mmdatafocus/chitty_backend/utils"
	"github.com/shopspring/decimal"
)

// Regression: the full chitty lifecycle over a real MySQL/redis pair.
// Derived payments, slip snapshot permanence, lift/payment bookkeeping and
// the payment projection all have to line up.
func TestChittyLifecycle_EndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "chitty_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	chitty, err := models.CreateChitty(ctx, &models.NewChitty{
		Name:         "Lifecycle Chitty",
		Amount:       decimal.NewFromInt(120000),
		TotalMembers: 3,
		TotalMonths:  12,
		MemberNames:  []string{"Alpha", "Beta", "Gamma"},
	})
	if err != nil {
		t.Fatalf("CreateChitty: %v", err)
	}
	if !chitty.RegularPayment.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("regular payment = %s, want 10000", chitty.RegularPayment)
	}
	if !chitty.LiftedPayment.Equal(decimal.NewFromInt(12500)) {
		t.Fatalf("lifted payment = %s, want 12500", chitty.LiftedPayment)
	}
	if len(chitty.MemberIds) != 3 {
		t.Fatalf("expected 3 roster members, got %d", len(chitty.MemberIds))
	}

	members, err := models.GetMembersByChittiId(ctx, chitty.ID)
	if err != nil {
		t.Fatalf("GetMembersByChittiId: %v", err)
	}
	if len(members) != 3 || members[0].Name != "Alpha" || members[2].Name != "Gamma" {
		t.Fatalf("unexpected roster: %+v", members)
	}
	alpha, beta := members[0], members[1]

	// month outside 1..total_months is rejected
	if _, err := models.GenerateMonthlySlip(ctx, chitty.ID, 13); err == nil {
		t.Fatal("expected error for out-of-range month")
	}

	slip, err := models.GenerateMonthlySlip(ctx, chitty.ID, 1)
	if err != nil {
		t.Fatalf("GenerateMonthlySlip: %v", err)
	}
	if len(slip.PaymentRecords) != 3 {
		t.Fatalf("expected 3 payment records, got %d", len(slip.PaymentRecords))
	}
	for _, record := range slip.PaymentRecords {
		if !record.Amount.Equal(chitty.RegularPayment) {
			t.Fatalf("fresh slip record owes %s, want %s", record.Amount, chitty.RegularPayment)
		}
	}

	// idempotent: same slip comes back, nothing regenerated
	again, err := models.GenerateMonthlySlip(ctx, chitty.ID, 1)
	if err != nil {
		t.Fatalf("GenerateMonthlySlip (repeat): %v", err)
	}
	if again.ID != slip.ID {
		t.Fatalf("repeat generation created a new slip: %s != %s", again.ID, slip.ID)
	}

	// lifting an unknown member writes nothing
	if _, err := models.MarkSlipMemberLifted(ctx, slip.ID, "not-a-member"); err == nil {
		t.Fatal("expected error lifting a member outside the snapshot")
	}

	slip, err = models.MarkSlipMemberLifted(ctx, slip.ID, beta.ID)
	if err != nil {
		t.Fatalf("MarkSlipMemberLifted: %v", err)
	}
	if slip.LiftedMemberId == nil || *slip.LiftedMemberId != beta.ID {
		t.Fatalf("lifted member id = %v, want %s", slip.LiftedMemberId, beta.ID)
	}
	record := slip.RecordForMember(beta.ID)
	if record == nil || !utils.DereferencePtr(record.IsLifted, false) {
		t.Fatal("expected beta's record to be lifted")
	}
	if !record.Amount.Equal(chitty.LiftedPayment) {
		t.Fatalf("lifted record amount = %s, want %s", record.Amount, chitty.LiftedPayment)
	}
	beta, err = models.GetMember(ctx, beta.ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if !utils.DereferencePtr(beta.HasLifted, false) || beta.LiftedMonth != 1 {
		t.Fatalf("beta not marked lifted: hasLifted=%v month=%d", beta.HasLifted, beta.LiftedMonth)
	}

	// paid flag with one-way payment date
	slip, err = models.MarkPayment(ctx, slip.ID, alpha.ID, true)
	if err != nil {
		t.Fatalf("MarkPayment(paid): %v", err)
	}
	stamped := slip.RecordForMember(alpha.ID).PaymentDate
	if stamped == nil {
		t.Fatal("expected payment date stamp")
	}
	slip, err = models.MarkPayment(ctx, slip.ID, alpha.ID, false)
	if err != nil {
		t.Fatalf("MarkPayment(unpaid): %v", err)
	}
	record = slip.RecordForMember(alpha.ID)
	if utils.DereferencePtr(record.IsPaid, true) {
		t.Fatal("expected alpha's record to be unpaid again")
	}
	if record.PaymentDate == nil || !record.PaymentDate.Equal(*stamped) {
		t.Fatalf("payment date moved: %v, want %v", record.PaymentDate, stamped)
	}

	// month 2 snapshot sees beta as lifted: lifted amount and is_lifted copied
	slip2, err := models.GenerateMonthlySlip(ctx, chitty.ID, 2)
	if err != nil {
		t.Fatalf("GenerateMonthlySlip(month 2): %v", err)
	}
	betaRecord := slip2.RecordForMember(beta.ID)
	if betaRecord == nil || !betaRecord.Amount.Equal(chitty.LiftedPayment) {
		t.Fatalf("beta owes %v in month 2, want lifted payment", betaRecord)
	}
	if !utils.DereferencePtr(betaRecord.IsLifted, false) {
		t.Fatal("beta's month 2 record should carry is_lifted from the member")
	}
	alphaRecord := slip2.RecordForMember(alpha.ID)
	if alphaRecord == nil || !alphaRecord.Amount.Equal(chitty.RegularPayment) {
		t.Fatalf("alpha owes %v in month 2, want regular payment", alphaRecord)
	}
	if utils.DereferencePtr(alphaRecord.IsLifted, true) {
		t.Fatal("alpha's month 2 record should not be lifted")
	}

	// projection: 2 slips x 3 members
	payments, err := models.GetPaymentsByChittiId(ctx, chitty.ID)
	if err != nil {
		t.Fatalf("GetPaymentsByChittiId: %v", err)
	}
	if len(payments) != 6 {
		t.Fatalf("expected 6 projected payments, got %d", len(payments))
	}
	betaPayments, err := models.GetPaymentsByMemberId(ctx, beta.ID)
	if err != nil {
		t.Fatalf("GetPaymentsByMemberId: %v", err)
	}
	if len(betaPayments) != 2 {
		t.Fatalf("expected 2 payments for beta, got %d", len(betaPayments))
	}

	// updating the chitty never rewrites old slips
	if _, err := models.UpdateChitty(ctx, chitty.ID, &models.NewChitty{
		Name:         "Lifecycle Chitty",
		Amount:       decimal.NewFromInt(240000),
		TotalMembers: 3,
		TotalMonths:  12,
	}); err != nil {
		t.Fatalf("UpdateChitty: %v", err)
	}
	slip, err = models.GetSlip(ctx, slip.ID)
	if err != nil {
		t.Fatalf("GetSlip: %v", err)
	}
	if !slip.RecordForMember(alpha.ID).Amount.Equal(decimal.NewFromInt(10000)) {
		t.Fatal("month 1 snapshot changed after chitty update")
	}

	// name search is a case-insensitive substring match
	found, err := models.SearchChitties(ctx, "lifeCYCLE")
	if err != nil {
		t.Fatalf("SearchChitties: %v", err)
	}
	matched := false
	for _, c := range found {
		if c.ID == chitty.ID {
			matched = true
		}
	}
	if !matched {
		t.Fatal("mixed-case substring search did not find the chitty")
	}
	if none, err := models.SearchChitties(ctx, "no-such-chitty"); err != nil || len(none) != 0 {
		t.Fatalf("expected no matches, got %d (err=%v)", len(none), err)
	}

	// removing gamma keeps existing snapshots, shrinks the roster
	gamma := members[2]
	if err := models.RemoveMemberFromChitty(ctx, chitty.ID, gamma.ID); err != nil {
		t.Fatalf("RemoveMemberFromChitty: %v", err)
	}
	if _, err := models.GetMember(ctx, gamma.ID); err != utils.ErrorRecordNotFound {
		t.Fatalf("expected gamma to be gone, got %v", err)
	}
	chitty, err = models.GetChitty(ctx, chitty.ID)
	if err != nil {
		t.Fatalf("GetChitty: %v", err)
	}
	if len(chitty.MemberIds) != 2 {
		t.Fatalf("roster size = %d after removal, want 2", len(chitty.MemberIds))
	}

	// soft delete: gone from the active list, still fetchable by id
	if err := models.DeleteChitty(ctx, chitty.ID); err != nil {
		t.Fatalf("DeleteChitty: %v", err)
	}
	active, err := models.GetAllActiveChitties(ctx)
	if err != nil {
		t.Fatalf("GetAllActiveChitties: %v", err)
	}
	for _, c := range active {
		if c.ID == chitty.ID {
			t.Fatal("soft-deleted chitty still listed as active")
		}
	}
	chitty, err = models.GetChitty(ctx, chitty.ID)
	if err != nil {
		t.Fatalf("GetChitty after soft delete: %v", err)
	}
	if utils.DereferencePtr(chitty.IsActive, true) {
		t.Fatal("expected chitty to be inactive")
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("chitty-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("chitty-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=chitty_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
