package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jadygoy/cafe_backend/config"
	"github.com/jadygoy/cafe_backend/models"
	"github.com/jadygoy/cafe_backend/utils"
)

// setupIntegration starts MySQL and Redis containers and returns a ledger and
// directory wired exactly like the server.
func setupIntegration(t *testing.T) (*models.ReportLedger, *models.UserDirectory) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "cafe_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	t.Cleanup(func() {
		_ = config.CloseRedis()
		_ = config.CloseDatabase()
	})

	db := config.GetDB()
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	store := models.NewGormStore(db)
	ledger := models.NewReportLedger(
		store,
		models.NewRedisReportCache(config.GetRedisDB(), time.Minute),
		models.NewRedisDateLocker(config.GetRedisLock()),
		quietLogger(),
	)
	return ledger, models.NewUserDirectory(store, quietLogger())
}

func TestGormStore_ReportLifecycle(t *testing.T) {
	ledger, _ := setupIntegration(t)
	ctx := context.Background()

	created, err := ledger.Create(ctx, &models.NewDailyReport{
		Date:            "2024-03-01",
		PosProfit:       decPtr("1000.50"),
		ProductExpenses: []models.NewExpenseItem{{Title: "Milk", Amount: decPtr("12.25")}},
		CreatedBy:       "aman",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := ledger.Create(ctx, &models.NewDailyReport{Date: "2024-03-01", PosProfit: decPtr("1")}); !errors.Is(err, utils.ErrorDuplicateReportDate) {
		t.Fatalf("expected ErrorDuplicateReportDate, got %v", err)
	}

	// first read fills the cache, second is served from it
	for i := 0; i < 2; i++ {
		got, err := ledger.GetByDate(ctx, "2024-03-01")
		if err != nil {
			t.Fatalf("GetByDate #%d: %v", i, err)
		}
		if got.ID != created.ID || !got.TotalExpenses.Equal(created.TotalExpenses) {
			t.Fatalf("GetByDate #%d mismatch: %#v", i, got)
		}
		if len(got.ProductExpenses) != 1 || got.ProductExpenses[0].Title != "Milk" {
			t.Fatalf("GetByDate #%d lost expense items: %#v", i, got.ProductExpenses)
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("GetByDate #%d created_at %s, expected %s", i, got.CreatedAt, created.CreatedAt)
		}
	}

	updated, err := ledger.Update(ctx, "2024-03-01", &models.NewDailyReport{PosProfit: decPtr("400")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update changed identity: %#v", updated)
	}
	got, err := ledger.GetByDate(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("GetByDate after update: %v", err)
	}
	if !got.PosProfit.Equal(dec("400")) || len(got.ProductExpenses) != 0 {
		t.Fatalf("stale read after update: %#v", got)
	}

	if _, err := ledger.Update(ctx, "2024-04-01", &models.NewDailyReport{PosProfit: decPtr("1")}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}

	if err := ledger.Delete(ctx, "2024-03-01"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ledger.GetByDate(ctx, "2024-03-01"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound after delete, got %v", err)
	}
}

func TestGormStore_ConcurrentCreatesSameDate(t *testing.T) {
	ledger, _ := setupIntegration(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Create(ctx, &models.NewDailyReport{Date: "2024-06-01", PosProfit: decPtr("900")})
			if err != nil && !errors.Is(err, utils.ErrorDuplicateReportDate) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one create to win, got %d", successes)
	}
}

func TestGormStore_UsernamesAreCaseSensitive(t *testing.T) {
	_, dir := setupIntegration(t)
	ctx := context.Background()

	if _, err := dir.CreateUser(ctx, &models.NewUser{Username: "admin", Pin: "1"}); err != nil {
		t.Fatalf("CreateUser admin: %v", err)
	}
	if _, err := dir.CreateUser(ctx, &models.NewUser{Username: "Admin", Pin: "2"}); err != nil {
		t.Fatalf("CreateUser Admin: %v", err)
	}
	if _, err := dir.CreateUser(ctx, &models.NewUser{Username: "admin", Pin: "3"}); !errors.Is(err, utils.ErrorDuplicateUsername) {
		t.Fatalf("expected ErrorDuplicateUsername, got %v", err)
	}

	if _, err := dir.Login(ctx, &models.LoginInput{Username: "Admin", Pin: "1"}); !errors.Is(err, utils.ErrorInvalidCredentials) {
		t.Fatalf("expected ErrorInvalidCredentials, got %v", err)
	}
	got, err := dir.Login(ctx, &models.LoginInput{Username: "Admin", Pin: "2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.Username != "Admin" {
		t.Fatalf("expected Admin, got %s", got.Username)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("cafe-test-redis-%d", time.Now().UnixNano())
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
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "redis-cli", "ping"); err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("cafe-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=cafe_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent"); err == nil {
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
	m := regexp.MustCompile(`:(\d+)`).FindStringSubmatch(out)
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
	b, err := exec.Command("docker", args...).CombinedOutput()
	return string(b), err
}
