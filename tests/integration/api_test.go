package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "payrolled/internal/adapter/http/handler"
	redisStorage "payrolled/internal/adapter/storage/redis"
	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"
	"payrolled/internal/service"
	"payrolled/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	homeChainID  = int64(5042002)
	destChainID  = int64(84532)
	chainKey     = "payroll.chain"
	tokenKey     = "payroll.token"
	operatorUser = "operator"
	operatorPass = "correct horse battery staple"
)

// testApp builds the full application stack on in-memory storage: miniredis
// for the run lock, in-memory repos for the roster and ledger, and fake chain
// clients. It exercises the real HTTP layer, middleware, services and the
// orchestrator end-to-end.
type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	employees  *inMemoryEmployeeRepo
	ledger     *inMemoryLedger
	registry   *fakeRegistry
	settlement *fakeSettlement
	bridge     *fakeBridge
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	runLock := redisStorage.NewRunLock(rdb)

	log := logger.New("debug", false)

	employeeRepo := newInMemoryEmployeeRepo()
	ledger := newInMemoryLedger()
	registry := newFakeRegistry()
	settlementClient := newFakeSettlement()
	bridgeClient := newFakeBridge()

	hashSvc := service.NewArgon2HashService()
	passwordHash, err := hashSvc.Hash(operatorPass)
	require.NoError(t, err)
	tokenSvc := service.NewJWTTokenService("integration-test-secret", time.Hour, "payrolled-test")
	authSvc := service.NewAuthService(operatorUser, passwordHash, hashSvc, tokenSvc)

	resolver := service.NewResolverService(registry, homeChainID, "USDC", chainKey, tokenKey, log)
	classifier := service.NewClassifierService(resolver, homeChainID, log)
	orchestrator := service.NewOrchestratorService(
		employeeRepo,
		ledger,
		classifier,
		settlementClient,
		bridgeClient,
		runLock,
		homeChainID,
		time.Minute,
		log,
	)
	rosterSvc := service.NewRosterService(employeeRepo)
	historySvc := service.NewHistoryService(ledger, employeeRepo)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		RosterSvc:      rosterSvc,
		HistorySvc:     historySvc,
		Orchestrator:   orchestrator,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{
		server:     server,
		redis:      mr,
		employees:  employeeRepo,
		ledger:     ledger,
		registry:   registry,
		settlement: settlementClient,
		bridge:     bridgeClient,
	}
}

// seedEmployee inserts a roster entry directly, with a controlled join time so
// roster order is deterministic.
func (a *testApp) seedEmployee(t *testing.T, name, wallet, salary string, joinOffset time.Duration) domain.Employee {
	t.Helper()
	e := domain.Employee{
		ID:            uuid.New(),
		Name:          name,
		WalletAddress: wallet,
		Role:          "Engineer",
		Salary:        decimal.RequireFromString(salary),
		Status:        domain.EmployeeStatusActive,
		JoinedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(joinOffset),
	}
	require.NoError(t, a.employees.Create(context.Background(), &e))
	return e
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	status, body := a.request(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": operatorUser, "password": operatorPass})
	require.Equal(t, http.StatusOK, status)
	return body["data"].(map[string]interface{})["token"].(string)
}

func (a *testApp) request(t *testing.T, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reqBody)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	}
	return resp.StatusCode, body
}

// awaitRun polls the run endpoint until it reaches a terminal state.
func (a *testApp) awaitRun(t *testing.T, token, runID string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, body := a.request(t, http.MethodGet, "/api/v1/payroll/runs/"+runID, token, nil)
		require.Equal(t, http.StatusOK, status)
		data := body["data"].(map[string]interface{})
		switch data["state"].(string) {
		case string(domain.RunStateComplete), string(domain.RunStateFailed):
			return data
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run did not reach a terminal state")
	return nil
}

func wallet(n int) string {
	return fmt.Sprintf("0x%040x", n+1)
}

// --- Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_AuthRequired(t *testing.T) {
	app := newTestApp(t)

	status, body := app.request(t, http.MethodGet, "/api/v1/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_002", body["error_code"])

	status, _ = app.request(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": operatorUser, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestIntegration_RosterLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	status, body := app.request(t, http.MethodPost, "/api/v1/employees", token, map[string]string{
		"name":           "Alice",
		"wallet_address": "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		"role":           "Engineer",
		"salary":         "150.5",
	})
	require.Equal(t, http.StatusCreated, status)
	created := body["data"].(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, "active", created["status"])
	assert.Equal(t, "150.5", created["salary"])

	status, body = app.request(t, http.MethodGet, "/api/v1/employees/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice", body["data"].(map[string]interface{})["name"])

	status, _ = app.request(t, http.MethodPatch, "/api/v1/employees/"+id+"/status", token,
		map[string]string{"status": "on_leave"})
	require.Equal(t, http.StatusOK, status)

	status, body = app.request(t, http.MethodGet, "/api/v1/employees/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "on_leave", body["data"].(map[string]interface{})["status"])

	// Invalid wallet address never reaches the service.
	status, _ = app.request(t, http.MethodPost, "/api/v1/employees", token, map[string]string{
		"name":           "Mallory",
		"wallet_address": "not-a-wallet",
		"salary":         "100",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIntegration_LocalPayrollRun(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	alice := app.seedEmployee(t, "Alice", wallet(1), "150.5", 0)
	bob := app.seedEmployee(t, "Bob", wallet(2), "100", time.Minute)
	carol := app.seedEmployee(t, "Carol", wallet(3), "100", 2*time.Minute)

	status, body := app.request(t, http.MethodPost, "/api/v1/payroll/runs", token, nil)
	require.Equal(t, http.StatusCreated, status)
	run := body["data"].(map[string]interface{})
	runID := run["id"].(string)
	assert.Equal(t, string(domain.RunStateReview), run["state"])
	assert.Equal(t, float64(3), run["local_count"])
	assert.Equal(t, float64(0), run["remote_count"])
	assert.Equal(t, "350.5", run["total_amount"])

	// Nothing moves until the run is confirmed.
	assert.Empty(t, app.settlement.submitted())

	status, _ = app.request(t, http.MethodPost, "/api/v1/payroll/runs/"+runID+"/confirm", token, nil)
	require.Equal(t, http.StatusAccepted, status)

	final := app.awaitRun(t, token, runID)
	assert.Equal(t, string(domain.RunStateComplete), final["state"])
	assert.Equal(t, "0xbatch001", final["local_tx_hash"])

	// One atomic batch, in roster order.
	batches := app.settlement.submitted()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 3)
	assert.Equal(t, alice.WalletAddress, batches[0][0].Address)
	assert.Equal(t, bob.WalletAddress, batches[0][1].Address)
	assert.Equal(t, carol.WalletAddress, batches[0][2].Address)

	// One ledger row per recipient, all paid with the shared batch hash.
	rows := app.ledger.snapshot()
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, domain.PaymentStatusPaid, row.Status)
		assert.Equal(t, "0xbatch001", row.TxHash)
		assert.Equal(t, "Arc Testnet", row.Chain)
	}
}

func TestIntegration_MixedRoutingRun(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	alice := app.seedEmployee(t, "Alice", wallet(1), "150.5", 0)
	bob := app.seedEmployee(t, "Bob", wallet(2), "100", time.Minute)
	carol := app.seedEmployee(t, "Carol", wallet(3), "100", 2*time.Minute)

	// Bob prefers Base Sepolia via his name's text records.
	app.registry.setName(bob.WalletAddress, "bob.eth")
	app.registry.setRecord("bob.eth", chainKey, fmt.Sprintf("%d", destChainID))
	app.registry.setRecord("bob.eth", tokenKey, "USDC")

	// Carol's chain record is malformed and degrades to the home chain.
	app.registry.setName(carol.WalletAddress, "carol.eth")
	app.registry.setRecord("carol.eth", chainKey, "base-please")

	status, body := app.request(t, http.MethodPost, "/api/v1/payroll/runs", token, nil)
	require.Equal(t, http.StatusCreated, status)
	run := body["data"].(map[string]interface{})
	runID := run["id"].(string)
	assert.Equal(t, float64(2), run["local_count"])
	assert.Equal(t, float64(1), run["remote_count"])

	status, _ = app.request(t, http.MethodPost, "/api/v1/payroll/runs/"+runID+"/confirm", token, nil)
	require.Equal(t, http.StatusAccepted, status)
	final := app.awaitRun(t, token, runID)
	assert.Equal(t, string(domain.RunStateComplete), final["state"])

	// Local batch carries Alice and Carol in roster order.
	batches := app.settlement.submitted()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 2)
	assert.Equal(t, alice.WalletAddress, batches[0][0].Address)
	assert.Equal(t, carol.WalletAddress, batches[0][1].Address)

	// Bob's transfer is bridged.
	transfers := app.bridge.ordered()
	require.Len(t, transfers, 1)
	assert.Equal(t, bob.WalletAddress, transfers[0].RecipientAddress)
	assert.Equal(t, destChainID, transfers[0].DestinationChainID)
	assert.True(t, transfers[0].Amount.Equal(decimal.RequireFromString("100")))

	// Exactly one ledger row per recipient; the bridged row references the
	// burn transaction and the destination chain.
	rows := app.ledger.snapshot()
	require.Len(t, rows, 3)
	var bobRow *domain.PaymentRecord
	for i := range rows {
		if rows[i].EmployeeID == bob.ID {
			bobRow = &rows[i]
		}
	}
	require.NotNil(t, bobRow)
	assert.Equal(t, domain.PaymentStatusPaid, bobRow.Status)
	assert.Equal(t, "0xburn001", bobRow.TxHash)
	assert.Equal(t, "Base Sepolia", bobRow.Chain)
}

func TestIntegration_RemoteFailureDoesNotStopQueue(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	bob := app.seedEmployee(t, "Bob", wallet(1), "100", 0)
	dave := app.seedEmployee(t, "Dave", wallet(2), "200", time.Minute)
	for _, e := range []domain.Employee{bob, dave} {
		name := e.Name + ".eth"
		app.registry.setName(e.WalletAddress, name)
		app.registry.setRecord(name, chainKey, fmt.Sprintf("%d", destChainID))
	}
	app.bridge.failFor[bob.WalletAddress] = true

	status, body := app.request(t, http.MethodPost, "/api/v1/payroll/runs", token, nil)
	require.Equal(t, http.StatusCreated, status)
	runID := body["data"].(map[string]interface{})["id"].(string)

	status, _ = app.request(t, http.MethodPost, "/api/v1/payroll/runs/"+runID+"/confirm", token, nil)
	require.Equal(t, http.StatusAccepted, status)
	final := app.awaitRun(t, token, runID)

	// One remote failure does not fail the run, and the queue continues.
	assert.Equal(t, string(domain.RunStateComplete), final["state"])
	require.Len(t, app.bridge.ordered(), 2)

	rows := app.ledger.snapshot()
	require.Len(t, rows, 2)
	byEmployee := make(map[uuid.UUID]domain.PaymentRecord, len(rows))
	for _, row := range rows {
		byEmployee[row.EmployeeID] = row
	}
	assert.Equal(t, domain.PaymentStatusFailed, byEmployee[bob.ID].Status)
	assert.Equal(t, "0xburn001", byEmployee[bob.ID].TxHash, "failed transfer keeps its burn hash")
	assert.Equal(t, domain.PaymentStatusPaid, byEmployee[dave.ID].Status)
}

func TestIntegration_EmptyRoster(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	status, body := app.request(t, http.MethodPost, "/api/v1/payroll/runs", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "RUN_004", body["error_code"])
}

func TestIntegration_ConfirmTwice(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	app.seedEmployee(t, "Alice", wallet(1), "100", 0)

	status, body := app.request(t, http.MethodPost, "/api/v1/payroll/runs", token, nil)
	require.Equal(t, http.StatusCreated, status)
	runID := body["data"].(map[string]interface{})["id"].(string)

	status, _ = app.request(t, http.MethodPost, "/api/v1/payroll/runs/"+runID+"/confirm", token, nil)
	require.Equal(t, http.StatusAccepted, status)

	status, body = app.request(t, http.MethodPost, "/api/v1/payroll/runs/"+runID+"/confirm", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "RUN_002", body["error_code"])

	app.awaitRun(t, token, runID)
}

func TestIntegration_PaymentHistory(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	alice := app.seedEmployee(t, "Alice", wallet(1), "150.5", 0)
	app.seedEmployee(t, "Bob", wallet(2), "100", time.Minute)

	status, body := app.request(t, http.MethodPost, "/api/v1/payroll/runs", token, nil)
	require.Equal(t, http.StatusCreated, status)
	runID := body["data"].(map[string]interface{})["id"].(string)
	status, _ = app.request(t, http.MethodPost, "/api/v1/payroll/runs/"+runID+"/confirm", token, nil)
	require.Equal(t, http.StatusAccepted, status)
	app.awaitRun(t, token, runID)

	status, body = app.request(t, http.MethodGet, "/api/v1/payments?status=Paid", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])

	status, body = app.request(t, http.MethodGet, "/api/v1/employees/"+alice.ID.String()+"/payments", token, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "150.5", items[0].(map[string]interface{})["amount"])
}
