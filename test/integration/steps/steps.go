// Package steps contains the Godog step definitions for the API features.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/application/session"
	"github.com/finance-tracker/client/internal/application/store"
	"github.com/finance-tracker/client/internal/application/usecase/auth"
	"github.com/finance-tracker/client/internal/application/usecase/transaction"
	"github.com/finance-tracker/client/internal/infra/server/router"
	"github.com/finance-tracker/client/internal/integration/docstore/memstore"
	"github.com/finance-tracker/client/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/client/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/client/internal/integration/identity"
	"github.com/finance-tracker/client/internal/integration/persistence"
)

const (
	testSessionSecret   = "test-session-secret"
	testFederatedSecret = "test-federated-secret"
	sessionLoadTimeout  = 5 * time.Second
)

// testContext holds one scenario's server and HTTP state. Every scenario gets
// a fresh document store, session controller and server.
type testContext struct {
	server        *httptest.Server
	sessions      *session.Controller
	sessionCancel context.CancelFunc
	client        *http.Client
	sessionToken  string
	lastStatus    int
	lastBody      map[string]any
}

// InitializeScenario wires the step definitions for one scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	_ = os.Setenv("ENV", "test")

	test := &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		test.teardown()
		return ctx, nil
	})

	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)
	ctx.Given(`^a registered user with email "([^"]*)" and password "([^"]*)"$`, test.aRegisteredUser)
	ctx.Given(`^I am signed in with email "([^"]*)" and password "([^"]*)"$`, test.iAmSignedIn)

	ctx.When(`^I register with email "([^"]*)" and password "([^"]*)"$`, test.iRegister)
	ctx.When(`^I sign in with email "([^"]*)" and password "([^"]*)"$`, test.iSignIn)
	ctx.When(`^I sign out$`, test.iSignOut)
	ctx.When(`^I submit an "([^"]*)" transaction of "([^"]*)" in "([^"]*)" described as "([^"]*)"$`, test.iSubmitTransaction)

	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the session state should be "([^"]*)"$`, test.theSessionStateShouldBe)
	ctx.Then(`^the transaction list should contain (\d+) transactions$`, test.theTransactionListShouldContain)
	ctx.Then(`^the dashboard should show income "([^"]*)", expense "([^"]*)" and balance "([^"]*)"$`, test.theDashboardShouldShow)
	ctx.Then(`^the dashboard chart should show "([^"]*)" for "([^"]*)"$`, test.theDashboardChartShouldShow)
}

func (t *testContext) theAPIServerIsRunning() error {
	docs := memstore.NewStore()
	identityService := identity.NewService(docs, testSessionSecret, testFederatedSecret, time.Hour)
	userRepo := persistence.NewUserRepository(docs)
	transactionRepo := persistence.NewTransactionRepository(docs)

	txStore := store.NewTransactionStore(transactionRepo)
	t.sessions = session.NewController(identityService, userRepo, txStore)

	sessionCtx, cancel := context.WithCancel(context.Background())
	t.sessionCancel = cancel
	t.sessions.Start(sessionCtx)

	signUpUseCase := auth.NewSignUpUseCase(identityService, userRepo, identityService)
	signInUseCase := auth.NewSignInUseCase(identityService, userRepo, identityService)
	providerSignInUseCase := auth.NewProviderSignInUseCase(identityService, userRepo, identityService)
	signOutUseCase := auth.NewSignOutUseCase(identityService)
	submitUseCase := transaction.NewSubmitTransactionUseCase(transactionRepo, txStore)

	r := router.NewRouter(
		controller.NewHealthController(func() bool { return true }),
		controller.NewAuthController(signUpUseCase, signInUseCase, providerSignInUseCase, signOutUseCase),
		controller.NewSessionController(t.sessions),
		controller.NewTransactionController(submitUseCase, txStore),
		controller.NewDashboardController(txStore),
		middleware.NewRateLimiterWithConfig(1000, time.Minute),
		middleware.NewAuthMiddleware(identityService),
	)

	t.server = httptest.NewServer(r.Setup("test"))
	t.sessionToken = ""
	return nil
}

func (t *testContext) teardown() {
	if t.server != nil {
		t.server.Close()
	}
	if t.sessions != nil {
		t.sessions.Close()
	}
	if t.sessionCancel != nil {
		t.sessionCancel()
	}
}

func (t *testContext) aRegisteredUser(email, password string) error {
	if err := t.iRegister(email, password); err != nil {
		return err
	}
	if t.lastStatus != http.StatusCreated {
		return fmt.Errorf("failed to register user, status %d: %v", t.lastStatus, t.lastBody)
	}
	// Registration signs in; start the scenario signed out.
	return t.iSignOut()
}

func (t *testContext) iAmSignedIn(email, password string) error {
	if err := t.iSignIn(email, password); err != nil {
		return err
	}
	if t.lastStatus != http.StatusOK {
		return fmt.Errorf("failed to sign in, status %d: %v", t.lastStatus, t.lastBody)
	}
	return t.waitForSessionLoaded()
}

func (t *testContext) iRegister(email, password string) error {
	err := t.post("/api/auth/register", map[string]any{
		"email":        email,
		"password":     password,
		"display_name": "Test User",
	}, false)
	if err != nil {
		return err
	}
	t.captureSessionToken()
	return nil
}

func (t *testContext) iSignIn(email, password string) error {
	err := t.post("/api/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return err
	}
	t.captureSessionToken()
	return nil
}

func (t *testContext) iSignOut() error {
	if err := t.post("/api/auth/logout", map[string]any{}, true); err != nil {
		return err
	}
	t.sessionToken = ""
	return nil
}

func (t *testContext) iSubmitTransaction(txType, amount, category, description string) error {
	return t.post("/api/transactions", map[string]any{
		"transaction_type": txType,
		"description":      description,
		"amount":           amount,
		"category":         category,
		"date":             "2026-08-15",
	}, true)
}

func (t *testContext) theResponseStatusShouldBe(status int) error {
	if t.lastStatus != status {
		return fmt.Errorf("expected status %d, got %d: %v", status, t.lastStatus, t.lastBody)
	}
	return nil
}

func (t *testContext) theSessionStateShouldBe(state string) error {
	if err := t.get("/api/session", false); err != nil {
		return err
	}
	if got, _ := t.lastBody["state"].(string); got != state {
		return fmt.Errorf("expected session state %q, got %q", state, t.lastBody["state"])
	}
	return nil
}

func (t *testContext) theTransactionListShouldContain(count int) error {
	if err := t.get("/api/transactions", true); err != nil {
		return err
	}
	if t.lastStatus != http.StatusOK {
		return fmt.Errorf("listing failed with status %d: %v", t.lastStatus, t.lastBody)
	}
	transactions, _ := t.lastBody["transactions"].([]any)
	if len(transactions) != count {
		return fmt.Errorf("expected %d transactions, got %d", count, len(transactions))
	}
	return nil
}

func (t *testContext) theDashboardShouldShow(income, expense, balance string) error {
	if err := t.get("/api/dashboard", true); err != nil {
		return err
	}
	if t.lastStatus != http.StatusOK {
		return fmt.Errorf("dashboard failed with status %d: %v", t.lastStatus, t.lastBody)
	}
	checks := map[string]string{
		"total_income":  income,
		"total_expense": expense,
		"balance":       balance,
	}
	for field, want := range checks {
		if err := decimalFieldEquals(t.lastBody[field], want); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

func (t *testContext) theDashboardChartShouldShow(amount, category string) error {
	if err := t.get("/api/dashboard", true); err != nil {
		return err
	}
	chart, _ := t.lastBody["chart_data"].([]any)
	for _, raw := range chart {
		point, _ := raw.(map[string]any)
		if point["name"] == category {
			return decimalFieldEquals(point["value"], amount)
		}
	}
	return fmt.Errorf("category %q not present in chart %v", category, chart)
}

// waitForSessionLoaded polls the session endpoint until the background
// profile and transaction fetches settle.
func (t *testContext) waitForSessionLoaded() error {
	deadline := time.Now().Add(sessionLoadTimeout)
	for time.Now().Before(deadline) {
		if err := t.get("/api/session", false); err != nil {
			return err
		}
		loading, _ := t.lastBody["loading"].(bool)
		if !loading {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("session never finished loading: %v", t.lastBody)
}

func (t *testContext) captureSessionToken() {
	if token, ok := t.lastBody["session_token"].(string); ok && token != "" {
		t.sessionToken = token
	}
}

func (t *testContext) post(path string, body map[string]any, authenticated bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, t.server.URL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, authenticated)
}

func (t *testContext) get(path string, authenticated bool) error {
	req, err := http.NewRequest(http.MethodGet, t.server.URL+path, nil)
	if err != nil {
		return err
	}
	return t.do(req, authenticated)
}

func (t *testContext) do(req *http.Request, authenticated bool) error {
	if authenticated && t.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.sessionToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	t.lastStatus = resp.StatusCode
	t.lastBody = map[string]any{}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&t.lastBody); err != nil {
		// Some responses carry no body; the status is still recorded.
		t.lastBody = map[string]any{}
	}
	return nil
}

func decimalFieldEquals(raw any, want string) error {
	wantDecimal, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	var gotString string
	switch value := raw.(type) {
	case json.Number:
		gotString = value.String()
	case string:
		gotString = value
	default:
		return fmt.Errorf("expected a numeric field, got %T (%v)", raw, raw)
	}
	gotDecimal, err := decimal.NewFromString(gotString)
	if err != nil {
		return err
	}
	if !gotDecimal.Equal(wantDecimal) {
		return fmt.Errorf("expected %s, got %s", wantDecimal, gotDecimal)
	}
	return nil
}
