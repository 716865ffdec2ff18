package server

import (
	"encoding/csv"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trade-journal-go/internal/attachments"
	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/economics"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/models"
)

// setupTestServer builds the full stack on a temp database and returns a
// resty client pointed at an httptest server.
func setupTestServer(t *testing.T) *resty.Client {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "journal.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	logger := zap.NewNop()
	store := journal.NewStore(db, logger, economics.DefaultSchedule(), []string{"FOMO", "Revenge Trading Urge"})
	authSvc := auth.NewService(db, logger, config.Auth{
		BcryptCost:      4,
		LoginRateLimit:  100,
		LoginRateBurst:  100,
		SessionLifetime: 60,
	})
	attStore, err := attachments.NewStore(filepath.Join(dir, "blobs"), db, logger)
	require.NoError(t, err)

	handler := NewHandler(logger, store, authSvc, attStore, economics.DefaultSchedule(), NewMetrics(prometheus.NewRegistry()))
	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)

	return resty.New().SetBaseURL(srv.URL)
}

// loginAs registers the user (ignoring "already taken") and returns an
// authenticated client.
func loginAs(t *testing.T, client *resty.Client, username string) *resty.Client {
	t.Helper()

	creds := map[string]string{"username": username, "password": "hunter2hunter2"}
	_, err := client.R().SetBody(creds).Post("/api/register")
	require.NoError(t, err)

	var loginResp struct {
		Token string `json:"token"`
	}
	resp, err := client.R().SetBody(creds).SetResult(&loginResp).Post("/api/login")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	require.NotEmpty(t, loginResp.Token)

	return client.SetAuthToken(loginResp.Token)
}

func newTradeBody() map[string]interface{} {
	return map[string]interface{}{
		"symbol":       "RELIANCE",
		"direction":    "LONG",
		"entry_price":  100,
		"stop_loss":    80,
		"target_price": 150,
		"quantity":     50,
	}
}

func TestTradeLifecycleOverHTTP(t *testing.T) {
	client := loginAs(t, setupTestServer(t), "trader1")

	// Create
	var created models.Trade
	resp, err := client.R().SetBody(newTradeBody()).SetResult(&created).Post("/api/trades")
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode())
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.StatusOpen, created.Status)

	// Close
	var closed models.Trade
	resp, err = client.R().
		SetBody(map[string]float64{"exit_price": 110}).
		SetResult(&closed).
		Post(fmt.Sprintf("/api/trades/%d/close", created.ID))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, models.StatusClosed, closed.Status)
	assert.InDelta(t, 5.32, closed.Charges.Total, 1e-9)
	assert.InDelta(t, 494.68, closed.NetPNL, 1e-9)

	// List
	var trades []models.Trade
	resp, err = client.R().SetResult(&trades).Get("/api/trades")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	require.Len(t, trades, 1)

	// Stats
	var stats journal.Stats
	resp, err = client.R().SetResult(&stats).Get("/api/trades/stats")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, 1, stats.ClosedTrades)
	assert.InDelta(t, 1.0, stats.WinRate, 1e-9)

	// Delete
	resp, err = client.R().Delete(fmt.Sprintf("/api/trades/%d", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode())

	resp, err = client.R().Get(fmt.Sprintf("/api/trades/%d", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode())
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	client := setupTestServer(t)

	resp, err := client.R().Get("/api/trades")
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode())
}

func TestLogoutInvalidatesToken(t *testing.T) {
	client := loginAs(t, setupTestServer(t), "trader1")

	resp, err := client.R().Post("/api/logout")
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode())

	resp, err = client.R().Get("/api/trades")
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode())
}

func TestPatchRejectsDerivedFields(t *testing.T) {
	client := loginAs(t, setupTestServer(t), "trader1")

	var created models.Trade
	resp, err := client.R().SetBody(newTradeBody()).SetResult(&created).Post("/api/trades")
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode())

	// A raw patch may not set derived values; it must go through
	// recomputation instead.
	resp, err = client.R().
		SetBody(map[string]interface{}{"net_pnl": 99999}).
		Patch(fmt.Sprintf("/api/trades/%d", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode())
	assert.Contains(t, resp.String(), "derived fields")

	resp, err = client.R().
		SetBody(map[string]interface{}{"charges": map[string]float64{"total": 0}}).
		Patch(fmt.Sprintf("/api/trades/%d", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode())
}

func TestCreateValidationNamesField(t *testing.T) {
	client := loginAs(t, setupTestServer(t), "trader1")

	body := newTradeBody()
	body["entry_price"] = 0

	var errResp struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	resp, err := client.R().SetBody(body).SetError(&errResp).Post("/api/trades")
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode())
	assert.Equal(t, "entry_price", errResp.Field)
}

func TestPsychologyGateOverHTTP(t *testing.T) {
	client := loginAs(t, setupTestServer(t), "trader1")

	body := newTradeBody()
	body["psychology_state"] = "Revenge Trading Urge"

	resp, err := client.R().SetBody(body).Post("/api/trades")
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode())
}

func TestPreview(t *testing.T) {
	client := loginAs(t, setupTestServer(t), "trader1")

	var preview struct {
		Quantity     int64   `json:"quantity"`
		RiskAmount   float64 `json:"risk_amount"`
		RewardToRisk float64 `json:"reward_to_risk"`
	}
	resp, err := client.R().
		SetBody(map[string]interface{}{
			"capital":      100000,
			"risk_percent": 1,
			"entry_price":  100,
			"stop_loss":    80,
			"target_price": 150,
			"direction":    "LONG",
		}).
		SetResult(&preview).
		Post("/api/preview")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())

	assert.Equal(t, int64(50), preview.Quantity)
	assert.InDelta(t, 1000, preview.RiskAmount, 1e-9)
	assert.InDelta(t, 2.5, preview.RewardToRisk, 1e-9)
}

func TestOwnershipIsolationOverHTTP(t *testing.T) {
	base := setupTestServer(t)
	alice := loginAs(t, resty.New().SetBaseURL(base.BaseURL), "alice")
	bob := loginAs(t, resty.New().SetBaseURL(base.BaseURL), "bob")

	var created models.Trade
	resp, err := alice.R().SetBody(newTradeBody()).SetResult(&created).Post("/api/trades")
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode())

	// Bob cannot see or touch Alice's trade.
	resp, err = bob.R().Get(fmt.Sprintf("/api/trades/%d", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode())

	resp, err = bob.R().Delete(fmt.Sprintf("/api/trades/%d", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode())

	var trades []models.Trade
	resp, err = bob.R().SetResult(&trades).Get("/api/trades")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	assert.Empty(t, trades)
}

func TestExportCSV(t *testing.T) {
	client := loginAs(t, setupTestServer(t), "trader1")

	var created models.Trade
	resp, err := client.R().SetBody(newTradeBody()).SetResult(&created).Post("/api/trades")
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode())

	resp, err = client.R().Get("/api/trades/export")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(strings.NewReader(resp.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "RELIANCE", rows[1][2])
}

func TestAttachmentUpload(t *testing.T) {
	client := loginAs(t, setupTestServer(t), "trader1")

	var created models.Trade
	resp, err := client.R().SetBody(newTradeBody()).SetResult(&created).Post("/api/trades")
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode())

	resp, err = client.R().
		SetHeader("Content-Type", "application/octet-stream").
		SetBody([]byte("fake screenshot bytes")).
		Post(fmt.Sprintf("/api/trades/%d/attachments?kind=entry", created.ID))
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode())

	var fetched models.Trade
	resp, err = client.R().SetResult(&fetched).Get(fmt.Sprintf("/api/trades/%d", created.ID))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	require.Len(t, fetched.Attachments, 1)
	assert.Equal(t, "entry", fetched.Attachments[0].Kind)

	// Unknown kinds are rejected.
	resp, err = client.R().
		SetBody([]byte("x")).
		Post(fmt.Sprintf("/api/trades/%d/attachments?kind=thumbnail", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode())
}
