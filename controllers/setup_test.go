package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rgcouk/biglittle/controllers"
	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/routes"
	"github.com/rgcouk/biglittle/session"
	"github.com/rgcouk/biglittle/wizard"
)

const testTimeout = 30000 // ms, bcrypt and auth jitter make some requests slow

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(gdb))

	db.DB = gdb
	session.Tokens = session.NewMemoryBlacklist()
	controllers.Wizard = wizard.NewStore(time.Hour, time.Hour)

	app := fiber.New()
	routes.SetupAuthRoutes(app)
	routes.SetupStorefrontRoutes(app)
	routes.SetupBookingRoutes(app)
	routes.SetupProviderRoutes(app)
	routes.SetupCustomerRoutes(app)
	return app
}

// doJSON fires a request and decodes the JSON response into a generic map.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, testTimeout)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	} else if len(raw) > 0 {
		decoded["_raw"] = string(raw)
	}
	return resp.StatusCode, decoded
}

func register(t *testing.T, app *fiber.App, email, password, displayName, role string) {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"email":        email,
		"password":     password,
		"display_name": displayName,
		"role":         role,
	})
	require.Equal(t, http.StatusCreated, status, "register failed: %v", body)
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "login failed: %v", body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// newProviderWithUnit provisions a provider account, one facility and one
// unit, returning the provider token and the created ids.
func newProviderWithUnit(t *testing.T, app *fiber.App, pricePence int64) (token string, facilityID, unitID uint) {
	t.Helper()

	register(t, app, "provider@example.com", "sturdy-pass-1", "Big Yard Ltd", "provider")
	token = login(t, app, "provider@example.com", "sturdy-pass-1")

	status, body := doJSON(t, app, http.MethodPost, "/provider/facilities", token, map[string]interface{}{
		"name":     "Big Yard Storage",
		"address":  "1 Yard Lane",
		"postcode": "YO1 7ZZ",
		"phone":    "01904 000000",
		"email":    "office@bigyard.example",
	})
	require.Equal(t, http.StatusCreated, status, "facility create failed: %v", body)
	facilityID = uint(body["ID"].(float64))

	status, body = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/provider/facilities/%d/units", facilityID), token, map[string]interface{}{
			"unit_number":         "A01",
			"size_category":       "Medium",
			"length_m":            3.0,
			"width_m":             2.0,
			"height_m":            2.5,
			"monthly_price_pence": pricePence,
			"floor_level":         0,
			"features":            []string{"24h access"},
		})
	require.Equal(t, http.StatusCreated, status, "unit create failed: %v", body)
	unitID = uint(body["ID"].(float64))
	return token, facilityID, unitID
}
