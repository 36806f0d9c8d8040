package controllers_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
)

func newCustomer(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	register(t, app, email, "sturdy-pass-1", "Casey", "customer")
	return login(t, app, email, "sturdy-pass-1")
}

func TestRoleGating(t *testing.T) {
	app := setupTestApp(t)

	providerToken, _, _ := newProviderWithUnit(t, app, 10000)
	customerToken := newCustomer(t, app, "casey@example.com")

	// Customers never reach the provider surface.
	status, _ := doJSON(t, app, http.MethodGet, "/provider/facilities", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Providers never reach the customer portal.
	status, _ = doJSON(t, app, http.MethodGet, "/customer/dashboard", providerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Each side reaches its own surface.
	status, _ = doJSON(t, app, http.MethodGet, "/provider/facilities", providerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, "/customer/dashboard", customerToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// No token at all gets 401, not 403.
	status, _ = doJSON(t, app, http.MethodGet, "/provider/facilities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBookingSnapshotsUnitPrice(t *testing.T) {
	app := setupTestApp(t)

	providerToken, _, unitID := newProviderWithUnit(t, app, 10000)
	customerToken := newCustomer(t, app, "casey@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/bookings", customerToken, map[string]interface{}{
		"unit_id":    unitID,
		"start_date": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, status, "booking failed: %v", body)
	bookingID := uint(body["ID"].(float64))
	assert.Equal(t, float64(10000), body["monthly_rate_pence"])

	// Provider raises the unit price after the booking exists.
	status, _ = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/provider/units/%d", unitID), providerToken, map[string]interface{}{
		"unit_number":         "A01",
		"size_category":       "Medium",
		"length_m":            3.0,
		"width_m":             2.0,
		"height_m":            2.5,
		"monthly_price_pence": 12500,
	})
	require.Equal(t, http.StatusOK, status)

	// The booking keeps the rate it was made at.
	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/bookings/%d", bookingID), customerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(10000), body["monthly_rate_pence"])
	assert.Equal(t, float64(100), body["monthly_rate_pounds"])
}

func TestBookingRejectsUnavailableUnit(t *testing.T) {
	app := setupTestApp(t)

	providerToken, _, unitID := newProviderWithUnit(t, app, 10000)
	customerToken := newCustomer(t, app, "casey@example.com")

	status, _ := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/provider/units/%d/status", unitID), providerToken, map[string]interface{}{
		"status": "maintenance",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/bookings", customerToken, map[string]interface{}{
		"unit_id":    unitID,
		"start_date": "2026-09-01",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestBookingRejectsDoubleBooking(t *testing.T) {
	app := setupTestApp(t)

	_, _, unitID := newProviderWithUnit(t, app, 10000)
	customerToken := newCustomer(t, app, "casey@example.com")

	status, _ := doJSON(t, app, http.MethodPost, "/bookings", customerToken, map[string]interface{}{
		"unit_id":    unitID,
		"start_date": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = doJSON(t, app, http.MethodPost, "/bookings", customerToken, map[string]interface{}{
		"unit_id":    unitID,
		"start_date": "2026-10-01",
	})
	assert.Equal(t, http.StatusConflict, status, "a unit with an active booking cannot be booked again")
}

func TestUnitDeleteBlockedByActiveBooking(t *testing.T) {
	app := setupTestApp(t)

	providerToken, _, unitID := newProviderWithUnit(t, app, 10000)
	customerToken := newCustomer(t, app, "casey@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/bookings", customerToken, map[string]interface{}{
		"unit_id":    unitID,
		"start_date": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, status)
	bookingID := uint(body["ID"].(float64))

	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/provider/units/%d", unitID), providerToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/customer/bookings/%d/end", bookingID), customerToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/provider/units/%d", unitID), providerToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestStorefrontHidesContactDetails(t *testing.T) {
	app := setupTestApp(t)

	_, facilityID, _ := newProviderWithUnit(t, app, 10000)

	req := httptest.NewRequest(http.MethodGet, "/storefront/facilities", nil)
	resp, err := app.Test(req, testTimeout)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw := readBody(t, resp)
	assert.Contains(t, raw, "Big Yard Storage")
	assert.NotContains(t, raw, "01904 000000", "phone never leaks to the storefront")
	assert.NotContains(t, raw, "office@bigyard.example", "email never leaks to the storefront")

	status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/storefront/facilities/%d", facilityID), "", nil)
	require.Equal(t, http.StatusOK, status)
	facility := body["facility"].(map[string]interface{})
	assert.Equal(t, "Big Yard Storage", facility["name"])
	assert.Equal(t, float64(1), facility["available_units"])
}

func TestStorefrontOnlyListsAvailableUnits(t *testing.T) {
	app := setupTestApp(t)

	providerToken, facilityID, unitID := newProviderWithUnit(t, app, 10000)

	status, _ := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/provider/units/%d/status", unitID), providerToken, map[string]interface{}{
		"status": "occupied",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/storefront/facilities/%d", facilityID), "", nil)
	require.Equal(t, http.StatusOK, status)
	facility := body["facility"].(map[string]interface{})
	assert.Equal(t, float64(0), facility["available_units"])
	assert.Equal(t, float64(1), facility["total_units"])
	assert.Empty(t, body["units"])
}

func TestWizardEndToEnd(t *testing.T) {
	app := setupTestApp(t)

	_, _, unitID := newProviderWithUnit(t, app, 10000)

	// Anonymous visitor opens the wizard.
	status, body := doJSON(t, app, http.MethodPost, "/bookings/wizard", "", nil)
	require.Equal(t, http.StatusCreated, status)
	id := body["id"].(string)
	assert.Equal(t, "unit_selection", body["step_name"])

	advance := func(patch map[string]interface{}) map[string]interface{} {
		status, body := doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/next", "", patch)
		require.Equal(t, http.StatusOK, status, "advance failed: %v", body)
		return body
	}

	body = advance(map[string]interface{}{"unit_id": unitID})
	assert.Equal(t, "details", body["step_name"])

	body = advance(map[string]interface{}{"move_in_date": "2026-09-01", "duration_hint": "6 months"})
	assert.Equal(t, "personal", body["step_name"])

	body = advance(map[string]interface{}{
		"first_name": "Casey",
		"last_name":  "Brown",
		"email":      "casey.brown@example.com",
		"phone":      "07700 900123",
	})
	assert.Equal(t, "payment", body["step_name"])

	body = advance(map[string]interface{}{"payment_method": "card"})
	assert.Equal(t, "review", body["step_name"])

	status, body = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/confirm", "", map[string]interface{}{
		"agree_terms": true,
	})
	require.Equal(t, http.StatusCreated, status, "confirm failed: %v", body)
	assert.Empty(t, body["account_error"])

	booking := body["booking"].(map[string]interface{})
	assert.Equal(t, float64(10000), booking["monthly_rate_pence"])
	assert.Equal(t, "active", booking["status"])

	sess := body["session"].(map[string]interface{})
	assert.Equal(t, "confirmation", sess["step_name"])
	assert.Equal(t, booking["ID"], sess["booking_id"])

	// The visitor got an account created behind the scenes.
	var user models.User
	require.NoError(t, db.DB.Preload("Profile").
		Where("email = ?", "casey.brown@example.com").First(&user).Error)
	assert.Equal(t, models.RoleCustomer, user.Profile.Role)
	assert.Equal(t, "Casey Brown", user.Profile.DisplayName)
	assert.Equal(t, float64(user.Profile.ID), booking["customer_id"])
}

func TestWizardGatesEachStep(t *testing.T) {
	app := setupTestApp(t)

	_, _, unitID := newProviderWithUnit(t, app, 10000)

	status, body := doJSON(t, app, http.MethodPost, "/bookings/wizard", "", nil)
	require.Equal(t, http.StatusCreated, status)
	id := body["id"].(string)

	// No unit selected: stays on step one.
	status, body = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/next", "", map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	sess := body["session"].(map[string]interface{})
	assert.Equal(t, "unit_selection", sess["step_name"])

	status, _ = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/next", "", map[string]interface{}{
		"unit_id": unitID,
	})
	require.Equal(t, http.StatusOK, status)

	// Malformed move-in date: stays on details, but the entry is kept.
	status, body = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/next", "", map[string]interface{}{
		"move_in_date": "01/09/2026",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	sess = body["session"].(map[string]interface{})
	assert.Equal(t, "details", sess["step_name"])
	form := sess["form"].(map[string]interface{})
	assert.Equal(t, "01/09/2026", form["move_in_date"])

	// Confirming before review is rejected.
	status, _ = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/confirm", "", map[string]interface{}{
		"agree_terms": true,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// Back from the first step is rejected; back from later steps works.
	status, body = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/next", "", map[string]interface{}{
		"move_in_date": "2026-09-01",
	})
	require.Equal(t, http.StatusOK, status)
	status, body = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/back", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "details", body["step_name"])
}

func TestWizardAttachesSignedInCustomer(t *testing.T) {
	app := setupTestApp(t)

	_, _, unitID := newProviderWithUnit(t, app, 10000)
	customerToken := newCustomer(t, app, "casey@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/bookings/wizard", customerToken, nil)
	require.Equal(t, http.StatusCreated, status)
	id := body["id"].(string)
	require.NotEmpty(t, body["customer_id"], "signed-in visitor is attached at start")

	walk := []map[string]interface{}{
		{"unit_id": unitID},
		{"move_in_date": "2026-09-01"},
		{"first_name": "Casey", "last_name": "Brown", "email": "casey@example.com", "phone": "07700 900123"},
		{"payment_method": "card"},
	}
	for _, patch := range walk {
		status, body = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/next", customerToken, patch)
		require.Equal(t, http.StatusOK, status, "advance failed: %v", body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/bookings/wizard/"+id+"/confirm", customerToken, map[string]interface{}{
		"agree_terms": true,
	})
	require.Equal(t, http.StatusCreated, status, "confirm failed: %v", body)

	// No throwaway account: the booking belongs to the existing profile.
	booking := body["booking"].(map[string]interface{})
	var profile models.Profile
	require.NoError(t, db.DB.Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.email = ?", "casey@example.com").First(&profile).Error)
	assert.Equal(t, float64(profile.ID), booking["customer_id"])

	var users int64
	db.DB.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(2), users, "provider + customer, nothing extra")
}

func TestWizardClosedSessionIsGone(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/bookings/wizard", "", nil)
	require.Equal(t, http.StatusCreated, status)
	id := body["id"].(string)

	status, _ = doJSON(t, app, http.MethodDelete, "/bookings/wizard/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, status)

	// Closing twice is harmless; the session is simply gone.
	status, _ = doJSON(t, app, http.MethodDelete, "/bookings/wizard/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = doJSON(t, app, http.MethodGet, "/bookings/wizard/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGenerateMonthlyPayments(t *testing.T) {
	app := setupTestApp(t)

	providerToken, _, unitID := newProviderWithUnit(t, app, 10000)
	customerToken := newCustomer(t, app, "casey@example.com")

	status, _ := doJSON(t, app, http.MethodPost, "/bookings", customerToken, map[string]interface{}{
		"unit_id":    unitID,
		"start_date": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/provider/payments/generate", providerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["generated"])

	// Re-running for the same period creates nothing new.
	status, body = doJSON(t, app, http.MethodPost, "/provider/payments/generate", providerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["generated"])

	var payment models.Payment
	require.NoError(t, db.DB.First(&payment).Error)
	assert.Equal(t, int64(10000), payment.AmountPence, "payment amount comes from the booking's snapshotted rate")
	assert.Equal(t, models.PaymentPending, payment.Status)

	status, body = doJSON(t, app, http.MethodPost, fmt.Sprintf("/provider/payments/%d/paid", payment.ID), providerToken, map[string]interface{}{
		"payment_method":    "card",
		"stripe_payment_id": "pi_test_123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", body["status"])

	// Paid is terminal.
	status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/provider/payments/%d/failed", payment.ID), providerToken, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
