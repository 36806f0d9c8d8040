package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
	"github.com/rgcouk/biglittle/wizard"
)

// Wizard is the process-wide booking wizard store, replaceable in tests.
var Wizard = wizard.NewStore(wizard.DefaultCloseDelay, wizard.DefaultSessionTTL)

// StartWizard opens a wizard session at the unit-selection step. Works for
// anonymous visitors; a valid bearer token attaches the customer up front.
func StartWizard(c *fiber.Ctx) error {
	sess := Wizard.Start(optionalProfileID(c))
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// GetWizard returns the current session state.
func GetWizard(c *fiber.Ctx) error {
	sess, err := Wizard.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(sess)
}

// AdvanceWizard merges the posted form fields and moves forward one step if
// the current step's gate passes. A failed gate keeps the wizard where it
// is and reports why.
func AdvanceWizard(c *fiber.Ctx) error {
	var patch wizard.Form
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	sess, err := Wizard.Advance(c.Params("id"), patch)
	if err != nil {
		if err == wizard.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		body := fiber.Map{"error": err.Error()}
		if sess.ID != "" {
			body["session"] = sess
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	}
	return c.JSON(sess)
}

// BackWizard moves one step backward.
func BackWizard(c *fiber.Ctx) error {
	sess, err := Wizard.Back(c.Params("id"))
	if err != nil {
		if err == wizard.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(sess)
}

// ConfirmWizard executes the review-step confirmation: create an account if
// the visitor has none, then create the booking with the unit's current
// price snapshotted. An account-creation failure is surfaced in the
// response but does not block the booking.
func ConfirmWizard(c *fiber.Ctx) error {
	var patch wizard.Form
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	id := c.Params("id")
	sess, err := Wizard.ReadyToConfirm(id, patch)
	if err != nil {
		if err == wizard.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	customerID := sess.CustomerID
	if tokenID := optionalProfileID(c); tokenID != 0 {
		customerID = tokenID
	}

	accountError := ""
	if customerID == 0 {
		profileID, err := createWizardAccount(sess.Form)
		if err != nil {
			// Documented fall-through: the booking proceeds without an
			// attached customer.
			accountError = err.Error()
			logrus.WithError(err).Warn("wizard account creation failed")
		} else {
			customerID = profileID
		}
	}

	startDate, err := utils.ParseDate(sess.Form.MoveInDate)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "move-in date must be YYYY-MM-DD",
		})
	}

	booking, err := bookUnit(sess.Form.UnitID, customerID, startDate, nil)
	if err != nil {
		status := fiber.StatusInternalServerError
		if err == errUnitUnavailable {
			status = fiber.StatusConflict
		}
		body := fiber.Map{"error": err.Error()}
		if accountError != "" {
			body["account_error"] = accountError
		}
		return c.Status(status).JSON(body)
	}

	sess, err = Wizard.Complete(id, customerID, booking.ID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	sendWizardConfirmationEmail(sess.Form, booking)

	resp := fiber.Map{
		"session": sess,
		"booking": booking,
	}
	if accountError != "" {
		resp["account_error"] = accountError
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// CloseWizard abandons or finishes a session, cancelling the auto-close
// timer.
func CloseWizard(c *fiber.Ctx) error {
	Wizard.Close(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// createWizardAccount signs up the wizard's visitor with a random throwaway
// password; they get in later via the email reset flow. Returns the new
// profile id.
func createWizardAccount(f wizard.Form) (uint, error) {
	var existing models.User
	if db.DB.Preload("Profile").Where("email = ?", f.Email).First(&existing).RowsAffected > 0 {
		// Account already exists: attach the booking to it rather than
		// failing the wizard.
		return existing.Profile.ID, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(utils.ThrowawayPassword()), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	user := models.User{
		Email:    f.Email,
		Password: string(hashed),
	}
	var profile models.Profile
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile = models.Profile{
			UserID:      user.ID,
			DisplayName: strings.TrimSpace(f.FirstName + " " + f.LastName),
			Role:        models.RoleCustomer,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return 0, err
	}
	return profile.ID, nil
}

func sendWizardConfirmationEmail(f wizard.Form, booking *models.Booking) {
	var unit models.Unit
	if err := db.DB.Preload("Facility").First(&unit, booking.UnitID).Error; err != nil {
		return
	}
	name := strings.TrimSpace(f.FirstName + " " + f.LastName)
	err := utils.SendBookingConfirmation(f.Email, name, unit.UnitNumber, unit.Facility.Name,
		f.MoveInDate, float64(booking.MonthlyRatePence)/100)
	if err != nil {
		logrus.WithError(err).Warn("failed to send booking confirmation email")
	}
}

// optionalProfileID resolves the caller's profile when a valid bearer token
// is present, zero otherwise. Wizard routes are public, so this never
// rejects.
func optionalProfileID(c *fiber.Ctx) uint {
	raw := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if raw == "" {
		return 0
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return utils.JWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return 0
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0
	}
	userID, ok := claims["id"].(float64)
	if !ok {
		return 0
	}

	var profile models.Profile
	if err := db.DB.Where("user_id = ?", uint(userID)).First(&profile).Error; err != nil {
		return 0
	}
	return profile.ID
}
