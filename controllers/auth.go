package controllers

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/session"
	"github.com/rgcouk/biglittle/utils"
)

// GenericAuthFailure is returned for every failed credential check, whether
// or not the account exists, so response text can't be used to enumerate
// accounts.
const GenericAuthFailure = "Authentication failed"

const otpValidity = 15 * time.Minute

// dummyHash burns a bcrypt comparison on the unknown-account path so its
// timing matches the wrong-password path.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte(utils.ThrowawayPassword()), bcrypt.DefaultCost)

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	FacilityID  uint   `json:"facility_id"`
}

// Register handles user sign-up. The profile role is fixed here and never
// changes afterwards.
func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if !utils.ValidEmail(input.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email address",
		})
	}
	if err := utils.ValidatePassword(input.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = strings.Split(input.Email, "@")[0]
	}
	role := models.NormalizeRole(input.Role)

	var existingUser models.User
	if db.DB.Where("email = ?", input.Email).First(&existingUser).RowsAffected > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "User with this email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	otp := utils.GenerateOTP()
	user := models.User{
		Email:        input.Email,
		Password:     string(hashedPassword),
		OTP:          otp,
		OTPExpiresAt: time.Now().Add(otpValidity),
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID:      user.ID,
			DisplayName: displayName,
			Role:        role,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		if input.FacilityID != 0 {
			// Storefront sign-ups carry the facility they came from.
			if err := models.RecordAudit(tx, profile.ID, "register", "facility", input.FacilityID, "signed up via facility storefront"); err != nil {
				logrus.WithError(err).Warn("failed to record sign-up audit entry")
			}
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("failed to create user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	if err := utils.SendVerificationEmail(user.Email, displayName, otp); err != nil {
		logrus.WithError(err).Warn("failed to send verification email")
	}

	user.Password = ""
	user.OTP = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful. Check your email to confirm your account.",
		"user":    user,
	})
}

// Login handles user authentication. Lookup runs under bounded retry for
// network-class errors; credential failures all resolve through failAuth so
// the response is indistinguishable between unknown accounts and wrong
// passwords.
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if !utils.ValidEmail(input.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email address",
		})
	}

	var user models.User
	err := utils.WithRetry(3, time.Second, func() error {
		return db.DB.Preload("Profile").Where("email = ?", input.Email).First(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
			return failAuth(c)
		}
		logrus.WithError(err).Error("login lookup failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Service temporarily unavailable",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return failAuth(c)
	}

	tokenString, refreshTokenString, err := issueTokens(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token":        tokenString,
		"refreshToken": refreshTokenString,
		"user": fiber.Map{
			"id":           user.ID,
			"email":        user.Email,
			"display_name": user.Profile.DisplayName,
			"role":         user.Profile.Role,
			"is_verified":  user.IsVerified,
		},
	})
}

// failAuth adds 200-300ms of jitter before the generic rejection to blunt
// response-time analysis.
func failAuth(c *fiber.Ctx) error {
	time.Sleep(200*time.Millisecond + time.Duration(rand.Intn(100))*time.Millisecond)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": GenericAuthFailure,
	})
}

func issueTokens(user *models.User) (string, string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Profile.Role,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(utils.JWTSecret())
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(),
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(utils.JWTSecret())
	if err != nil {
		return "", "", err
	}

	return tokenString, refreshTokenString, nil
}

// Logout revokes the presented access token, and the refresh token when the
// body carries one, until their natural expiry. It is deliberately not
// behind Protected(): signing out without a session, or twice with the same
// token, succeeds all the same.
func Logout(c *fiber.Ctx) error {
	revokeToken(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&body); err == nil {
		revokeToken(body.RefreshToken)
	}

	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

// revokeToken blacklists a valid token for its remaining life. Garbage or
// already-expired input is ignored; sign-out never fails.
func revokeToken(raw string) {
	if raw == "" {
		return
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return utils.JWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return
	}
	ttl := time.Until(time.Unix(int64(exp), 0))
	if err := session.Tokens.Revoke(raw, ttl); err != nil {
		logrus.WithError(err).Warn("failed to blacklist token on logout")
	}
}

// RefreshToken generates a new access token using a refresh token
func RefreshToken(c *fiber.Ctx) error {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken"`
	}

	refreshRequest := new(RefreshRequest)
	if err := c.BodyParser(refreshRequest); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	token, err := jwt.Parse(refreshRequest.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		return utils.JWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid refresh token",
		})
	}
	if session.Tokens.IsRevoked(refreshRequest.RefreshToken) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid refresh token",
		})
	}

	claims := token.Claims.(jwt.MapClaims)
	userID, ok := claims["id"].(float64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid refresh token",
		})
	}

	// Re-read the profile so a role changed out-of-band lands in the new
	// access token.
	var user models.User
	if err := db.DB.Preload("Profile").First(&user, uint(userID)).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid refresh token",
		})
	}

	newClaims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Profile.Role,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims)
	tokenString, err := newToken.SignedString(utils.JWTSecret())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": tokenString,
	})
}

// VerifyEmail confirms the sign-up OTP and marks the account verified.
func VerifyEmail(c *fiber.Ctx) error {
	type VerifyInput struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}

	input := new(VerifyInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var user models.User
	if err := db.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid verification code",
		})
	}

	if user.OTP == "" || user.OTP != input.OTP || time.Now().After(user.OTPExpiresAt) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid verification code",
		})
	}

	user.IsVerified = true
	user.OTP = ""
	if err := db.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to verify account",
		})
	}

	return c.JSON(fiber.Map{"message": "Email verified"})
}

// Me returns the current user with a freshly-read profile. This is the
// server-side "refresh auth" affordance: roles are never cached.
func Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var user models.User
	if err := db.DB.Preload("Profile").First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	user.Password = ""
	user.OTP = ""
	return c.JSON(user)
}
