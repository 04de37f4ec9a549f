package controllers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shopbill-app/shopbill/app/models"
	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/database"
	"github.com/shopbill-app/shopbill/internal/pkg/env"
	"github.com/shopbill-app/shopbill/internal/pkg/mail"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

type registerRequest struct {
	ShopName     string `json:"shop_name" validate:"required,min=2,max=120"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone" validate:"max=20"`
	Name         string `json:"name" validate:"required,max=150"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
}

// HandleRegister creates a shop and its owner account in one transaction and
// returns the owner's API key. The raw key is shown exactly once.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	if _, err := repository.GetGlobalFactory().GetUserRepository().GetByEmail(req.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "An account with this email already exists")
	}

	var user *models.User
	var rawKey string
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		shop := &models.Shop{
			Name:         req.ShopName,
			Address:      req.Address,
			ContactPhone: req.ContactPhone,
			ContactEmail: req.Email,
			IsActive:     true,
		}
		if err := tx.Create(shop).Error; err != nil {
			return err
		}

		var err error
		user, err = models.CreateUser(req.Name, req.Email, req.Password, models.ROLE_SHOP_OWNER, &shop.ID)
		if err != nil {
			return err
		}
		if rawKey, err = user.IssueAPIKey(); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		sub := &models.UserSubscription{UserID: user.ID}
		return tx.Create(sub).Error
	})
	if err != nil {
		log.Printf("registration failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user_id": user.ID,
		"shop_id": *user.ShopID,
		"api_key": rawKey,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin verifies credentials and rotates the account's API key. The
// previous key stops working; clients store the returned one.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "Email or password is incorrect")
	}
	if user.Status != models.STATUS_ACTIVE {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Account is disabled")
	}

	rawKey, err := user.IssueAPIKey()
	if err != nil {
		log.Printf("api key rotation failed for user %d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Printf("login update failed for user %d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}

	var shopID uint
	if user.ShopID != nil {
		shopID = *user.ShopID
	}
	return c.JSON(fiber.Map{
		"user_id": user.ID,
		"shop_id": shopID,
		"role":    user.Role,
		"api_key": rawKey,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleForgotPassword issues a reset token and mails the reset link. The
// response is identical whether or not the address exists.
func HandleForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err == nil {
		if err := user.GenerateResetToken(); err == nil {
			if err := repo.Update(user); err == nil {
				resetURL := fmt.Sprintf("%s/reset-password?token=%s",
					env.GetEnv("APP_BASE_URL", "http://localhost:4000"), user.ResetToken)
				go mail.SendPasswordResetMail(user.Email, resetURL)
			}
		}
	}

	return c.JSON(fiber.Map{
		"message": "If the address exists, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// HandleResetPassword sets a new password for a valid, unexpired reset token
func HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByResetToken(req.Token)
	if err != nil || !user.IsResetTokenValid(req.Token) {
		return jsonError(c, fiber.StatusBadRequest, "invalid_token", "Reset token is invalid or expired")
	}

	if err := user.SetPassword(req.Password); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Password reset failed")
	}
	user.ClearResetToken()
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Password reset failed")
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

// HandleGetMe returns the authenticated account
func HandleGetMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}
	return c.JSON(user)
}
