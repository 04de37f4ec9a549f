package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_SITE_ADMIN = "SITE_ADMIN"
	ROLE_SHOP_OWNER = "SHOP_OWNER"
	ROLE_SHOPKEEPER = "SHOPKEEPER"

	STATUS_ACTIVE   = "active"
	STATUS_DISABLED = "disabled"
)

// User is the account record. Email is the login identifier; ShopID is nil
// for site admins and always set for shop owners and shopkeepers.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	Email            string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password         string         `gorm:"type:text" json:"-" validate:"required,min=8"`
	Role             string         `gorm:"type:varchar(20);default:'SHOPKEEPER'" json:"role" validate:"oneof=SITE_ADMIN SHOP_OWNER SHOPKEEPER"`
	Status           string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active disabled"`
	ShopID           *uint          `gorm:"index" json:"shop_id,omitempty"`
	Shop             *Shop          `gorm:"foreignKey:ShopID" json:"-"`
	APIKeyHash       string         `gorm:"type:char(64);default:'';index" json:"-"`
	APIKeyPrefix     string         `gorm:"type:varchar(20);default:''" json:"api_key_prefix,omitempty"`
	APIKeyCreatedAt  *time.Time     `json:"-"`
	APIKeyLastUsedAt *time.Time     `json:"-"`
	ResetToken       string         `gorm:"type:varchar(100);default:'';index" json:"-"`
	ResetTokenSentAt *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt      *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string, role string, shopID *uint) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: pw,
		Role:     role,
		Status:   STATUS_ACTIVE,
		ShopID:   shopID,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPassword verifies if the provided password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// HasShop reports whether the user is bound to a shop. Shop-scoped handlers
// must check this instead of assuming the association exists.
func (u *User) HasShop() bool {
	return u.ShopID != nil && *u.ShopID != 0
}

// IsSiteAdmin reports whether the user may manage all tenants
func (u *User) IsSiteAdmin() bool {
	return u.Role == ROLE_SITE_ADMIN
}

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const apiKeyPrefix = "sbk_"

// IssueAPIKey generates a new API key, stores its hash on the struct, and
// returns the raw secret. Callers must persist the struct afterwards.
func (u *User) IssueAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	rawKey := apiKeyPrefix + strings.ToLower(apiKeyEncoding.EncodeToString(b))
	if len(rawKey) < 16 {
		return "", fmt.Errorf("api key generation failed: key too short")
	}

	now := time.Now()
	u.APIKeyHash = HashAPIKey(rawKey)
	u.APIKeyPrefix = rawKey[:16]
	u.APIKeyCreatedAt = &now
	u.APIKeyLastUsedAt = nil
	return rawKey, nil
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// GenerateResetToken creates a random password-reset token and stamps it
func (u *User) GenerateResetToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.ResetToken = hex.EncodeToString(b)
	now := time.Now()
	u.ResetTokenSentAt = &now
	return nil
}

// IsResetTokenValid checks the token and its 24 hour expiry window
func (u *User) IsResetTokenValid(token string) bool {
	if u.ResetToken == "" || u.ResetTokenSentAt == nil {
		return false
	}
	if token == "" || u.ResetToken != token {
		return false
	}
	return time.Since(*u.ResetTokenSentAt) < 24*time.Hour
}

// ClearResetToken removes the reset token after a successful reset
func (u *User) ClearResetToken() {
	u.ResetToken = ""
	u.ResetTokenSentAt = nil
}
