package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"school_transport/internal/models"
	pgstore "school_transport/internal/repository/postgres"
)

const resetTokenTTL = 30 * time.Minute

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

func (ctl *Controller) Login(c *gin.Context) {
	var body loginInput
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	err := ctl.DB.WithContext(c.Request.Context()).
		Where("email = ?", normalizeEmail(body.Email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, pgstore.Classify(err, "find user"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := ctl.Tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		respondError(c, errors.Wrap(err, "could not generate token"))
		return
	}

	respond(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

func (ctl *Controller) Me(c *gin.Context) {
	var user models.User
	if err := ctl.DB.WithContext(c.Request.Context()).First(&user, currentUserID(c)).Error; err != nil {
		respondError(c, pgstore.Classify(err, "user %d", currentUserID(c)))
		return
	}
	respond(c, http.StatusOK, "Profile loaded", user)
}

// ForgotPassword stores a reset token for the user, if any. The answer is the
// same whether the email exists or not.
func (ctl *Controller) ForgotPassword(c *gin.Context) {
	var body forgotPasswordInput
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}

	db := ctl.DB.WithContext(c.Request.Context())
	var user models.User
	err := db.Where("email = ?", normalizeEmail(body.Email)).First(&user).Error
	switch {
	case err == nil:
		token, err := newResetToken()
		if err != nil {
			respondError(c, err)
			return
		}
		expires := ctl.now().Add(resetTokenTTL)
		err = db.Model(&user).Updates(map[string]interface{}{
			"reset_token":   token,
			"reset_expires": expires,
		}).Error
		if err != nil {
			respondError(c, pgstore.Classify(err, "store reset token"))
			return
		}
		requestLog(c).WithField("user_id", user.ID).Info("Password reset requested")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, pgstore.Classify(err, "find user"))
		return
	}

	respond(c, http.StatusOK, "If the email exists, reset instructions will be sent", nil)
}

func (ctl *Controller) ResetPassword(c *gin.Context) {
	var body resetPasswordInput
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}

	db := ctl.DB.WithContext(c.Request.Context())
	var user models.User
	err := db.Where("reset_token = ? AND reset_expires > ?", body.Token, ctl.now()).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, errors.Wrap(errdefs.ErrInvalidArgument, "invalid or expired token"))
			return
		}
		respondError(c, pgstore.Classify(err, "find reset token"))
		return
	}

	hash, err := hashPassword(body.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	err = db.Model(&user).Updates(map[string]interface{}{
		"password_hash": hash,
		"reset_token":   nil,
		"reset_expires": nil,
	}).Error
	if err != nil {
		respondError(c, pgstore.Classify(err, "reset password"))
		return
	}
	respond(c, http.StatusOK, "Password reset successfully", nil)
}

// EnsureAdmin creates an admin user with the given credentials unless the
// email is already registered.
func EnsureAdmin(db *gorm.DB, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return pgstore.Classify(err, "look up admin %s", email)
	}
	if count > 0 {
		return nil
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{Name: "Administrator", Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		return pgstore.Classify(err, "create admin %s", email)
	}
	logrus.WithField("email", email).Info("Admin user created")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrapf(errdefs.ErrInvalidArgument, "could not hash password: %v", err)
	}
	return string(hash), nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate reset token")
	}
	return hex.EncodeToString(b), nil
}
