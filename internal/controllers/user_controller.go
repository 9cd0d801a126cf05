package controllers

import (
	"net/http"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"school_transport/internal/models"
	pgstore "school_transport/internal/repository/postgres"
)

type createUserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role"`
}

type updateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
	Role     *string `json:"role"`
}

func validateAndNormalizeRole(roleInput string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(roleInput))
	if role == "" {
		role = models.RoleAdmin
	}
	switch role {
	case models.RoleAdmin, models.RoleDriver, models.RoleMonitor:
		return role, nil
	default:
		return "", errors.Wrapf(errdefs.ErrInvalidArgument, "invalid role %q", roleInput)
	}
}

func (in updateUserInput) changes() (map[string]interface{}, error) {
	changes := make(map[string]interface{})
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errors.Wrap(errdefs.ErrInvalidArgument, "name must not be empty")
		}
		changes["name"] = name
	}
	if in.Email != nil {
		changes["email"] = normalizeEmail(*in.Email)
	}
	if in.Role != nil {
		role, err := validateAndNormalizeRole(*in.Role)
		if err != nil {
			return nil, err
		}
		changes["role"] = role
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		changes["password_hash"] = hash
	}
	return changes, nil
}

func (ctl *Controller) CreateUser(c *gin.Context) {
	var input createUserInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	role, err := validateAndNormalizeRole(input.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		respondError(c, errors.Wrap(errdefs.ErrInvalidArgument, "name must not be empty"))
		return
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{Name: name, Email: normalizeEmail(input.Email), PasswordHash: hash, Role: role}
	if err := ctl.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		respondError(c, pgstore.Classify(err, "create user %s", user.Email))
		return
	}
	respond(c, http.StatusCreated, "User created", user)
}

func (ctl *Controller) ListUsers(c *gin.Context) {
	users := []models.User{}
	if err := ctl.DB.WithContext(c.Request.Context()).Order("name ASC").Find(&users).Error; err != nil {
		respondError(c, pgstore.Classify(err, "list users"))
		return
	}
	respond(c, http.StatusOK, "Users listed", users)
}

func (ctl *Controller) GetUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var user models.User
	if err := ctl.DB.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "user %d", id))
		return
	}
	respond(c, http.StatusOK, "User found", user)
}

func (ctl *Controller) UpdateUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input updateUserInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	changes, err := input.changes()
	if err != nil {
		respondError(c, err)
		return
	}

	db := ctl.DB.WithContext(c.Request.Context())
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "user %d", id))
		return
	}
	if len(changes) > 0 {
		if err := db.Model(&user).Updates(changes).Error; err != nil {
			respondError(c, pgstore.Classify(err, "update user %d", id))
			return
		}
	}
	if err := db.First(&user, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "user %d", id))
		return
	}
	respond(c, http.StatusOK, "User updated", user)
}

func (ctl *Controller) DeleteUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if id == currentUserID(c) {
		respondError(c, errors.Wrap(errdefs.ErrConflict, "cannot delete the signed in user"))
		return
	}
	res := ctl.DB.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		respondError(c, pgstore.Classify(res.Error, "delete user %d", id))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, errors.Wrapf(errdefs.ErrNotFound, "user %d", id))
		return
	}
	respond(c, http.StatusOK, "User deleted", nil)
}
