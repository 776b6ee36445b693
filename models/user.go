package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

var ErrorInvalidCredentials = errors.New("invalid username or password")

type User struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     *string   `gorm:"size:100;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	Role      UserRole  `gorm:"size:10;not null;default:user" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required,min=3,max=100"`
	Name     string   `json:"name" binding:"required,max=100"`
	Email    *string  `json:"email" binding:"omitempty,email,max=100"`
	Password string   `json:"password" binding:"required,min=6"`
	Role     UserRole `json:"role" binding:"omitempty,oneof=admin user"`
}

type LoginInfo struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = UserRoleUser
	}

	isActive := true
	user := User{
		Username: strings.TrimSpace(input.Username),
		Name:     input.Name,
		Email:    utils.TrimToNil(input.Email),
		Password: hashed,
		IsActive: &isActive,
		Role:     role,
	}

	err = runInTx(ctx, "User", "CreateUser", user.Username, func(tx *gorm.DB) error {
		if err := utils.ValidateUnique[User](ctx, tx, "username", user.Username, "", nil); err != nil {
			return err
		}
		if user.Email != nil {
			if err := utils.ValidateUnique[User](ctx, tx, "email", *user.Email, "", nil); err != nil {
				return err
			}
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks the credentials and issues a signed token.
func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	db := config.GetDB()

	var user User
	err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorInvalidCredentials
		}
		return nil, err
	}

	// check login credentials
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, ErrorInvalidCredentials
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, ErrorInvalidCredentials
	}

	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role))
	if err != nil {
		config.LogError(config.GetLogger(), "User", "Login", "generating token", user.Username, err)
		return nil, err
	}

	return &LoginInfo{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, nil, map[string]interface{}{"id": id})
}

// GetCurrentUser resolves the caller stored in ctx by the auth middleware.
func GetCurrentUser(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, ErrorInvalidCredentials
	}
	return GetUser(ctx, userId)
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	user, err := GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return nil, ErrorInvalidCredentials
	}
	if len(strings.TrimSpace(newPassword)) < 6 {
		return nil, utils.NewValidationError("new_password", "must be at least 6")
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Update("password", hashed).Error; err != nil {
		return nil, err
	}
	return user, nil
}
