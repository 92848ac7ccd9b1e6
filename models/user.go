package models

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

type User struct {
	ID       int    `gorm:"primary_key" json:"id"`
	Username string `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Password string `gorm:"size:100;not null" json:"-"`
	IsAdmin  bool   `gorm:"not null;default:false" json:"is_admin"`
	// Rights is a comma-separated list of legacy numeric right codes
	// ("131001,131002,...").
	Rights string `gorm:"size:512" json:"rights"`
	Validity
}

func (User) TableName() string {
	return "users"
}

func (u *User) SetPassword(plain string) error {
	hashed, err := utils.HashPassword(plain)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

func (u User) CheckPassword(plain string) bool {
	return utils.ComparePassword(u.Password, plain)
}

// HasAnyRight reports whether the user carries at least one of the given
// right codes. Admins hold every right.
func (u User) HasAnyRight(rights []string) bool {
	if u.IsAdmin {
		return true
	}
	held := strings.Split(u.Rights, ",")
	for _, want := range rights {
		for _, has := range held {
			if strings.TrimSpace(has) == want {
				return true
			}
		}
	}
	return false
}

// GetUserById returns utils.ErrorRecordNotFound when no valid row matches,
// so callers can answer 401/403 instead of a server error.
func GetUserById(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).
		Where("validity_to IS NULL").
		First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).
		Where("validity_to IS NULL").
		Where("username = ?", username).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
