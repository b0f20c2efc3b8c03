package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
	"github.com/CUknot/messenger_backend/utils"
)

const maxCodeAttempts = 20

// GormDirectory reads users and rooms from the relational schema.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) FindRoomBySlug(ctx context.Context, slug string) (models.Room, error) {
	var room models.Room
	err := d.db.WithContext(ctx).Where("slug = ?", slug).First(&room).Error
	return room, mapGormError(fmt.Sprintf("room %q", slug), err)
}

func (d *GormDirectory) FindRoomByID(ctx context.Context, id uint) (models.Room, error) {
	var room models.Room
	err := d.db.WithContext(ctx).First(&room, id).Error
	return room, mapGormError(fmt.Sprintf("room %d", id), err)
}

func (d *GormDirectory) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := d.db.WithContext(ctx).Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, unavailable("list rooms", err)
	}
	return rooms, nil
}

func (d *GormDirectory) FindUserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).First(&user, id).Error
	return user, mapGormError(fmt.Sprintf("user %d", id), err)
}

func (d *GormDirectory) FindUserByCode(ctx context.Context, code string) (models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where("code = ?", code).First(&user).Error
	return user, mapGormError(fmt.Sprintf("user code %q", code), err)
}

// FindUserByLogin accepts either a user code or a username.
func (d *GormDirectory) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where("code = ? OR username = ?", login, login).First(&user).Error
	return user, mapGormError(fmt.Sprintf("login %q", login), err)
}

func (d *GormDirectory) FindUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, unavailable("find users", err)
	}
	return users, nil
}

// CreateUser inserts the user with a freshly generated unique code.
func (d *GormDirectory) CreateUser(ctx context.Context, user *models.User) error {
	var taken int64
	if err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&taken).Error; err != nil {
		return unavailable("create user", err)
	}
	if taken > 0 {
		return apperrors.ErrUserAlreadyExists
	}

	code, err := d.unusedCode(ctx)
	if err != nil {
		return err
	}
	user.Code = code

	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrUserAlreadyExists
		}
		return unavailable("create user", err)
	}
	return nil
}

func (d *GormDirectory) unusedCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := utils.GenerateCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := d.db.WithContext(ctx).Model(&models.User{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", unavailable("generate code", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unused code after %d attempts", maxCodeAttempts)
}

func mapGormError(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	default:
		return unavailable(what, err)
	}
}
