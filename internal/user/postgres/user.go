package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/user"
	"github.com/frahmantamala/salary-simulator/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetPasswordHash(ctx context.Context, email string) (string, int64, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Password").Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, nil
		}
		return "", 0, err
	}
	if u.Password == nil {
		return "", u.ID, nil
	}
	return u.Password.Hash, u.ID, nil
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*userDatamodel.User, error) {
	u := &userDatamodel.User{Email: email}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Password").Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&userDatamodel.Password{UserID: u.ID, Hash: passwordHash}).Error
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
