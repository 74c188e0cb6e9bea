package repository

import (
	"github.com/hyeonlab/accounts-backend/internal/app/model"
	"github.com/hyeonlab/accounts-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserFilter narrows List to exact matches on the given fields; zero values
// are ignored.
type UserFilter struct {
	Status string
	Name   string
	Email  string
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	EmailTaken(email string, excludeID uint) (bool, error)
	List(page, pageSize int, filter UserFilter) ([]model.User, int64, error)
	Update(user *model.User) error
	Delete(id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if err != nil {
		logger.Debug("Failed to find user by ID in database", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		logger.Debug("Failed to find user by email in database", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether another user already owns the address. excludeID
// exempts one record so updates do not collide with themselves.
func (r *userRepository) EmailTaken(email string, excludeID uint) (bool, error) {
	query := r.db.Model(&model.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check email uniqueness in database", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) List(page, pageSize int, filter UserFilter) ([]model.User, int64, error) {
	query := r.db.Model(&model.User{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count users in database", err)
		return nil, 0, err
	}

	var users []model.User
	offset := (page - 1) * pageSize
	err := query.Order("id DESC").Limit(pageSize).Offset(offset).Find(&users).Error
	if err != nil {
		logger.Error("Failed to list users from database", err, map[string]interface{}{
			"page":      page,
			"page_size": pageSize,
		})
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}
	return nil
}
