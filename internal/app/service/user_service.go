package service

import (
	"errors"

	"github.com/hyeonlab/accounts-backend/internal/app/model"
	"github.com/hyeonlab/accounts-backend/internal/app/repository"
	"github.com/hyeonlab/accounts-backend/pkg/logger"
	"github.com/hyeonlab/accounts-backend/pkg/util"
	"gorm.io/gorm"
)

// UserListResult carries one page of users plus pagination metadata.
type UserListResult struct {
	Total    int64
	Page     int
	LastPage int
	Users    []model.User
}

type UserService interface {
	List(page, pageSize int, filter repository.UserFilter) (*UserListResult, error)
	GetByID(id uint) (*model.User, error)
	Create(name, email, password string) (*model.User, error)
	Update(id uint, name, email, password *string, status *model.UserStatus) (*model.User, error)
	Delete(id uint) error
	EmailTaken(email string, excludeID uint) (bool, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(page, pageSize int, filter repository.UserFilter) (*UserListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	users, total, err := s.userRepo.List(page, pageSize, filter)
	if err != nil {
		logger.Error("Failed to list users", err, nil)
		return nil, err
	}

	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	if lastPage < 1 {
		lastPage = 1
	}

	return &UserListResult{
		Total:    total,
		Page:     page,
		LastPage: lastPage,
		Users:    users,
	}, nil
}

func (s *userService) GetByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create adds a user through the admin surface. Unlike Register, no
// verification email is involved.
func (s *userService) Create(name, email, password string) (*model.User, error) {
	taken, err := s.userRepo.EmailTaken(email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Status:       model.StatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("User created", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// Update applies only the fields the caller supplied. A nil password means
// the stored hash is untouched.
func (s *userService) Update(id uint, name, email, password *string, status *model.UserStatus) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if email != nil && *email != user.Email {
		taken, err := s.userRepo.EmailTaken(*email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *email
	}
	if name != nil {
		user.Name = *name
	}
	if status != nil {
		user.Status = *status
	}
	if password != nil && *password != "" {
		hashedPassword, err := util.HashPassword(*password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("User updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

func (s *userService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(id); err != nil {
		logger.Error("Failed to delete user", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}
	logger.Info("User deleted", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

func (s *userService) EmailTaken(email string, excludeID uint) (bool, error) {
	return s.userRepo.EmailTaken(email, excludeID)
}
