package service

import (
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) Get(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

type ProfileUpdate struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Semester   int    `json:"semester"`
	RollNumber string `json:"rollNumber"`
}

func (s *UserService) UpdateProfile(id uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Department != "" {
		user.Department = update.Department
	}
	if update.Semester > 0 {
		user.Semester = update.Semester
	}
	if update.RollNumber != "" {
		user.RollNumber = update.RollNumber
	}
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(role model.UserRole, page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.List(role, page, limit)
}

// SetActive enables or disables an account; disabled users cannot log in.
func (s *UserService) SetActive(id uint, active bool) (*model.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
