package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/adapters/persistence/repositories"
	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/pkg/password"
)

// User management errors
var (
	ErrOldPasswordWrong  = errors.New("old password is incorrect")
	ErrWeakPassword      = errors.New("new password does not meet the policy")
	ErrCannotDeleteSelf  = errors.New("cannot delete your own account")
	ErrCannotDisableSelf = errors.New("cannot deactivate your own account")
)

// UserService handles profile and admin user management
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileInput represents a self profile update. Nil fields are
// left untouched.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Address     *models.Address

	// student
	Department *string
	Year       *string

	// society
	SocietyName *string
	Position    *string
}

// ChangePasswordInput represents a password change
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// GetProfile returns the user's own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateProfile updates the user's own profile. Email, role and
// roll/member number are immutable here.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	if input.Address != nil {
		user.Address = *input.Address
	}

	switch domain.Role(user.Role) {
	case domain.RoleStudent:
		if input.Department != nil {
			user.Department = *input.Department
		}
		if input.Year != nil {
			user.Year = *input.Year
		}
	case domain.RoleSociety:
		if input.SocietyName != nil {
			user.SocietyName = *input.SocietyName
		}
		if input.Position != nil {
			user.Position = *input.Position
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// ChangePassword changes the user's password after verifying the old
// one
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	if !password.MeetsPolicy(input.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

// ListUsers lists accounts for the admin console, optionally filtered
// by role and search term
func (s *UserService) ListUsers(ctx context.Context, role, search string, offset, limit int) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, role, search, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, total, nil
}

// SetActive activates or deactivates an account. Deactivation does
// not revoke live sessions by itself; callers combine it with a
// session purge.
func (s *UserService) SetActive(ctx context.Context, adminID, userID uint, active bool) (*models.UserResponse, error) {
	if adminID == userID && !active {
		return nil, ErrCannotDisableSelf
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// DeleteUser soft deletes an account
func (s *UserService) DeleteUser(ctx context.Context, adminID, userID uint) error {
	if adminID == userID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.getUser(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) getUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
