package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cardpayhq/cardpay-backend/internal/dto"
	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/cardpayhq/cardpay-backend/internal/provider"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken             = errors.New("user with email address already exist")
	ErrInvalidCredentials     = errors.New("incorrect email address or password")
	ErrUserNotFound           = errors.New("user not found")
	ErrNoCustomerFromProvider = errors.New("could not get user information from provider")
)

type UserService struct {
	db      *gorm.DB
	gateway provider.Gateway
}

func NewUserService(db *gorm.DB, gateway provider.Gateway) *UserService {
	return &UserService{db: db, gateway: gateway}
}

type CreateUserParams struct {
	FirstName    string
	LastName     string
	EmailAddress string
	Password     string
}

// CreateUser registers the user with the provider, hashes the password and
// persists the row. Hashing happens here, before persistence, so the contract
// is visible independent of storage.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	email := strings.ToLower(params.EmailAddress)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email_address = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	customer, err := s.gateway.CreateCustomer(ctx, provider.CreateCustomerParams{
		EmailAddress: email,
		GivenName:    params.FirstName,
		FamilyName:   params.LastName,
	})
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.ID == "" {
		return nil, ErrNoCustomerFromProvider
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		FirstName:          params.FirstName,
		LastName:           params.LastName,
		EmailAddress:       email,
		Password:           string(hash),
		ProviderCustomerID: customer.ID,
		Metadata:           datatypes.JSON(customer.Raw),
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Authenticate resolves email+password to a user. An unknown email and a wrong
// password are indistinguishable to the caller.
func (s *UserService) Authenticate(emailAddress, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email_address = ?", strings.ToLower(emailAddress)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUserWithCards loads the identity attached to each authenticated request.
// Cards are preloaded for the ownership checks downstream.
func (s *UserService) GetUserWithCards(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Cards").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// GetUserAggregate loads the user with cards and their payments for whoami.
func (s *UserService) GetUserAggregate(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Cards.Payments").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) ListPayments(userID uint, limit, page int) ([]models.Payment, *dto.Pagination, error) {
	var payments []models.Payment
	var total int64

	query := s.db.Model(&models.Payment{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count payments: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, paginate(limit, page, offset, total), nil
}

func (s *UserService) ListCards(userID uint, limit, page int) ([]models.Card, *dto.Pagination, error) {
	var cards []models.Card
	var total int64

	query := s.db.Model(&models.Card{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count cards: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Limit(limit).Offset(offset).Find(&cards).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list cards: %w", err)
	}

	return cards, paginate(limit, page, offset, total), nil
}

type UpdateUserParams struct {
	FirstName    string
	LastName     string
	EmailAddress string
}

// UpdateUser mutates the local row and mirrors the change to the provider's
// customer record.
func (s *UserService) UpdateUser(ctx context.Context, id uint, params UpdateUserParams) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	email := strings.ToLower(params.EmailAddress)
	updates := map[string]any{
		"first_name":    params.FirstName,
		"last_name":     params.LastName,
		"email_address": email,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if _, err := s.gateway.UpdateCustomer(ctx, user.ProviderCustomerID, provider.CreateCustomerParams{
		EmailAddress: email,
		GivenName:    params.FirstName,
		FamilyName:   params.LastName,
	}); err != nil {
		return nil, err
	}

	return &user, nil
}

// DeleteUser soft-deletes the row and removes the provider's customer record.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.db.Delete(&user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return s.gateway.DeleteCustomer(ctx, user.ProviderCustomerID)
}

func paginate(limit, page, offset int, total int64) *dto.Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &dto.Pagination{
		Limit:       limit,
		CurrentPage: page,
		Offset:      offset,
		TotalPages:  totalPages,
		TotalRows:   total,
	}
}
