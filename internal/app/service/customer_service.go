package service

import (
	"errors"
	"strings"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
	"github.com/samnasalta/orderbot-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidCustomer  = errors.New("invalid customer data")
)

// ValidationResult carries per-field validation failures so callers can show
// the user every problem at once instead of one per round trip.
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

type RegisterCustomerInput struct {
	TelegramID      int64
	FullName        string
	PhoneNumber     string
	Language        string
	DeliveryAddress string
}

type CustomerService interface {
	RegisterCustomer(input RegisterCustomerInput) (*model.Customer, error)
	GetByTelegramID(telegramID int64) (*model.Customer, error)
	GetByID(id uint) (*model.Customer, error)
	GetAllCustomers() ([]model.Customer, error)
	GetAdmins() ([]model.Customer, error)
	UpdateLanguage(telegramID int64, language string) error
	UpdateDeliveryAddress(telegramID int64, address string) error
	ValidateRegistration(input RegisterCustomerInput) ValidationResult
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

// ValidateRegistration checks all registration fields and collects every
// failure. The phone number is validated in its sanitized form.
func (s *customerService) ValidateRegistration(input RegisterCustomerInput) ValidationResult {
	result := ValidationResult{Valid: true, Errors: map[string]string{}}

	name := strings.TrimSpace(input.FullName)
	if len(name) < 2 {
		result.Valid = false
		result.Errors["full_name"] = "name must be at least 2 characters"
	}

	phone := util.SanitizePhoneNumber(input.PhoneNumber)
	if !util.ValidatePhoneNumber(phone) {
		result.Valid = false
		result.Errors["phone_number"] = "phone number must be a valid Israeli number"
	}

	if input.Language != "" && input.Language != "en" && input.Language != "he" {
		result.Valid = false
		result.Errors["language"] = "language must be en or he"
	}

	return result
}

// RegisterCustomer creates a customer or refreshes an existing one. The phone
// number is the stable identity: a returning customer registering from a new
// Telegram account gets their telegram_id updated rather than a duplicate row.
func (s *customerService) RegisterCustomer(input RegisterCustomerInput) (*model.Customer, error) {
	logger.Info("Registering customer", map[string]interface{}{
		"telegram_id": input.TelegramID,
	})

	if result := s.ValidateRegistration(input); !result.Valid {
		logger.Warn("Customer registration validation failed", map[string]interface{}{
			"telegram_id": input.TelegramID,
			"errors":      result.Errors,
		})
		return nil, ErrInvalidCustomer
	}

	phone := util.SanitizePhoneNumber(input.PhoneNumber)

	existing, err := s.customerRepo.FindByPhone(phone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up customer by phone", err, map[string]interface{}{
			"telegram_id": input.TelegramID,
		})
		return nil, err
	}

	if existing != nil {
		existing.TelegramID = input.TelegramID
		existing.FullName = strings.TrimSpace(input.FullName)
		if input.Language != "" {
			existing.Language = input.Language
		}
		if input.DeliveryAddress != "" {
			existing.DeliveryAddress = input.DeliveryAddress
		}
		if err := s.customerRepo.Update(existing); err != nil {
			logger.Error("Failed to refresh existing customer", err, map[string]interface{}{
				"customer_id": existing.ID,
			})
			return nil, err
		}
		logger.Info("Existing customer refreshed", map[string]interface{}{
			"customer_id": existing.ID,
			"telegram_id": existing.TelegramID,
		})
		return existing, nil
	}

	language := input.Language
	if language == "" {
		language = "en"
	}

	customer := &model.Customer{
		TelegramID:      input.TelegramID,
		FullName:        strings.TrimSpace(input.FullName),
		PhoneNumber:     phone,
		Language:        language,
		DeliveryAddress: input.DeliveryAddress,
	}

	if err := s.customerRepo.Create(customer); err != nil {
		logger.Error("Failed to create customer", err, map[string]interface{}{
			"telegram_id": input.TelegramID,
		})
		return nil, err
	}

	logger.Info("Customer registered successfully", map[string]interface{}{
		"customer_id": customer.ID,
		"telegram_id": customer.TelegramID,
	})
	return customer, nil
}

func (s *customerService) GetByTelegramID(telegramID int64) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		logger.Error("Failed to fetch customer", err, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(id uint) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		logger.Error("Failed to fetch customer", err, map[string]interface{}{
			"customer_id": id,
		})
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetAllCustomers() ([]model.Customer, error) {
	return s.customerRepo.FindAll()
}

func (s *customerService) GetAdmins() ([]model.Customer, error) {
	return s.customerRepo.FindAdmins()
}

func (s *customerService) UpdateLanguage(telegramID int64, language string) error {
	if language != "en" && language != "he" {
		return ErrInvalidCustomer
	}

	customer, err := s.GetByTelegramID(telegramID)
	if err != nil {
		return err
	}

	customer.Language = language
	if err := s.customerRepo.Update(customer); err != nil {
		logger.Error("Failed to update customer language", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return err
	}
	return nil
}

func (s *customerService) UpdateDeliveryAddress(telegramID int64, address string) error {
	if strings.TrimSpace(address) == "" {
		return ErrInvalidCustomer
	}

	customer, err := s.GetByTelegramID(telegramID)
	if err != nil {
		return err
	}

	customer.DeliveryAddress = strings.TrimSpace(address)
	if err := s.customerRepo.Update(customer); err != nil {
		logger.Error("Failed to update delivery address", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return err
	}
	return nil
}
