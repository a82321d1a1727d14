package repository

import (
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindByID(id uint) (*model.Customer, error)
	FindByTelegramID(telegramID int64) (*model.Customer, error)
	FindByPhone(phone string) (*model.Customer, error)
	FindAll() ([]model.Customer, error)
	FindAdmins() ([]model.Customer, error)
	Update(customer *model.Customer) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *model.Customer) error {
	logger.Debug("Creating customer in database", map[string]interface{}{
		"telegram_id": customer.TelegramID,
	})

	if err := r.db.Create(customer).Error; err != nil {
		logger.Error("Failed to create customer in database", err, map[string]interface{}{
			"telegram_id": customer.TelegramID,
		})
		return err
	}

	logger.Debug("Customer created in database", map[string]interface{}{
		"customer_id": customer.ID,
		"telegram_id": customer.TelegramID,
	})
	return nil
}

func (r *customerRepository) FindByID(id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByTelegramID(telegramID int64) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.Where("telegram_id = ?", telegramID).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByPhone(phone string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.Where("phone_number = ?", phone).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindAll() ([]model.Customer, error) {
	var customers []model.Customer
	if err := r.db.Order("created_at DESC").Find(&customers).Error; err != nil {
		logger.Error("Failed to list customers", err)
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) FindAdmins() ([]model.Customer, error) {
	var admins []model.Customer
	if err := r.db.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
		logger.Error("Failed to list admin customers", err)
		return nil, err
	}
	return admins, nil
}

func (r *customerRepository) Update(customer *model.Customer) error {
	logger.Debug("Updating customer in database", map[string]interface{}{
		"customer_id": customer.ID,
		"telegram_id": customer.TelegramID,
	})

	if err := r.db.Save(customer).Error; err != nil {
		logger.Error("Failed to update customer in database", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return err
	}
	return nil
}
