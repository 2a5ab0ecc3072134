package repository

import (
	"context"
	"errors"

	"autotrade/internal/app/ds"
	"autotrade/internal/app/settlement"

	"gorm.io/gorm"
)

// Методы для работы с каталогом сборов

// Получить все сборы из каталога
func (r *Repository) GetAllFees() ([]ds.ServiceFee, error) {
	var fees []ds.ServiceFee
	err := r.db.Where("is_deleted = ?", false).Order("id").Find(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

// Поиск сборов по названию
func (r *Repository) SearchFeesByName(name string) ([]ds.ServiceFee, error) {
	var fees []ds.ServiceFee
	err := r.db.Where("name ILIKE ? AND is_deleted = ?", "%"+name+"%", false).Order("id").Find(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

// Получить сбор по ID
func (r *Repository) GetFeeByID(id uint) (*ds.ServiceFee, error) {
	var fee ds.ServiceFee
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, settlement.ErrUnknownFee
	}
	if err != nil {
		return nil, err
	}
	return &fee, nil
}

// Получить сборы по списку ID (удалённые не возвращаются)
func (r *Repository) GetFeesByIDs(ctx context.Context, feeIDs []uint) ([]ds.ServiceFee, error) {
	if len(feeIDs) == 0 {
		return []ds.ServiceFee{}, nil
	}
	var fees []ds.ServiceFee
	err := r.db.WithContext(ctx).Where("id IN ? AND is_deleted = ?", feeIDs, false).Find(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

// Создать сбор в каталоге
func (r *Repository) CreateFee(name, description, calculationKind string, value float64) (*ds.ServiceFee, error) {
	fee := ds.ServiceFee{
		Name:            name,
		Description:     description,
		CalculationKind: calculationKind,
		Value:           value,
	}

	err := r.db.Create(&fee).Error
	if err != nil {
		return nil, err
	}

	return &fee, nil
}

// Обновить сбор (nil - поле не меняется)
func (r *Repository) UpdateFee(id uint, name, description, calculationKind *string, value *float64) error {
	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}
	if calculationKind != nil {
		updates["calculation_kind"] = *calculationKind
	}
	if value != nil {
		updates["value"] = *value
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.Model(&ds.ServiceFee{}).Where("id = ? AND is_deleted = ?", id, false).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return settlement.ErrUnknownFee
	}
	return nil
}

// Логическое удаление сбора. Существующие назначения сохраняют свои суммы
func (r *Repository) DeleteFee(id uint) error {
	result := r.db.Model(&ds.ServiceFee{}).Where("id = ? AND is_deleted = ?", id, false).Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return settlement.ErrUnknownFee
	}
	return nil
}
