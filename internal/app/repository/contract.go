package repository

import (
	"context"
	"errors"
	"time"

	"autotrade/internal/app/ds"
	"autotrade/internal/app/settlement"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Методы для работы с контрактами

// Создать контракт в статусе "открыт"
func (r *Repository) CreateContract(contract *ds.Contract) error {
	contract.Status = ds.StatusOpen
	contract.CreatedAt = time.Now()
	return r.db.Create(contract).Error
}

// Получить контракт по ID
func (r *Repository) GetContract(ctx context.Context, contractID uint) (*ds.Contract, error) {
	var contract ds.Contract
	err := r.db.WithContext(ctx).Preload("Creator").First(&contract, contractID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, settlement.ErrUnknownContract
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// Получить список контрактов с фильтрацией по статусу и датам создания
func (r *Repository) GetContracts(status string, dateFrom, dateTo *time.Time) ([]ds.Contract, error) {
	query := r.db.Preload("Creator").Order("created_at DESC")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if dateFrom != nil {
		query = query.Where("created_at >= ?", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("created_at <= ?", *dateTo)
	}

	var contracts []ds.Contract
	err := query.Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

// FinalizeContract завершает контракт: под блокировкой строки читает текущие
// назначения, сохраняет снимок расчёта и переводит статус в терминальный.
// Конкурирующий ReplaceAllocations либо попадает в снимок, либо получает
// отказ по статусу - промежуточных состояний не бывает.
func (r *Repository) FinalizeContract(ctx context.Context, contractID uint) (*ds.Contract, *ds.SettlementRecord, error) {
	var contract ds.Contract
	var record ds.SettlementRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&contract, contractID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return settlement.ErrUnknownContract
		}
		if err != nil {
			return err
		}
		if contract.Status == ds.StatusCompleted {
			return settlement.ErrAlreadyFinalized
		}

		var allocations []ds.FeeAllocation
		if err := tx.Where("contract_id = ?", contractID).Find(&allocations).Error; err != nil {
			return err
		}

		summary := settlement.BuildSummary(contract.BasePrice, allocations)
		now := time.Now()
		record = ds.SettlementRecord{
			ContractID:        contractID,
			BuyerFeeTotal:     summary.BuyerFeeTotal,
			SellerFeeTotal:    summary.SellerFeeTotal,
			FinalBuyerAmount:  summary.FinalBuyerAmount,
			FinalSellerAmount: summary.FinalSellerAmount,
			HasAnomaly:        summary.HasAnomaly,
			CreatedAt:         now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if err := tx.Model(&ds.Contract{}).Where("id = ?", contractID).Updates(map[string]interface{}{
			"status":       ds.StatusCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}

		contract.Status = ds.StatusCompleted
		contract.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &contract, &record, nil
}

// Получить сохранённый снимок расчёта завершённого контракта
func (r *Repository) GetSettlementRecord(ctx context.Context, contractID uint) (*ds.SettlementRecord, error) {
	var record ds.SettlementRecord
	err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, settlement.ErrUnknownContract
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Записать имя архивного объекта на снимке расчёта
func (r *Repository) SetSettlementArchive(ctx context.Context, contractID uint, object string) error {
	result := r.db.WithContext(ctx).Model(&ds.SettlementRecord{}).
		Where("contract_id = ?", contractID).
		Update("archive_object", object)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return settlement.ErrUnknownContract
	}
	return nil
}

// Зафиксировать запрос на отправку ссылки
func (r *Repository) SaveLinkDispatch(ctx context.Context, dispatch *ds.LinkDispatch) error {
	return r.db.WithContext(ctx).Create(dispatch).Error
}

// Получить историю отправок ссылок по контракту
func (r *Repository) GetLinkDispatches(contractID uint) ([]ds.LinkDispatch, error) {
	var dispatches []ds.LinkDispatch
	err := r.db.Where("contract_id = ?", contractID).Order("requested_at DESC").Find(&dispatches).Error
	return dispatches, err
}
