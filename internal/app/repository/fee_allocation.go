package repository

import (
	"context"
	"errors"

	"autotrade/internal/app/ds"
	"autotrade/internal/app/settlement"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Методы для работы с назначениями сборов

// Получить все назначения контракта (обе стороны)
func (r *Repository) GetAllocations(ctx context.Context, contractID uint) ([]ds.FeeAllocation, error) {
	var allocations []ds.FeeAllocation
	err := r.db.WithContext(ctx).
		Preload("ServiceFee").
		Where("contract_id = ?", contractID).
		Order("service_fee_id").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

// ReplaceAllocations атомарно заменяет набор назначений стороны контракта.
// Блокировка строки контракта сериализует замену с конкурирующим завершением
// и с повторной отправкой той же стороны; стороны между собой независимы.
func (r *Repository) ReplaceAllocations(ctx context.Context, contractID uint, partyRole ds.PartyRole, allocations []ds.FeeAllocation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract ds.Contract
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&contract, contractID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return settlement.ErrUnknownContract
		}
		if err != nil {
			return err
		}
		if contract.Status == ds.StatusCompleted {
			return settlement.ErrContractFinalized
		}

		if err := tx.Where("contract_id = ? AND party_role = ?", contractID, partyRole).
			Delete(&ds.FeeAllocation{}).Error; err != nil {
			return err
		}

		if len(allocations) == 0 {
			return nil
		}
		return tx.Create(&allocations).Error
	})
}
