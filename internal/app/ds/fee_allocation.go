package ds

import "time"

// 3. Таблица назначений сборов (контракт-сторона-сбор) - связь + зафиксированная сумма
type FeeAllocation struct {
	ID           uint      `gorm:"primaryKey"`
	ContractID   uint      `gorm:"not null;index;uniqueIndex:idx_contract_party_fee"`
	PartyRole    PartyRole `gorm:"type:varchar(10);not null;uniqueIndex:idx_contract_party_fee"`
	ServiceFeeID uint      `gorm:"not null;index;uniqueIndex:idx_contract_party_fee"`
	// Сумма рассчитывается в момент назначения и дальше не пересчитывается,
	// даже если каталог изменился
	Amount    int64     `gorm:"type:decimal(18,0);not null"`
	CreatedAt time.Time `gorm:"not null"`

	Contract   Contract   `gorm:"foreignKey:ContractID"`
	ServiceFee ServiceFee `gorm:"foreignKey:ServiceFeeID"`
}
