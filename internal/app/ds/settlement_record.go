package ds

import "time"

// 4. Таблица итоговых расчётов - неизменяемый снимок, создаётся при завершении контракта.
// Все последующие отчёты обязаны ссылаться на этот снимок, а не на живой пересчёт.
type SettlementRecord struct {
	ID                uint  `gorm:"primaryKey"`
	ContractID        uint  `gorm:"not null;uniqueIndex"`
	BuyerFeeTotal     int64 `gorm:"type:decimal(18,0);not null"`
	SellerFeeTotal    int64 `gorm:"type:decimal(18,0);not null"`
	FinalBuyerAmount  int64 `gorm:"type:decimal(18,0);not null"`
	FinalSellerAmount int64 `gorm:"type:decimal(18,0);not null"`
	// Сборы продавца превысили цену продажи - предупреждение, не ошибка
	HasAnomaly bool `gorm:"type:boolean;default:false;not null"`
	// Имя заархивированного JSON-документа в объектном хранилище
	ArchiveObject string    `gorm:"type:varchar(255)"`
	CreatedAt     time.Time `gorm:"not null"`

	Contract Contract `gorm:"foreignKey:ContractID"`
}
