package ds

// Способы расчёта сбора
const (
	FeeKindFixed      = "fixed"      // фиксированная сумма
	FeeKindPercentage = "percentage" // процент от цены продажи
)

// 1. Таблица сервисных сборов (каталог) - ТОЛЬКО справочная информация
type ServiceFee struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"type:varchar(100);not null"`
	Description string  `gorm:"type:text"`
	IsDeleted   bool    `gorm:"type:boolean;default:false;not null"`
	// Для fixed - абсолютная сумма, для percentage - процент в диапазоне [0,100]
	CalculationKind string  `gorm:"type:varchar(20);not null"`
	Value           float64 `gorm:"type:decimal(18,4);not null"`
}
