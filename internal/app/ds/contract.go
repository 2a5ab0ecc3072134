package ds

import "time"

// Статусы контракта: открыт, завершён (терминальный)
const (
	StatusOpen      = "открыт"
	StatusCompleted = "завершён"
)

// Сторона контракта
type PartyRole string

const (
	PartyBuyer  PartyRole = "buyer"
	PartySeller PartyRole = "seller"
)

func (p PartyRole) Valid() bool {
	return p == PartyBuyer || p == PartySeller
}

// 2. Таблица контрактов перепродажи
type Contract struct {
	ID          uint       `gorm:"primaryKey"`
	Status      string     `gorm:"type:varchar(20);not null"` // открыт, завершён
	CreatedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time `gorm:"default:null"` // Дата завершения (подтверждение менеджером)
	CreatorID   uint       `gorm:"not null"`

	// Поля по предметной области
	BasePrice          int64  `gorm:"type:decimal(18,0);not null"` // Согласованная цена продажи
	VehicleTitle       string `gorm:"type:varchar(200);not null"`
	VehicleDescription string `gorm:"type:text"`

	// Данные сторон (для этой подсистемы - только отображение)
	BuyerName     string `gorm:"type:varchar(100)"`
	BuyerPhone    string `gorm:"type:varchar(20)"`
	BuyerEmail    string `gorm:"type:varchar(100)"`
	BuyerAddress  string `gorm:"type:varchar(255)"`
	SellerName    string `gorm:"type:varchar(100)"`
	SellerPhone   string `gorm:"type:varchar(20)"`
	SellerEmail   string `gorm:"type:varchar(100)"`
	SellerAddress string `gorm:"type:varchar(255)"`

	Creator User `gorm:"foreignKey:CreatorID"`
}

// PartyEmail возвращает email стороны контракта
func (c *Contract) PartyEmail(role PartyRole) string {
	if role == PartySeller {
		return c.SellerEmail
	}
	return c.BuyerEmail
}

// PartyPhone возвращает телефон стороны контракта
func (c *Contract) PartyPhone(role PartyRole) string {
	if role == PartySeller {
		return c.SellerPhone
	}
	return c.BuyerPhone
}

// PartyName возвращает имя стороны контракта
func (c *Contract) PartyName(role PartyRole) string {
	if role == PartySeller {
		return c.SellerName
	}
	return c.BuyerName
}
