package ds

import "time"

// Каналы доставки ссылки на выбор сборов
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// 5. Таблица отправок ссылок - фиксируем сам факт запроса на отправку.
// Доставкой занимается внешний шлюз, её результат здесь не отслеживается.
type LinkDispatch struct {
	ID          uint      `gorm:"primaryKey"`
	ContractID  uint      `gorm:"not null;index"`
	PartyRole   PartyRole `gorm:"type:varchar(10);not null"`
	Channel     string    `gorm:"type:varchar(10);not null"` // email, sms
	Destination string    `gorm:"type:varchar(100);not null"`
	Link        string    `gorm:"type:varchar(500);not null"`
	RequestedAt time.Time `gorm:"not null"`

	Contract Contract `gorm:"foreignKey:ContractID"`
}
