package settlement

import (
	"context"

	"autotrade/internal/app/ds"
)

// Store - персистентное состояние подсистемы. Реализация на GORM живёт в
// repository, в тестах используется MemoryStore.
type Store interface {
	GetContract(ctx context.Context, contractID uint) (*ds.Contract, error)
	GetFeesByIDs(ctx context.Context, feeIDs []uint) ([]ds.ServiceFee, error)
	GetAllocations(ctx context.Context, contractID uint) ([]ds.FeeAllocation, error)

	// ReplaceAllocations атомарно заменяет весь набор назначений стороны:
	// либо применяется целиком, либо прежний набор остаётся нетронутым.
	// Для завершённого контракта возвращает ErrContractFinalized.
	ReplaceAllocations(ctx context.Context, contractID uint, partyRole ds.PartyRole, allocations []ds.FeeAllocation) error

	// FinalizeContract под взаимным исключением по контракту читает текущие
	// назначения, сохраняет неизменяемый снимок расчёта и переводит контракт
	// в терминальный статус. Повторный вызов - ErrAlreadyFinalized.
	FinalizeContract(ctx context.Context, contractID uint) (*ds.Contract, *ds.SettlementRecord, error)

	GetSettlementRecord(ctx context.Context, contractID uint) (*ds.SettlementRecord, error)
	SetSettlementArchive(ctx context.Context, contractID uint, object string) error
	SaveLinkDispatch(ctx context.Context, dispatch *ds.LinkDispatch) error
}

// TokenStore хранит соответствие токен -> (контракт, сторона). Токен -
// непрозрачный bearer-ключ, проверяемый только на стороне сервера.
type TokenStore interface {
	SaveToken(ctx context.Context, token string, contractID uint, partyRole ds.PartyRole) error
	// LookupToken возвращает ErrInvalidToken для неизвестного или истёкшего токена
	LookupToken(ctx context.Context, token string) (uint, ds.PartyRole, error)
}

// Notifier доставляет ссылку выбора сборов стороне контракта.
// Результат доставки подсистемой не отслеживается.
type Notifier interface {
	SendSelectionLink(ctx context.Context, destination, channel, link string) error
}

// SnapshotArchiver архивирует JSON-документ снимка расчёта в объектное
// хранилище и возвращает имя объекта.
type SnapshotArchiver interface {
	ArchiveSettlement(ctx context.Context, contractID uint, doc []byte) (string, error)
}
