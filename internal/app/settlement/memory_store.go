package settlement

import (
	"context"
	"sync"
	"time"

	"autotrade/internal/app/ds"
)

// MemoryStore - реализация Store в памяти для тестов и локального запуска
// без БД. Все операции сериализуются одним мьютексом, что покрывает
// требуемое взаимное исключение "чтение назначений -> решение -> запись".
type MemoryStore struct {
	mu          sync.Mutex
	contracts   map[uint]*ds.Contract
	fees        map[uint]*ds.ServiceFee
	allocations map[uint][]ds.FeeAllocation // по ID контракта
	records     map[uint]*ds.SettlementRecord
	dispatches  []ds.LinkDispatch
	nextID      uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contracts:   make(map[uint]*ds.Contract),
		fees:        make(map[uint]*ds.ServiceFee),
		allocations: make(map[uint][]ds.FeeAllocation),
		records:     make(map[uint]*ds.SettlementRecord),
		nextID:      1,
	}
}

// AddContract регистрирует контракт в статусе "открыт" и возвращает его ID
func (s *MemoryStore) AddContract(contract ds.Contract) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	if contract.ID == 0 {
		contract.ID = s.nextID
		s.nextID++
	}
	if contract.Status == "" {
		contract.Status = ds.StatusOpen
	}
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = time.Now()
	}
	s.contracts[contract.ID] = &contract
	return contract.ID
}

// AddFee регистрирует сбор в каталоге и возвращает его ID
func (s *MemoryStore) AddFee(fee ds.ServiceFee) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fee.ID == 0 {
		fee.ID = s.nextID
		s.nextID++
	}
	s.fees[fee.ID] = &fee
	return fee.ID
}

func (s *MemoryStore) GetContract(_ context.Context, contractID uint) (*ds.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.contracts[contractID]
	if !ok {
		return nil, ErrUnknownContract
	}
	copied := *contract
	return &copied, nil
}

func (s *MemoryStore) GetFeesByIDs(_ context.Context, feeIDs []uint) ([]ds.ServiceFee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fees := make([]ds.ServiceFee, 0, len(feeIDs))
	for _, id := range feeIDs {
		if fee, ok := s.fees[id]; ok && !fee.IsDeleted {
			fees = append(fees, *fee)
		}
	}
	return fees, nil
}

func (s *MemoryStore) GetAllocations(_ context.Context, contractID uint) ([]ds.FeeAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allocs := s.allocations[contractID]
	out := make([]ds.FeeAllocation, len(allocs))
	copy(out, allocs)
	return out, nil
}

func (s *MemoryStore) ReplaceAllocations(_ context.Context, contractID uint, partyRole ds.PartyRole, allocations []ds.FeeAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.contracts[contractID]
	if !ok {
		return ErrUnknownContract
	}
	if contract.Status == ds.StatusCompleted {
		return ErrContractFinalized
	}

	// Назначения другой стороны не трогаем
	kept := make([]ds.FeeAllocation, 0, len(s.allocations[contractID])+len(allocations))
	for _, a := range s.allocations[contractID] {
		if a.PartyRole != partyRole {
			kept = append(kept, a)
		}
	}
	for _, a := range allocations {
		a.ID = s.nextID
		s.nextID++
		kept = append(kept, a)
	}
	s.allocations[contractID] = kept
	return nil
}

func (s *MemoryStore) FinalizeContract(_ context.Context, contractID uint) (*ds.Contract, *ds.SettlementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.contracts[contractID]
	if !ok {
		return nil, nil, ErrUnknownContract
	}
	if contract.Status == ds.StatusCompleted {
		return nil, nil, ErrAlreadyFinalized
	}

	summary := BuildSummary(contract.BasePrice, s.allocations[contractID])
	record := &ds.SettlementRecord{
		ID:                s.nextID,
		ContractID:        contractID,
		BuyerFeeTotal:     summary.BuyerFeeTotal,
		SellerFeeTotal:    summary.SellerFeeTotal,
		FinalBuyerAmount:  summary.FinalBuyerAmount,
		FinalSellerAmount: summary.FinalSellerAmount,
		HasAnomaly:        summary.HasAnomaly,
		CreatedAt:         time.Now(),
	}
	s.nextID++
	s.records[contractID] = record

	now := time.Now()
	contract.Status = ds.StatusCompleted
	contract.CompletedAt = &now

	copiedContract := *contract
	copiedRecord := *record
	return &copiedContract, &copiedRecord, nil
}

func (s *MemoryStore) GetSettlementRecord(_ context.Context, contractID uint) (*ds.SettlementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[contractID]
	if !ok {
		return nil, ErrUnknownContract
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryStore) SetSettlementArchive(_ context.Context, contractID uint, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[contractID]
	if !ok {
		return ErrUnknownContract
	}
	record.ArchiveObject = object
	return nil
}

func (s *MemoryStore) SaveLinkDispatch(_ context.Context, dispatch *ds.LinkDispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dispatch.ID = s.nextID
	s.nextID++
	s.dispatches = append(s.dispatches, *dispatch)
	return nil
}

// Dispatches возвращает зафиксированные запросы на отправку ссылок
func (s *MemoryStore) Dispatches() []ds.LinkDispatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ds.LinkDispatch, len(s.dispatches))
	copy(out, s.dispatches)
	return out
}

// MemoryTokenStore - реализация TokenStore в памяти
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]tokenBinding
}

type tokenBinding struct {
	contractID uint
	partyRole  ds.PartyRole
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]tokenBinding)}
}

func (s *MemoryTokenStore) SaveToken(_ context.Context, token string, contractID uint, partyRole ds.PartyRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = tokenBinding{contractID: contractID, partyRole: partyRole}
	return nil
}

func (s *MemoryTokenStore) LookupToken(_ context.Context, token string) (uint, ds.PartyRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	binding, ok := s.tokens[token]
	if !ok {
		return 0, "", ErrInvalidToken
	}
	return binding.contractID, binding.partyRole, nil
}
