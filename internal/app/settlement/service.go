package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autotrade/internal/app/ds"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service - операции распределения сборов и завершения контракта.
// Штатный интерфейс: SetAllocations, GetAllocations, ComputeSettlement,
// IssueToken, SendLink, Finalize. Интерфейс стороны по токену: ResolveToken,
// SubmitSelection.
type Service struct {
	store         Store
	tokens        TokenStore
	notifier      Notifier
	archiver      SnapshotArchiver
	publicBaseURL string
}

func NewService(store Store, tokens TokenStore, notifier Notifier, archiver SnapshotArchiver, publicBaseURL string) *Service {
	return &Service{
		store:         store,
		tokens:        tokens,
		notifier:      notifier,
		archiver:      archiver,
		publicBaseURL: publicBaseURL,
	}
}

// Контекст экрана выбора сборов, восстановленный по токену. Роль и контракт
// берутся только из токена - параметрам ссылки сервер не доверяет.
type SelectionContext struct {
	ContractID         uint         `json:"contract_id"`
	PartyRole          ds.PartyRole `json:"party_role"`
	PartyName          string       `json:"party_name"`
	VehicleTitle       string       `json:"vehicle_title"`
	VehicleDescription string       `json:"vehicle_description"`
	BasePrice          int64        `json:"base_price"`
	SelectedFeeIDs     []uint       `json:"selected_fee_ids"`
}

// SetAllocations атомарно заменяет набор сборов стороны контракта.
// Суммы фиксируются по цене контракта на момент вызова. Частичного
// применения не бывает: любой неизвестный сбор оставляет прежний набор.
func (s *Service) SetAllocations(ctx context.Context, contractID uint, partyRole ds.PartyRole, feeIDs []uint) (Summary, []ds.FeeAllocation, error) {
	if !partyRole.Valid() {
		return Summary{}, nil, fmt.Errorf("неизвестная сторона контракта %q", partyRole)
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return Summary{}, nil, err
	}
	if contract.Status == ds.StatusCompleted {
		return Summary{}, nil, ErrContractFinalized
	}

	// Выбор - множество: повторы в запросе схлопываем
	uniqueIDs := make([]uint, 0, len(feeIDs))
	seen := make(map[uint]bool, len(feeIDs))
	for _, id := range feeIDs {
		if !seen[id] {
			seen[id] = true
			uniqueIDs = append(uniqueIDs, id)
		}
	}

	fees, err := s.store.GetFeesByIDs(ctx, uniqueIDs)
	if err != nil {
		return Summary{}, nil, err
	}
	if len(fees) != len(uniqueIDs) {
		found := make(map[uint]bool, len(fees))
		for _, fee := range fees {
			found[fee.ID] = true
		}
		for _, id := range uniqueIDs {
			if !found[id] {
				return Summary{}, nil, fmt.Errorf("%w: id=%d", ErrUnknownFee, id)
			}
		}
	}

	now := time.Now()
	allocations := make([]ds.FeeAllocation, 0, len(fees))
	for _, fee := range fees {
		amount, err := ComputeFeeAmount(fee, contract.BasePrice)
		if err != nil {
			return Summary{}, nil, err
		}
		allocations = append(allocations, ds.FeeAllocation{
			ContractID:   contractID,
			PartyRole:    partyRole,
			ServiceFeeID: fee.ID,
			Amount:       amount,
			CreatedAt:    now,
		})
	}

	if err := s.store.ReplaceAllocations(ctx, contractID, partyRole, allocations); err != nil {
		return Summary{}, nil, err
	}

	logrus.Infof("allocations replaced: contract=%d party=%s fees=%d", contractID, partyRole, len(allocations))

	all, err := s.store.GetAllocations(ctx, contractID)
	if err != nil {
		return Summary{}, nil, err
	}
	return BuildSummary(contract.BasePrice, all), partyAllocations(all, partyRole), nil
}

// GetAllocations возвращает текущие назначения контракта по сторонам
func (s *Service) GetAllocations(ctx context.Context, contractID uint) (buyer, seller []ds.FeeAllocation, err error) {
	if _, err = s.store.GetContract(ctx, contractID); err != nil {
		return nil, nil, err
	}
	all, err := s.store.GetAllocations(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	return partyAllocations(all, ds.PartyBuyer), partyAllocations(all, ds.PartySeller), nil
}

// ComputeSettlement - живой пересчёт итогов. До завершения контракта это
// предпросмотр; после завершения авторитетным остаётся сохранённый снимок.
func (s *Service) ComputeSettlement(ctx context.Context, contractID uint) (Summary, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return Summary{}, err
	}
	all, err := s.store.GetAllocations(ctx, contractID)
	if err != nil {
		return Summary{}, err
	}
	return BuildSummary(contract.BasePrice, all), nil
}

// Finalize необратимо завершает контракт: фиксирует снимок расчёта и
// закрывает контракт для изменений сборов. Повторный вызов безопасно
// возвращает ErrAlreadyFinalized.
func (s *Service) Finalize(ctx context.Context, contractID uint) (*ds.Contract, *ds.SettlementRecord, error) {
	contract, record, err := s.store.FinalizeContract(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}

	logrus.Infof("contract finalized: id=%d buyer_total=%d seller_total=%d anomaly=%v",
		contractID, record.BuyerFeeTotal, record.SellerFeeTotal, record.HasAnomaly)

	// Архив снимка - вспомогательная операция, завершение не откатываем
	if s.archiver != nil {
		doc, err := json.Marshal(record)
		if err != nil {
			logrus.Warnf("cannot marshal settlement record %d: %v", record.ID, err)
			return contract, record, nil
		}
		object, err := s.archiver.ArchiveSettlement(ctx, contractID, doc)
		if err != nil {
			logrus.Warnf("cannot archive settlement record %d: %v", record.ID, err)
			return contract, record, nil
		}
		if err := s.store.SetSettlementArchive(ctx, contractID, object); err != nil {
			logrus.Warnf("cannot save archive object for contract %d: %v", contractID, err)
			return contract, record, nil
		}
		record.ArchiveObject = object
	}

	return contract, record, nil
}

// IssueToken выпускает токен доступа стороны к экрану выбора сборов.
// Повторный вызов выпускает новый токен; прежние остаются действительны до
// истечения TTL, поэтому повторный переход по старой ссылке идемпотентен.
func (s *Service) IssueToken(ctx context.Context, contractID uint, partyRole ds.PartyRole) (string, error) {
	if !partyRole.Valid() {
		return "", fmt.Errorf("неизвестная сторона контракта %q", partyRole)
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return "", err
	}
	if contract.Status == ds.StatusCompleted {
		return "", ErrContractFinalized
	}

	token := uuid.NewString()
	if err := s.tokens.SaveToken(ctx, token, contractID, partyRole); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveToken восстанавливает контекст экрана выбора по токену. Любая
// причина отказа (токен неизвестен, истёк, контракт завершён) выглядит
// одинаково - ErrInvalidToken.
func (s *Service) ResolveToken(ctx context.Context, token string) (*SelectionContext, error) {
	contractID, partyRole, err := s.tokens.LookupToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil || contract.Status == ds.StatusCompleted {
		return nil, ErrInvalidToken
	}

	all, err := s.store.GetAllocations(ctx, contractID)
	if err != nil {
		return nil, err
	}

	selected := make([]uint, 0)
	for _, a := range partyAllocations(all, partyRole) {
		selected = append(selected, a.ServiceFeeID)
	}

	return &SelectionContext{
		ContractID:         contractID,
		PartyRole:          partyRole,
		PartyName:          contract.PartyName(partyRole),
		VehicleTitle:       contract.VehicleTitle,
		VehicleDescription: contract.VehicleDescription,
		BasePrice:          contract.BasePrice,
		SelectedFeeIDs:     selected,
	}, nil
}

// SubmitSelection применяет выбор стороны под привязкой токена и возвращает
// пересчитанный итог. Повторная отправка того же набора даёт тот же результат.
func (s *Service) SubmitSelection(ctx context.Context, token string, feeIDs []uint) (Summary, error) {
	contractID, partyRole, err := s.tokens.LookupToken(ctx, token)
	if err != nil {
		return Summary{}, ErrInvalidToken
	}

	summary, _, err := s.SetAllocations(ctx, contractID, partyRole, feeIDs)
	if err != nil {
		// Завершённый или исчезнувший контракт для стороны неотличим от
		// недействительного токена
		if errors.Is(err, ErrContractFinalized) || errors.Is(err, ErrUnknownContract) {
			return Summary{}, ErrInvalidToken
		}
		return Summary{}, err
	}
	return summary, nil
}

// SendLink выпускает токен, формирует ссылку выбора и запрашивает отправку
// через внешний шлюз. Доставка не ожидается: фиксируется только сам запрос.
func (s *Service) SendLink(ctx context.Context, contractID uint, partyRole ds.PartyRole, channel string) (string, error) {
	if channel != ds.ChannelEmail && channel != ds.ChannelSMS {
		return "", fmt.Errorf("неизвестный канал доставки %q", channel)
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return "", err
	}
	if contract.Status == ds.StatusCompleted {
		return "", ErrContractFinalized
	}

	destination := contract.PartyEmail(partyRole)
	if channel == ds.ChannelSMS {
		destination = contract.PartyPhone(partyRole)
	}
	if destination == "" {
		return "", fmt.Errorf("у стороны %s не указан адрес для канала %s", partyRole, channel)
	}

	token, err := s.IssueToken(ctx, contractID, partyRole)
	if err != nil {
		return "", err
	}

	// cid и role в ссылке - только для отображения, авторизация идёт по токену
	link := fmt.Sprintf("%s/selection?cid=%d&role=%s&token=%s", s.publicBaseURL, contractID, partyRole, token)

	dispatch := &ds.LinkDispatch{
		ContractID:  contractID,
		PartyRole:   partyRole,
		Channel:     channel,
		Destination: destination,
		Link:        link,
		RequestedAt: time.Now(),
	}
	if err := s.store.SaveLinkDispatch(ctx, dispatch); err != nil {
		return "", err
	}

	if s.notifier != nil {
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notifier.SendSelectionLink(sendCtx, destination, channel, link); err != nil {
				logrus.Warnf("selection link dispatch failed: contract=%d party=%s: %v", contractID, partyRole, err)
			}
		}()
	}

	logrus.Infof("selection link requested: contract=%d party=%s channel=%s", contractID, partyRole, channel)
	return link, nil
}

func partyAllocations(all []ds.FeeAllocation, partyRole ds.PartyRole) []ds.FeeAllocation {
	out := make([]ds.FeeAllocation, 0, len(all))
	for _, a := range all {
		if a.PartyRole == partyRole {
			out = append(out, a)
		}
	}
	return out
}
