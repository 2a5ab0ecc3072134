package settlement

import (
	"context"
	"strings"
	"sync"
	"testing"

	"autotrade/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	done chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 8)}
}

func (n *fakeNotifier) SendSelectionLink(_ context.Context, destination, channel, link string) error {
	n.mu.Lock()
	n.sent = append(n.sent, destination+"|"+channel+"|"+link)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

type fakeArchiver struct {
	objects map[uint][]byte
}

func (a *fakeArchiver) ArchiveSettlement(_ context.Context, contractID uint, doc []byte) (string, error) {
	if a.objects == nil {
		a.objects = make(map[uint][]byte)
	}
	a.objects[contractID] = doc
	return "settlement_test.json", nil
}

func newTestService(t *testing.T) (*Service, *MemoryStore, uint, uint, uint) {
	t.Helper()

	store := NewMemoryStore()
	contractID := store.AddContract(ds.Contract{
		BasePrice:    500000000,
		VehicleTitle: "Toyota Camry 2019",
		BuyerName:    "Иван Петров",
		BuyerEmail:   "buyer@example.com",
		BuyerPhone:   "+79001234567",
		SellerName:   "Сергей Смирнов",
		SellerEmail:  "seller@example.com",
	})
	fixedID := store.AddFee(ds.ServiceFee{Name: "Оформление договора", CalculationKind: ds.FeeKindFixed, Value: 2000000})
	percentID := store.AddFee(ds.ServiceFee{Name: "Комиссия площадки", CalculationKind: ds.FeeKindPercentage, Value: 1})

	svc := NewService(store, NewMemoryTokenStore(), nil, nil, "http://localhost:8080")
	return svc, store, contractID, fixedID, percentID
}

func TestSetAllocations(t *testing.T) {
	svc, _, contractID, fixedID, percentID := newTestService(t)
	ctx := context.Background()

	summary, allocations, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID, percentID})
	require.NoError(t, err)
	require.Len(t, allocations, 2)

	// 2 000 000 фиксированный + 1% от 500 000 000
	assert.Equal(t, int64(7000000), summary.BuyerFeeTotal)
	assert.Equal(t, int64(507000000), summary.FinalBuyerAmount)
	assert.Equal(t, int64(500000000), summary.FinalSellerAmount)
}

func TestSetAllocationsReplacesWholeSet(t *testing.T) {
	svc, _, contractID, fixedID, percentID := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID, percentID})
	require.NoError(t, err)

	// Повторный вызов с меньшим набором убирает прежние назначения
	summary, allocations, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID})
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, fixedID, allocations[0].ServiceFeeID)
	assert.Equal(t, int64(2000000), summary.BuyerFeeTotal)

	// Пустой набор очищает выбор стороны
	summary, allocations, err = svc.SetAllocations(ctx, contractID, ds.PartyBuyer, nil)
	require.NoError(t, err)
	assert.Empty(t, allocations)
	assert.Equal(t, int64(0), summary.BuyerFeeTotal)
}

func TestSetAllocationsIdempotent(t *testing.T) {
	svc, _, contractID, fixedID, percentID := newTestService(t)
	ctx := context.Background()

	first, _, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID, percentID})
	require.NoError(t, err)

	// Повторная отправка того же набора (и с дублями) даёт тот же итог
	second, allocations, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID, percentID, fixedID})
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.Equal(t, first, second)
}

func TestSetAllocationsUnknownFee(t *testing.T) {
	svc, store, contractID, fixedID, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID})
	require.NoError(t, err)

	// Неизвестный сбор в наборе не применяет ничего
	_, _, err = svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID, 9999})
	assert.ErrorIs(t, err, ErrUnknownFee)

	remaining, err := store.GetAllocations(ctx, contractID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, fixedID, remaining[0].ServiceFeeID)
}

func TestSetAllocationsPartiesIndependent(t *testing.T) {
	svc, _, contractID, fixedID, percentID := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID})
	require.NoError(t, err)
	_, _, err = svc.SetAllocations(ctx, contractID, ds.PartySeller, []uint{percentID})
	require.NoError(t, err)

	// Замена набора продавца не трогает покупателя
	summary, _, err := svc.SetAllocations(ctx, contractID, ds.PartySeller, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), summary.BuyerFeeTotal)
	assert.Equal(t, int64(0), summary.SellerFeeTotal)
}

func TestSetAllocationsUnknownContract(t *testing.T) {
	svc, _, _, fixedID, _ := newTestService(t)

	_, _, err := svc.SetAllocations(context.Background(), 9999, ds.PartyBuyer, []uint{fixedID})
	assert.ErrorIs(t, err, ErrUnknownContract)
}

func TestSelectionFreezesAmounts(t *testing.T) {
	svc, store, contractID, _, percentID := newTestService(t)
	ctx := context.Background()

	_, allocations, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{percentID})
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, int64(5000000), allocations[0].Amount)

	// Изменение каталога не влияет на уже назначенную сумму
	store.AddFee(ds.ServiceFee{ID: percentID, Name: "Комиссия площадки", CalculationKind: ds.FeeKindPercentage, Value: 2})

	summary, err := svc.ComputeSettlement(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000000), summary.BuyerFeeTotal)
}

func TestFinalize(t *testing.T) {
	svc, _, contractID, fixedID, percentID := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID, percentID})
	require.NoError(t, err)
	_, _, err = svc.SetAllocations(ctx, contractID, ds.PartySeller, []uint{fixedID})
	require.NoError(t, err)

	contract, record, err := svc.Finalize(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, ds.StatusCompleted, contract.Status)
	require.NotNil(t, contract.CompletedAt)

	assert.Equal(t, int64(7000000), record.BuyerFeeTotal)
	assert.Equal(t, int64(2000000), record.SellerFeeTotal)
	assert.Equal(t, int64(507000000), record.FinalBuyerAmount)
	assert.Equal(t, int64(498000000), record.FinalSellerAmount)
	assert.False(t, record.HasAnomaly)
}

func TestFinalizeTerminal(t *testing.T) {
	svc, _, contractID, fixedID, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Finalize(ctx, contractID)
	require.NoError(t, err)

	// Повторное завершение отклоняется
	_, _, err = svc.Finalize(ctx, contractID)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	// Изменение сборов после завершения отклоняется
	_, _, err = svc.SetAllocations(ctx, contractID, ds.PartyBuyer, []uint{fixedID})
	assert.ErrorIs(t, err, ErrContractFinalized)
}

func TestFinalizeSnapshotImmutable(t *testing.T) {
	svc, store, contractID, fixedID, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.SetAllocations(ctx, contractID, ds.PartySeller, []uint{fixedID})
	require.NoError(t, err)

	_, record, err := svc.Finalize(ctx, contractID)
	require.NoError(t, err)

	stored, err := store.GetSettlementRecord(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, record.FinalSellerAmount, stored.FinalSellerAmount)
	assert.Equal(t, record.BuyerFeeTotal, stored.BuyerFeeTotal)
}

func TestFinalizeArchivesSnapshot(t *testing.T) {
	store := NewMemoryStore()
	contractID := store.AddContract(ds.Contract{BasePrice: 1000000})
	archiver := &fakeArchiver{}
	svc := NewService(store, NewMemoryTokenStore(), nil, archiver, "http://localhost:8080")

	_, record, err := svc.Finalize(context.Background(), contractID)
	require.NoError(t, err)

	assert.Equal(t, "settlement_test.json", record.ArchiveObject)
	assert.Contains(t, string(archiver.objects[contractID]), "final_seller_amount")

	stored, err := store.GetSettlementRecord(context.Background(), contractID)
	require.NoError(t, err)
	assert.Equal(t, "settlement_test.json", stored.ArchiveObject)
}

func TestTokenFlow(t *testing.T) {
	svc, _, contractID, fixedID, percentID := newTestService(t)
	ctx := context.Background()

	token, err := svc.IssueToken(ctx, contractID, ds.PartyBuyer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	selection, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, contractID, selection.ContractID)
	assert.Equal(t, ds.PartyBuyer, selection.PartyRole)
	assert.Equal(t, "Иван Петров", selection.PartyName)
	assert.Equal(t, "Toyota Camry 2019", selection.VehicleTitle)
	assert.Empty(t, selection.SelectedFeeIDs)

	summary, err := svc.SubmitSelection(ctx, token, []uint{fixedID, percentID})
	require.NoError(t, err)
	assert.Equal(t, int64(7000000), summary.BuyerFeeTotal)

	// После отправки токен остаётся действительным, выбор виден
	selection, err = svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{fixedID, percentID}, selection.SelectedFeeIDs)
}

func TestTokenRotation(t *testing.T) {
	svc, _, contractID, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.IssueToken(ctx, contractID, ds.PartyBuyer)
	require.NoError(t, err)
	second, err := svc.IssueToken(ctx, contractID, ds.PartyBuyer)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Прежний токен действует до истечения TTL
	_, err = svc.ResolveToken(ctx, first)
	assert.NoError(t, err)
	_, err = svc.ResolveToken(ctx, second)
	assert.NoError(t, err)
}

func TestTokenInvalid(t *testing.T) {
	svc, _, contractID, fixedID, _ := newTestService(t)
	ctx := context.Background()

	t.Run("неизвестный токен", func(t *testing.T) {
		_, err := svc.ResolveToken(ctx, "no-such-token")
		assert.ErrorIs(t, err, ErrInvalidToken)

		_, err = svc.SubmitSelection(ctx, "no-such-token", []uint{fixedID})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("токен завершённого контракта", func(t *testing.T) {
		token, err := svc.IssueToken(ctx, contractID, ds.PartySeller)
		require.NoError(t, err)

		_, _, err = svc.Finalize(ctx, contractID)
		require.NoError(t, err)

		// Для стороны завершённый контракт неотличим от недействительного токена
		_, err = svc.ResolveToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)

		_, err = svc.SubmitSelection(ctx, token, []uint{fixedID})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("выпуск по завершённому контракту", func(t *testing.T) {
		_, err := svc.IssueToken(ctx, contractID, ds.PartyBuyer)
		assert.ErrorIs(t, err, ErrContractFinalized)
	})
}

func TestSendLink(t *testing.T) {
	store := NewMemoryStore()
	contractID := store.AddContract(ds.Contract{
		BasePrice:  1000000,
		BuyerEmail: "buyer@example.com",
		BuyerPhone: "+79001234567",
	})
	notifier := newFakeNotifier()
	svc := NewService(store, NewMemoryTokenStore(), notifier, nil, "http://localhost:8080")
	ctx := context.Background()

	link, err := svc.SendLink(ctx, contractID, ds.PartyBuyer, ds.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://localhost:8080/selection?"), link)
	assert.Contains(t, link, "token=")

	// Запрос отправки фиксируется независимо от доставки
	dispatches := store.Dispatches()
	require.Len(t, dispatches, 1)
	assert.Equal(t, ds.ChannelEmail, dispatches[0].Channel)
	assert.Equal(t, "buyer@example.com", dispatches[0].Destination)
	assert.Equal(t, link, dispatches[0].Link)

	<-notifier.done
	notifier.mu.Lock()
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "buyer@example.com|email|")
	notifier.mu.Unlock()

	// Токен из ссылки рабочий
	token := link[strings.Index(link, "token=")+len("token="):]
	selection, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, ds.PartyBuyer, selection.PartyRole)
}

func TestSendLinkSMS(t *testing.T) {
	store := NewMemoryStore()
	contractID := store.AddContract(ds.Contract{
		BasePrice:  1000000,
		BuyerPhone: "+79001234567",
	})
	svc := NewService(store, NewMemoryTokenStore(), nil, nil, "http://localhost:8080")

	_, err := svc.SendLink(context.Background(), contractID, ds.PartyBuyer, ds.ChannelSMS)
	require.NoError(t, err)

	dispatches := store.Dispatches()
	require.Len(t, dispatches, 1)
	assert.Equal(t, "+79001234567", dispatches[0].Destination)
}

func TestSendLinkNoDestination(t *testing.T) {
	store := NewMemoryStore()
	contractID := store.AddContract(ds.Contract{BasePrice: 1000000})
	svc := NewService(store, NewMemoryTokenStore(), nil, nil, "http://localhost:8080")

	_, err := svc.SendLink(context.Background(), contractID, ds.PartyBuyer, ds.ChannelEmail)
	assert.Error(t, err)
	assert.Empty(t, store.Dispatches())
}

func TestConcurrentSelections(t *testing.T) {
	svc, _, contractID, fixedID, percentID := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			party := ds.PartyBuyer
			ids := []uint{fixedID}
			if i%2 == 1 {
				party = ds.PartySeller
				ids = []uint{percentID}
			}
			_, _, err := svc.SetAllocations(ctx, contractID, party, ids)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Чередующиеся замены не смешивают наборы сторон
	buyer, seller, err := svc.GetAllocations(ctx, contractID)
	require.NoError(t, err)
	require.Len(t, buyer, 1)
	require.Len(t, seller, 1)
	assert.Equal(t, fixedID, buyer[0].ServiceFeeID)
	assert.Equal(t, percentID, seller[0].ServiceFeeID)
}
