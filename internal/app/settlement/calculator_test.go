package settlement

import (
	"testing"

	"autotrade/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFeeAmountFixed(t *testing.T) {
	fee := ds.ServiceFee{ID: 1, Name: "Оформление договора", CalculationKind: ds.FeeKindFixed, Value: 2000000}

	amount, err := ComputeFeeAmount(fee, 500000000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), amount)

	// Фиксированный сбор не зависит от цены продажи
	amount, err = ComputeFeeAmount(fee, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), amount)
}

func TestComputeFeeAmountPercentage(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		basePrice int64
		want      int64
	}{
		{"один процент", 1, 500000000, 5000000},
		{"половина процента", 0.5, 500000000, 2500000},
		{"округление вверх от половины", 0.5, 101, 1},     // 0.505 -> 1
		{"округление вниз до половины", 0.4, 101, 0},      // 0.404 -> 0
		{"сто процентов", 100, 500000000, 500000000},
		{"ноль процентов", 0, 500000000, 0},
		{"нулевая цена", 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := ds.ServiceFee{ID: 2, CalculationKind: ds.FeeKindPercentage, Value: tt.value}
			amount, err := ComputeFeeAmount(fee, tt.basePrice)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount)
		})
	}
}

func TestComputeFeeAmountInvalid(t *testing.T) {
	t.Run("отрицательное значение", func(t *testing.T) {
		fee := ds.ServiceFee{ID: 3, CalculationKind: ds.FeeKindFixed, Value: -100}
		_, err := ComputeFeeAmount(fee, 500000000)
		assert.ErrorIs(t, err, ErrInvalidFeeDefinition)
	})

	t.Run("процент больше ста", func(t *testing.T) {
		fee := ds.ServiceFee{ID: 4, CalculationKind: ds.FeeKindPercentage, Value: 105}
		_, err := ComputeFeeAmount(fee, 500000000)
		assert.ErrorIs(t, err, ErrInvalidFeeDefinition)
	})

	t.Run("неизвестный способ расчёта", func(t *testing.T) {
		fee := ds.ServiceFee{ID: 5, CalculationKind: "lunar", Value: 1}
		_, err := ComputeFeeAmount(fee, 500000000)
		assert.ErrorIs(t, err, ErrInvalidFeeDefinition)
	})
}

func TestBuildSummary(t *testing.T) {
	basePrice := int64(500000000)
	allocations := []ds.FeeAllocation{
		{PartyRole: ds.PartyBuyer, ServiceFeeID: 1, Amount: 2000000},
		{PartyRole: ds.PartyBuyer, ServiceFeeID: 2, Amount: 5000000},
		{PartyRole: ds.PartySeller, ServiceFeeID: 3, Amount: 1500000},
	}

	summary := BuildSummary(basePrice, allocations)

	assert.Equal(t, int64(7000000), summary.BuyerFeeTotal)
	assert.Equal(t, int64(1500000), summary.SellerFeeTotal)
	assert.Equal(t, int64(507000000), summary.FinalBuyerAmount)
	assert.Equal(t, int64(498500000), summary.FinalSellerAmount)
	assert.False(t, summary.HasAnomaly)
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := BuildSummary(500000000, nil)

	assert.Equal(t, int64(0), summary.BuyerFeeTotal)
	assert.Equal(t, int64(0), summary.SellerFeeTotal)
	assert.Equal(t, int64(500000000), summary.FinalBuyerAmount)
	assert.Equal(t, int64(500000000), summary.FinalSellerAmount)
	assert.False(t, summary.HasAnomaly)
}

func TestBuildSummaryAnomaly(t *testing.T) {
	// Сборы продавца превышают цену продажи: сумма уходит в минус,
	// итог не обрезается, а помечается аномальным
	allocations := []ds.FeeAllocation{
		{PartyRole: ds.PartySeller, ServiceFeeID: 1, Amount: 120},
	}

	summary := BuildSummary(100, allocations)

	assert.Equal(t, int64(-20), summary.FinalSellerAmount)
	assert.True(t, summary.HasAnomaly)

	// Покупателя аномалия не касается
	assert.Equal(t, int64(100), summary.FinalBuyerAmount)
}
