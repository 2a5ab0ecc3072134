package settlement

import (
	"fmt"

	"autotrade/internal/app/ds"

	"github.com/shopspring/decimal"
)

// Итоговый расчёт по контракту. Производная величина - пересчитывается по
// запросу и нигде не хранится, кроме снимка при завершении контракта.
type Summary struct {
	BasePrice         int64 `json:"base_price"`
	BuyerFeeTotal     int64 `json:"buyer_fee_total"`
	SellerFeeTotal    int64 `json:"seller_fee_total"`
	FinalBuyerAmount  int64 `json:"final_buyer_amount"`
	FinalSellerAmount int64 `json:"final_seller_amount"`
	HasAnomaly        bool  `json:"has_anomaly"`
}

// ComputeFeeAmount рассчитывает конкретную сумму сбора для данной цены продажи.
// Процентные сборы округляются до целой денежной единицы по правилу
// "половина вверх" (decimal.Round) - единственное место округления денег.
func ComputeFeeAmount(fee ds.ServiceFee, basePrice int64) (int64, error) {
	if fee.Value < 0 {
		return 0, fmt.Errorf("%w: отрицательное значение у сбора %d", ErrInvalidFeeDefinition, fee.ID)
	}

	switch fee.CalculationKind {
	case ds.FeeKindFixed:
		return decimal.NewFromFloat(fee.Value).Round(0).IntPart(), nil
	case ds.FeeKindPercentage:
		if fee.Value > 100 {
			return 0, fmt.Errorf("%w: процент больше 100 у сбора %d", ErrInvalidFeeDefinition, fee.ID)
		}
		amount := decimal.NewFromInt(basePrice).
			Mul(decimal.NewFromFloat(fee.Value)).
			Div(decimal.NewFromInt(100)).
			Round(0)
		return amount.IntPart(), nil
	default:
		return 0, fmt.Errorf("%w: неизвестный способ расчёта %q", ErrInvalidFeeDefinition, fee.CalculationKind)
	}
}

// BuildSummary агрегирует текущие назначения контракта в итоговый расчёт.
// Суммы берутся из назначений как зафиксированы, без пересчёта по каталогу.
func BuildSummary(basePrice int64, allocations []ds.FeeAllocation) Summary {
	var buyerTotal, sellerTotal int64
	for _, a := range allocations {
		switch a.PartyRole {
		case ds.PartyBuyer:
			buyerTotal += a.Amount
		case ds.PartySeller:
			sellerTotal += a.Amount
		}
	}

	finalSeller := basePrice - sellerTotal

	return Summary{
		BasePrice:         basePrice,
		BuyerFeeTotal:     buyerTotal,
		SellerFeeTotal:    sellerTotal,
		FinalBuyerAmount:  basePrice + buyerTotal,
		FinalSellerAmount: finalSeller,
		// Сборы продавца превысили цену продажи - не обрезаем, а помечаем
		HasAnomaly: finalSeller < 0,
	}
}
