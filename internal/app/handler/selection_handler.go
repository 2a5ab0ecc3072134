package handler

import (
	"net/http"

	"autotrade/internal/app/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН ВЫБОР СБОРОВ (публичные эндпоинты по токену) ============

// GetSelectionView возвращает страницу выбора сборов по токену
// @Summary Просмотр выбора сборов
// @Description Разрешает токен из ссылки и возвращает данные контракта, текущий выбор стороны и каталог доступных сборов. Недействительный, истёкший или относящийся к завершённому контракту токен возвращает 404 без уточнения причины
// @Tags Selection
// @Produce json
// @Param token query string true "Токен доступа из ссылки"
// @Success 200 {object} dto.SelectionViewResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/selection [get]
func (h *APIHandler) GetSelectionView(c *gin.Context) {
	token := c.Query("token")

	selection, err := h.Settlement.ResolveToken(c.Request.Context(), token)
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	fees, err := h.Repository.GetAllFees()
	if err != nil {
		logrus.Error("Error getting fees for selection view: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения списка сборов")
		return
	}

	dtoFees := make([]dto.FeeResponse, len(fees))
	for i := range fees {
		dtoFees[i] = feeToDTO(fees[i])
	}

	c.JSON(http.StatusOK, dto.SelectionViewResponse{
		ContractID:         selection.ContractID,
		PartyRole:          string(selection.PartyRole),
		PartyName:          selection.PartyName,
		VehicleTitle:       selection.VehicleTitle,
		VehicleDescription: selection.VehicleDescription,
		BasePrice:          selection.BasePrice,
		SelectedFeeIDs:     selection.SelectedFeeIDs,
		Fees:               dtoFees,
	})
}

// SubmitSelection сохраняет выбор сборов стороны
// @Summary Сохранение выбора сборов
// @Description Атомарно заменяет набор сборов стороны, привязанной к токену. Повторная отправка того же набора безопасна
// @Tags Selection
// @Accept json
// @Produce json
// @Param request body dto.SubmitSelectionRequest true "Токен и выбранные сборы"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/selection [put]
func (h *APIHandler) SubmitSelection(c *gin.Context) {
	var req dto.SubmitSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	summary, err := h.Settlement.SubmitSelection(c.Request.Context(), req.Token, req.FeeIDs)
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Выбор сохранен", dto.SettlementSummary{
		BasePrice:         summary.BasePrice,
		BuyerFeeTotal:     summary.BuyerFeeTotal,
		SellerFeeTotal:    summary.SellerFeeTotal,
		FinalBuyerAmount:  summary.FinalBuyerAmount,
		FinalSellerAmount: summary.FinalSellerAmount,
		HasAnomaly:        summary.HasAnomaly,
	})
}
