package handler

import (
	"net/http"
	"strconv"

	"autotrade/internal/app/ds"
	"autotrade/internal/app/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН КАТАЛОГ СБОРОВ ============

func feeToDTO(fee ds.ServiceFee) dto.FeeResponse {
	return dto.FeeResponse{
		ID:              fee.ID,
		Name:            fee.Name,
		Description:     fee.Description,
		CalculationKind: fee.CalculationKind,
		Value:           fee.Value,
	}
}

// GetFees получает каталог сборов
// @Summary Получение каталога сборов
// @Description Возвращает список сервисных сборов с возможностью поиска по названию
// @Tags Fees
// @Produce json
// @Param query query string false "Поиск по названию сбора"
// @Success 200 {object} dto.FeeListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/fees [get]
func (h *APIHandler) GetFees(c *gin.Context) {
	searchQuery := c.Query("query")

	var fees []ds.ServiceFee
	var err error

	if searchQuery == "" {
		fees, err = h.Repository.GetAllFees()
	} else {
		fees, err = h.Repository.SearchFeesByName(searchQuery)
	}

	if err != nil {
		logrus.Error("Error getting fees: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения каталога сборов")
		return
	}

	dtoFees := make([]dto.FeeResponse, len(fees))
	for i, fee := range fees {
		dtoFees[i] = feeToDTO(fee)
	}

	c.JSON(http.StatusOK, dto.FeeListResponse{
		Fees:  dtoFees,
		Total: len(dtoFees),
	})
}

// GetFee получает один сбор
// @Summary Получение сбора по ID
// @Description Возвращает детальную информацию о сборе
// @Tags Fees
// @Produce json
// @Param id path int true "ID сбора"
// @Success 200 {object} dto.FeeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/fees/{id} [get]
func (h *APIHandler) GetFee(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сбора")
		return
	}

	fee, err := h.Repository.GetFeeByID(uint(id))
	if err != nil || fee == nil {
		h.errorResponse(c, http.StatusNotFound, "Сбор не найден")
		return
	}

	c.JSON(http.StatusOK, feeToDTO(*fee))
}

// CreateFee создает новый сбор в каталоге
// @Summary Создание сбора
// @Description Создает новый сервисный сбор (только для администраторов)
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFeeRequest true "Данные сбора"
// @Success 201 {object} dto.FeeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/fees [post]
func (h *APIHandler) CreateFee(c *gin.Context) {
	var req dto.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	if req.CalculationKind == ds.FeeKindPercentage && req.Value > 100 {
		h.errorResponse(c, http.StatusBadRequest, "Процентный сбор не может превышать 100")
		return
	}

	fee, err := h.Repository.CreateFee(req.Name, req.Description, req.CalculationKind, req.Value)
	if err != nil {
		logrus.Error("Error creating fee: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания сбора")
		return
	}

	c.JSON(http.StatusCreated, feeToDTO(*fee))
}

// UpdateFee обновляет сбор
// @Summary Обновление сбора
// @Description Обновляет данные сбора; зафиксированные назначения не пересчитываются (только для администраторов)
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сбора"
// @Param request body dto.UpdateFeeRequest true "Данные для обновления"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/fees/{id} [put]
func (h *APIHandler) UpdateFee(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сбора")
		return
	}

	var req dto.UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	// Подготавливаем указатели на поля
	var name, description, calculationKind *string
	var value *float64

	if req.Name != "" {
		name = &req.Name
	}
	if req.Description != "" {
		description = &req.Description
	}
	if req.CalculationKind != "" {
		calculationKind = &req.CalculationKind
	}
	if req.Value > 0 {
		value = &req.Value
	}

	err = h.Repository.UpdateFee(uint(id), name, description, calculationKind, value)
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Сбор успешно обновлен", nil)
}

// DeleteFee удаляет сбор из каталога
// @Summary Удаление сбора
// @Description Логически удаляет сбор из каталога; существующие назначения сохраняют зафиксированные суммы (только для администраторов)
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сбора"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/fees/{id} [delete]
func (h *APIHandler) DeleteFee(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сбора")
		return
	}

	err = h.Repository.DeleteFee(uint(id))
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Сбор успешно удален", nil)
}
