package handler

import (
	"net/http"
	"strconv"
	"time"

	"autotrade/internal/app/ds"
	"autotrade/internal/app/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН КОНТРАКТЫ ============

func contractToDTO(contract *ds.Contract) dto.ContractResponse {
	creator := "unknown"
	if contract.Creator.Login != "" {
		creator = contract.Creator.Login
	}

	return dto.ContractResponse{
		ID:                 contract.ID,
		Status:             contract.Status,
		CreatedAt:          contract.CreatedAt,
		CompletedAt:        contract.CompletedAt,
		Creator:            creator,
		BasePrice:          contract.BasePrice,
		VehicleTitle:       contract.VehicleTitle,
		VehicleDescription: contract.VehicleDescription,
		Buyer: dto.PartyInfo{
			Name:    contract.BuyerName,
			Phone:   contract.BuyerPhone,
			Email:   contract.BuyerEmail,
			Address: contract.BuyerAddress,
		},
		Seller: dto.PartyInfo{
			Name:    contract.SellerName,
			Phone:   contract.SellerPhone,
			Email:   contract.SellerEmail,
			Address: contract.SellerAddress,
		},
	}
}

func allocationsToDTO(allocations []ds.FeeAllocation) []dto.AllocationResponse {
	out := make([]dto.AllocationResponse, len(allocations))
	for i, a := range allocations {
		out[i] = dto.AllocationResponse{
			ServiceFeeID: a.ServiceFeeID,
			FeeName:      a.ServiceFee.Name,
			Amount:       a.Amount,
		}
	}
	return out
}

// CreateContract создает новый контракт
// @Summary Создание контракта
// @Description Создает контракт перепродажи в статусе "открыт" с данными сторон
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateContractRequest true "Данные контракта"
// @Success 201 {object} dto.ContractResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/contracts [post]
func (h *APIHandler) CreateContract(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var req dto.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	contract := ds.Contract{
		CreatorID:          userID,
		BasePrice:          req.BasePrice,
		VehicleTitle:       req.VehicleTitle,
		VehicleDescription: req.VehicleDescription,
		BuyerName:          req.Buyer.Name,
		BuyerPhone:         req.Buyer.Phone,
		BuyerEmail:         req.Buyer.Email,
		BuyerAddress:       req.Buyer.Address,
		SellerName:         req.Seller.Name,
		SellerPhone:        req.Seller.Phone,
		SellerEmail:        req.Seller.Email,
		SellerAddress:      req.Seller.Address,
	}

	if err := h.Repository.CreateContract(&contract); err != nil {
		logrus.Error("Error creating contract: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания контракта")
		return
	}

	c.JSON(http.StatusCreated, contractToDTO(&contract))
}

// GetContracts получает список контрактов
// @Summary Получение списка контрактов
// @Description Возвращает список контрактов с возможностью фильтрации по статусу и датам
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу"
// @Param date_from query string false "Дата начала (формат: 2006-01-02)"
// @Param date_to query string false "Дата окончания (формат: 2006-01-02)"
// @Success 200 {object} dto.ContractListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/contracts [get]
func (h *APIHandler) GetContracts(c *gin.Context) {
	status := c.Query("status")
	dateFromStr := c.Query("date_from")
	dateToStr := c.Query("date_to")

	var dateFrom, dateTo *time.Time

	if dateFromStr != "" {
		if parsed, err := time.Parse("2006-01-02", dateFromStr); err == nil {
			dateFrom = &parsed
		}
	}

	if dateToStr != "" {
		if parsed, err := time.Parse("2006-01-02", dateToStr); err == nil {
			dateTo = &parsed
		}
	}

	contracts, err := h.Repository.GetContracts(status, dateFrom, dateTo)
	if err != nil {
		logrus.Error("Error getting contracts: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения контрактов")
		return
	}

	dtoContracts := make([]dto.ContractResponse, len(contracts))
	for i := range contracts {
		dtoContracts[i] = contractToDTO(&contracts[i])
	}

	c.JSON(http.StatusOK, dto.ContractListResponse{
		Contracts: dtoContracts,
		Total:     len(dtoContracts),
	})
}

// GetContract получает один контракт
// @Summary Получение контракта по ID
// @Description Возвращает контракт с назначениями сборов по сторонам и итоговым расчётом. Для открытого контракта расчёт - живой предпросмотр, для завершённого дополнительно возвращается сохранённый снимок
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID контракта"
// @Success 200 {object} dto.ContractResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/contracts/{id} [get]
func (h *APIHandler) GetContract(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID контракта")
		return
	}

	contract, err := h.Repository.GetContract(c.Request.Context(), uint(id))
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	buyer, seller, err := h.Settlement.GetAllocations(c.Request.Context(), uint(id))
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	summary, err := h.Settlement.ComputeSettlement(c.Request.Context(), uint(id))
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	response := contractToDTO(contract)
	response.BuyerAllocations = allocationsToDTO(buyer)
	response.SellerAllocations = allocationsToDTO(seller)
	response.Settlement = &dto.SettlementSummary{
		BasePrice:         summary.BasePrice,
		BuyerFeeTotal:     summary.BuyerFeeTotal,
		SellerFeeTotal:    summary.SellerFeeTotal,
		FinalBuyerAmount:  summary.FinalBuyerAmount,
		FinalSellerAmount: summary.FinalSellerAmount,
		HasAnomaly:        summary.HasAnomaly,
	}

	// Для завершённого контракта авторитетен сохранённый снимок
	if contract.Status == ds.StatusCompleted {
		record, err := h.Repository.GetSettlementRecord(c.Request.Context(), uint(id))
		if err == nil {
			dtoRecord := &dto.SettlementRecord{
				BuyerFeeTotal:     record.BuyerFeeTotal,
				SellerFeeTotal:    record.SellerFeeTotal,
				FinalBuyerAmount:  record.FinalBuyerAmount,
				FinalSellerAmount: record.FinalSellerAmount,
				HasAnomaly:        record.HasAnomaly,
				CreatedAt:         record.CreatedAt,
			}
			if record.ArchiveObject != "" && h.MinIOClient != nil {
				if url, err := h.MinIOClient.GetFileURL(record.ArchiveObject); err == nil {
					dtoRecord.ArchiveURL = url
				} else {
					logrus.Warnf("Failed to presign archive %s: %v", record.ArchiveObject, err)
				}
			}
			response.SettlementRecord = dtoRecord
		}
	}

	c.JSON(http.StatusOK, response)
}

// SetContractAllocations назначает сборы стороне контракта
// @Summary Назначение сборов стороне
// @Description Атомарно заменяет набор сборов стороны контракта (прямое назначение сотрудником)
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID контракта"
// @Param request body dto.SetAllocationsRequest true "Сторона и список сборов"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/contracts/{id}/allocations [put]
func (h *APIHandler) SetContractAllocations(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID контракта")
		return
	}

	var req dto.SetAllocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	summary, allocations, err := h.Settlement.SetAllocations(c.Request.Context(), uint(id), ds.PartyRole(req.PartyRole), req.FeeIDs)
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Сборы назначены", gin.H{
		"allocations": allocationsToDTO(allocations),
		"settlement": dto.SettlementSummary{
			BasePrice:         summary.BasePrice,
			BuyerFeeTotal:     summary.BuyerFeeTotal,
			SellerFeeTotal:    summary.SellerFeeTotal,
			FinalBuyerAmount:  summary.FinalBuyerAmount,
			FinalSellerAmount: summary.FinalSellerAmount,
			HasAnomaly:        summary.HasAnomaly,
		},
	})
}

// SendSelectionLink отправляет стороне ссылку на выбор сборов
// @Summary Отправка ссылки выбора сборов
// @Description Выпускает токен доступа и запрашивает отправку ссылки стороне контракта через внешний шлюз (email/sms). Доставка не ожидается
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID контракта"
// @Param request body dto.SendLinkRequest true "Сторона и канал доставки"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/contracts/{id}/send-link [post]
func (h *APIHandler) SendSelectionLink(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID контракта")
		return
	}

	var req dto.SendLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	link, err := h.Settlement.SendLink(c.Request.Context(), uint(id), ds.PartyRole(req.PartyRole), req.Channel)
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Ссылка отправлена", dto.SendLinkResponse{Link: link})
}

// GetLinkDispatches возвращает историю отправок ссылок по контракту
// @Summary История отправок ссылок
// @Description Возвращает зафиксированные запросы на отправку ссылок выбора сборов по контракту. Сами токены не раскрываются
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID контракта"
// @Success 200 {object} dto.LinkDispatchListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/contracts/{id}/dispatches [get]
func (h *APIHandler) GetLinkDispatches(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID контракта")
		return
	}

	if _, err := h.Repository.GetContract(c.Request.Context(), uint(id)); err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	dispatches, err := h.Repository.GetLinkDispatches(uint(id))
	if err != nil {
		logrus.Error("Error getting link dispatches: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения истории отправок")
		return
	}

	dtoDispatches := make([]dto.LinkDispatchResponse, len(dispatches))
	for i, d := range dispatches {
		dtoDispatches[i] = dto.LinkDispatchResponse{
			PartyRole:   string(d.PartyRole),
			Channel:     d.Channel,
			Destination: d.Destination,
			RequestedAt: d.RequestedAt,
		}
	}

	c.JSON(http.StatusOK, dto.LinkDispatchListResponse{
		Dispatches: dtoDispatches,
		Total:      len(dtoDispatches),
	})
}

// FinalizeContract завершает контракт
// @Summary Завершение контракта
// @Description Необратимо фиксирует итоговый расчёт и переводит контракт в статус "завершён". Повторный вызов возвращает 409
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID контракта"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/contracts/{id}/finalize [put]
func (h *APIHandler) FinalizeContract(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID контракта")
		return
	}

	contract, record, err := h.Settlement.Finalize(c.Request.Context(), uint(id))
	if err != nil {
		h.domainErrorResponse(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Контракт успешно завершен", gin.H{
		"contract_id":  contract.ID,
		"status":       contract.Status,
		"completed_at": contract.CompletedAt,
		"settlement_record": dto.SettlementRecord{
			BuyerFeeTotal:     record.BuyerFeeTotal,
			SellerFeeTotal:    record.SellerFeeTotal,
			FinalBuyerAmount:  record.FinalBuyerAmount,
			FinalSellerAmount: record.FinalSellerAmount,
			HasAnomaly:        record.HasAnomaly,
			CreatedAt:         record.CreatedAt,
		},
	})
}
