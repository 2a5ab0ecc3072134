package handler

import (
	"errors"
	"fmt"
	"net/http"

	"autotrade/internal/app/dto"
	"autotrade/internal/app/repository"
	"autotrade/internal/app/role"
	"autotrade/internal/app/settlement"
	"autotrade/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIHandler содержит обработчики для REST API
type APIHandler struct {
	Repository  *repository.Repository
	Settlement  *settlement.Service
	MinIOClient *storage.MinIOClient
	AuthHandler *AuthHandler
}

func NewAPIHandler(r *repository.Repository, s *settlement.Service, minioClient *storage.MinIOClient, authHandler *AuthHandler) *APIHandler {
	return &APIHandler{
		Repository:  r,
		Settlement:  s,
		MinIOClient: minioClient,
		AuthHandler: authHandler,
	}
}

// Получение текущего пользователя из контекста
func (h *APIHandler) getUserFromContext(c *gin.Context) (uint, role.Role, error) {
	userID, exists := c.Get("userID")
	if !exists {
		logrus.Warn("userID not found in context")
		return 0, role.Manager, fmt.Errorf("user not authenticated")
	}

	userRole, _ := c.Get("userRole")
	r, _ := userRole.(role.Role)

	id, ok := userID.(uint)
	if !ok {
		logrus.Errorf("getUserFromContext: invalid userID type: %T", userID)
		return 0, r, fmt.Errorf("invalid user ID")
	}

	return id, r, nil
}

// ============ Вспомогательные функции ============

func (h *APIHandler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func (h *APIHandler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// domainErrorResponse переводит ошибки предусловий в HTTP статусы.
// Все они исправимы вызывающей стороной и не скрываются
func (h *APIHandler) domainErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, settlement.ErrUnknownContract):
		h.errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, settlement.ErrUnknownFee),
		errors.Is(err, settlement.ErrInvalidFeeDefinition):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, settlement.ErrContractFinalized),
		errors.Is(err, settlement.ErrAlreadyFinalized):
		h.errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, settlement.ErrInvalidToken):
		// Причина отказа по токену не раскрывается
		h.errorResponse(c, http.StatusNotFound, settlement.ErrInvalidToken.Error())
	default:
		logrus.Error("internal error: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}

// Ping проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Возвращает простой ответ для проверки работы сервера
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"message": "pong"})
}
