package handler

import (
	"autotrade/internal/app/middleware"
	"autotrade/internal/app/role"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все REST API маршруты с авторизацией
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	// REST API маршруты
	api := router.Group("/api")

	// ============ Сборы (Fees) - публичное чтение, управление для администраторов ============
	fees := api.Group("/fees")
	{
		// Публичные эндпоинты (без авторизации)
		fees.GET("", h.GetFees)    // GET список с фильтрацией
		fees.GET("/:id", h.GetFee) // GET одна запись

		// Только для администраторов (управление каталогом)
		fees.POST("", authMiddleware.WithAuthCheck(role.Admin), h.CreateFee)       // POST создание
		fees.PUT("/:id", authMiddleware.WithAuthCheck(role.Admin), h.UpdateFee)    // PUT изменение
		fees.DELETE("/:id", authMiddleware.WithAuthCheck(role.Admin), h.DeleteFee) // DELETE удаление
	}

	// ============ Контракты (Contracts) - для сотрудников ============
	contracts := api.Group("/contracts")
	contracts.Use(authMiddleware.WithAuthCheck(role.Manager, role.Admin))
	{
		contracts.POST("", h.CreateContract)                          // POST создание
		contracts.GET("", h.GetContracts)                             // GET список с фильтрацией
		contracts.GET("/:id", h.GetContract)                          // GET контракт с расчётом
		contracts.PUT("/:id/allocations", h.SetContractAllocations)   // PUT замена набора сборов стороны
		contracts.POST("/:id/send-link", h.SendSelectionLink)         // POST отправка ссылки стороне
		contracts.GET("/:id/dispatches", h.GetLinkDispatches)         // GET история отправок ссылок
		contracts.PUT("/:id/finalize", h.FinalizeContract)            // PUT завершение контракта
	}

	// ============ Выбор сборов (Selection) - публичные эндпоинты по токену ============
	selection := api.Group("/selection")
	{
		selection.GET("", h.GetSelectionView)  // GET страница выбора по токену
		selection.PUT("", h.SubmitSelection)   // PUT сохранение выбора
	}

	// ============ Аутентификация ============
	auth := api.Group("/auth")
	{
		// Публичные эндпоинты
		auth.POST("/register", h.AuthHandler.RegisterUser) // POST регистрация
		auth.POST("/login", h.AuthHandler.LoginUser)       // POST аутентификация JWT

		// Защищенные эндпоинты
		auth.GET("/profile", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.AuthHandler.GetUserProfile)
		auth.PUT("/profile", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.AuthHandler.UpdateUserProfile)
		auth.POST("/logout", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.AuthHandler.LogoutUser)
	}

	// Ping эндпоинт для проверки
	router.GET("/ping", h.Ping)
}
