package main

import (
	"log"

	"autotrade/internal/app/ds"
	"autotrade/internal/app/dsn"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Стартовый каталог сборов сервиса перепродажи
var defaultFees = []ds.ServiceFee{
	{Name: "Оформление договора", Description: "Подготовка и юридическое сопровождение договора купли-продажи", CalculationKind: ds.FeeKindFixed, Value: 2000000},
	{Name: "Комиссия площадки", Description: "Комиссия сервиса за сопровождение сделки", CalculationKind: ds.FeeKindPercentage, Value: 1},
	{Name: "Проверка истории автомобиля", Description: "Проверка юридической чистоты и истории эксплуатации", CalculationKind: ds.FeeKindFixed, Value: 1500000},
	{Name: "Техническая диагностика", Description: "Осмотр и диагностика автомобиля перед продажей", CalculationKind: ds.FeeKindFixed, Value: 3000000},
	{Name: "Предпродажная подготовка", Description: "Мойка, полировка и детейлинг", CalculationKind: ds.FeeKindPercentage, Value: 0.5},
}

func main() {
	// Загрузка переменных окружения из .env файла
	_ = godotenv.Load()

	// Получение DSN строки подключения
	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		log.Fatal("DSN string is empty. Check your .env file")
	}

	// Подключение к базе данных
	db, err := gorm.Open(postgres.Open(dsnStr), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database successfully")

	// Миграция всех моделей
	err = db.AutoMigrate(
		&ds.User{},
		&ds.ServiceFee{},
		&ds.Contract{},
		&ds.FeeAllocation{},
		&ds.SettlementRecord{},
		&ds.LinkDispatch{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migration completed successfully")

	// Заполнение каталога сборов при пустой таблице
	var count int64
	if err := db.Model(&ds.ServiceFee{}).Count(&count).Error; err != nil {
		log.Fatalf("Failed to count fees: %v", err)
	}

	if count == 0 {
		if err := db.Create(&defaultFees).Error; err != nil {
			log.Fatalf("Failed to seed fee catalog: %v", err)
		}
		log.Printf("Seeded fee catalog with %d fees", len(defaultFees))
	} else {
		log.Println("Fee catalog already populated, skipping seed")
	}
}
