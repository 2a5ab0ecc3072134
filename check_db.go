package main

import (
	"fmt"
	"log"

	"autotrade/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := "host=localhost user=postgres password=password dbname=autotrade_db port=5432 sslmode=disable TimeZone=Europe/Moscow"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var fees []ds.ServiceFee
	err = db.Where("is_deleted = ?", false).Find(&fees).Error
	if err != nil {
		log.Fatal("Failed to get fees:", err)
	}

	fmt.Println("Fees in database:")
	for _, fee := range fees {
		fmt.Printf("ID: %d, Name: %s, Kind: %s, Value: %v\n", fee.ID, fee.Name, fee.CalculationKind, fee.Value)
	}
}
