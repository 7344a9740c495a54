package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/Ehud-Guzman/granite-sms-sub001/internals/configs"
	database "github.com/Ehud-Guzman/granite-sms-sub001/internals/databases"
	"github.com/Ehud-Guzman/granite-sms-sub001/internals/middlewares"
	"github.com/Ehud-Guzman/granite-sms-sub001/internals/route"

	feeModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/model"
	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	payModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/model"
	schoolModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/school/model"
)

func main() {
	configs.LoadEnv()

	database.ConnectDB()
	database.TunePool()
	if err := database.Ping(); err != nil {
		log.Fatalf("[ERROR] DB ping failed: %v", err)
	}

	if configs.GetEnv("DB_AUTOMIGRATE", "true") == "true" {
		if err := database.DB.AutoMigrate(
			&schoolModel.School{},
			&schoolModel.Class{},
			&schoolModel.Student{},
			&feeModel.FeeItem{},
			&feeModel.FeePlan{},
			&feeModel.FeePlanItem{},
			&invModel.Invoice{},
			&invModel.InvoiceLine{},
			&payModel.Payment{},
		); err != nil {
			log.Fatalf("[ERROR] automigrate failed: %v", err)
		}
		log.Println("[INFO] automigrate done")
	}

	app := fiber.New(fiber.Config{
		AppName:               "granite-sms fee ledger",
		DisableStartupMessage: configs.AppEnv == "production",
	})

	app.Use(middlewares.RecoveryMiddleware())
	app.Use(middlewares.CorsMiddleware())
	app.Use(middlewares.GlobalRateLimiter())

	route.SetupRoutes(app, database.DB)

	port := configs.GetEnv("PORT", "3000")

	// graceful shutdown
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("[INFO] shutting down...")
		_ = app.Shutdown()
	}()

	log.Printf("[INFO] listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("[ERROR] server stopped: %v", err)
	}
}
