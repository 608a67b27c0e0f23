// main.go
//
// Supplier quality management portal data service
// Copyright (c) 2026 SQM Works <oss@sqmworks.dev>
//
// This file is part of supplier-portal.
// supplier-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// supplier-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with supplier-portal.
// If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/sqmworks/supplier-portal/data"
	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/config"
	"github.com/sqmworks/supplier-portal/internal/database"
	"github.com/sqmworks/supplier-portal/internal/handlers"
	"github.com/sqmworks/supplier-portal/internal/middleware"
	"github.com/sqmworks/supplier-portal/internal/services"

	_ "github.com/sqmworks/supplier-portal/docs/api" // Swagger docs
)

// @title Supplier Portal API
// @version 1.0.0
// @description Go Fiber data service for supplier quality management
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/sqmworks/supplier-portal
// @contact.email oss@sqmworks.dev

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the baseline supplier records
	if seeded, err := services.SeedSuppliers(db, data.SeedSuppliersCSV); err != nil {
		log.Fatalf("Failed to seed suppliers: %v", err)
	} else if seeded > 0 {
		log.Printf("Seeded %d suppliers", seeded)
	}

	// Attachment store rooted at the upload directory
	store := attachment.NewStore(cfg)
	log.Printf("Attachment store at %s", store.Root())

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("supplier-portal")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db}
	app.Get("/healthz", healthHandler.Healthz)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	supplierHandler := &handlers.SupplierHandler{DB: db}
	partHandler := &handlers.PartHandler{DB: db, Store: store}
	trHandler := &handlers.TroubleReportHandler{DB: db, Store: store}
	auditHandler := &handlers.AuditHandler{DB: db, Store: store}
	tripHandler := &handlers.TripHandler{DB: db, Store: store}
	taskHandler := &handlers.TaskHandler{DB: db, Store: store}
	libraryHandler := &handlers.LibraryHandler{DB: db, Store: store}
	knowledgeHandler := &handlers.KnowledgeHandler{DB: db}

	// Supplier routes
	api.Get("/suppliers", supplierHandler.ListSuppliers)
	api.Post("/suppliers", supplierHandler.CreateSupplier)
	api.Post("/suppliers/import", supplierHandler.ImportSuppliers)
	api.Get("/suppliers/:id", supplierHandler.GetSupplier)
	api.Put("/suppliers/:id", supplierHandler.UpdateSupplier)

	// Part and drawing routes
	api.Get("/suppliers/:id/parts", partHandler.ListParts)
	api.Post("/suppliers/:id/parts", partHandler.CreatePart)
	api.Put("/suppliers/:id/parts/:partId", partHandler.UpdatePart)
	api.Delete("/suppliers/:id/parts/:partId", partHandler.DeletePart)
	api.Get("/suppliers/:id/parts/:partId/drawings", partHandler.ListDrawings)
	api.Post("/suppliers/:id/parts/:partId/drawings", partHandler.UploadDrawing)
	api.Get("/suppliers/:id/parts/:partId/drawings/:drawingId/view", partHandler.ViewDrawing)
	api.Get("/suppliers/:id/parts/:partId/drawings/:drawingId/download", partHandler.DownloadDrawing)
	api.Delete("/suppliers/:id/parts/:partId/drawings/:drawingId", partHandler.DeleteDrawing)

	// Trouble report routes
	api.Get("/trouble-reports", trHandler.ListTroubleReports)
	api.Post("/trouble-reports", trHandler.CreateTroubleReport)
	api.Get("/trouble-reports/:id", trHandler.GetTroubleReport)
	api.Put("/trouble-reports/:id", trHandler.UpdateTroubleReport)
	api.Delete("/trouble-reports/:id", trHandler.DeleteTroubleReport)
	api.Post("/trouble-reports/:id/documents", trHandler.UploadTRDocument)
	api.Get("/trouble-reports/:id/documents/:docId/view", trHandler.ViewTRDocument)
	api.Get("/trouble-reports/:id/documents/:docId/download", trHandler.DownloadTRDocument)
	api.Delete("/trouble-reports/:id/documents/:docId", trHandler.DeleteTRDocument)

	// Audit routes
	api.Get("/audits", auditHandler.ListAuditReports)
	api.Post("/audits", auditHandler.UploadAuditReport)
	api.Put("/audits/findings/:findingId", auditHandler.UpdateFinding)
	api.Get("/audits/findings/:findingId/progress", auditHandler.ListFindingProgress)
	api.Get("/audits/:id", auditHandler.GetAuditReport)
	api.Get("/audits/:id/download", auditHandler.DownloadAuditReport)
	api.Delete("/audits/:id", auditHandler.DeleteAuditReport)
	api.Post("/audits/:id/findings", auditHandler.AddFinding)

	// Business trip routes
	api.Get("/trips", tripHandler.ListTrips)
	api.Post("/trips", tripHandler.CreateTrip)
	api.Get("/trips/:id", tripHandler.GetTrip)
	api.Put("/trips/:id", tripHandler.UpdateTrip)
	api.Delete("/trips/:id", tripHandler.DeleteTrip)
	api.Post("/trips/:id/documents", tripHandler.UploadTripDocument)
	api.Get("/trips/:id/documents/:docId/view", tripHandler.ViewTripDocument)
	api.Get("/trips/:id/documents/:docId/download", tripHandler.DownloadTripDocument)
	api.Delete("/trips/:id/documents/:docId", tripHandler.DeleteTripDocument)

	// Task routes
	api.Get("/tasks", taskHandler.ListTaskBoard)
	api.Post("/tasks", taskHandler.CreateTask)
	api.Get("/tasks/:id", taskHandler.GetTask)
	api.Put("/tasks/:id", taskHandler.UpdateTask)
	api.Post("/tasks/:id/complete", taskHandler.CompleteTask)
	api.Delete("/tasks/:id", taskHandler.DeleteTask)
	api.Post("/tasks/:id/attachments", taskHandler.UploadTaskAttachment)
	api.Get("/tasks/:id/attachments/:attId/view", taskHandler.ViewTaskAttachment)
	api.Get("/tasks/:id/attachments/:attId/download", taskHandler.DownloadTaskAttachment)
	api.Delete("/tasks/:id/attachments/:attId", taskHandler.DeleteTaskAttachment)

	// File library routes
	api.Get("/library", libraryHandler.ListLibraryFiles)
	api.Post("/library", libraryHandler.UploadLibraryFile)
	api.Get("/library/:id", libraryHandler.GetLibraryFile)
	api.Put("/library/:id", libraryHandler.UpdateLibraryFile)
	api.Get("/library/:id/view", libraryHandler.ViewLibraryFile)
	api.Get("/library/:id/download", libraryHandler.DownloadLibraryFile)
	api.Post("/library/:id/open", libraryHandler.OpenLibraryFile)
	api.Delete("/library/:id", libraryHandler.DeleteLibraryFile)

	// Knowledge base routes
	api.Get("/knowledge", knowledgeHandler.ListKnowledgeItems)
	api.Post("/knowledge", knowledgeHandler.CreateKnowledgeItem)
	api.Get("/knowledge/:id", knowledgeHandler.GetKnowledgeItem)
	api.Put("/knowledge/:id", knowledgeHandler.UpdateKnowledgeItem)
	api.Delete("/knowledge/:id", knowledgeHandler.DeleteKnowledgeItem)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
