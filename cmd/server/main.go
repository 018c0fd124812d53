package main

import (
	"log"
	"strings"

	"mahzen-backend/internal/admin"
	"mahzen-backend/internal/audit"
	"mahzen-backend/internal/auth"
	"mahzen-backend/internal/catalog"
	"mahzen-backend/internal/config"
	"mahzen-backend/internal/counting"
	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"
	"mahzen-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	// Harici stok sistemi bağlantıları + onay commit kuyruğu
	source := stock.NewHTTPSource(cfg)
	committer := stock.NewHTTPCommitter(cfg)
	commitQueue := stock.NewCommitQueue(committer, cfg.UpstreamTimeout, cfg.CommitMaxAttempts, cfg.CommitRetryBackoff)
	commitQueue.Start()

	countingSvc := counting.NewService(cfg, source, commitQueue)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Mekan yönetimi
	adminRoutes.Post("/locations", admin.CreateLocationHandler())
	adminRoutes.Get("/locations", admin.ListLocationsHandler())
	adminRoutes.Get("/locations/:id", admin.GetLocationHandler())
	adminRoutes.Put("/locations/:id", admin.UpdateLocationHandler())

	// Kullanıcı yönetimi
	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())

	// Ürün yönetimi
	adminRoutes.Post("/products", catalog.CreateProductHandler())
	adminRoutes.Put("/products/:id", catalog.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", catalog.DeleteProductHandler())

	// Kadeh preset yönetimi
	adminRoutes.Post("/pour-presets", catalog.CreatePourPresetHandler())
	adminRoutes.Delete("/pour-presets/:id", catalog.DeletePourPresetHandler())

	// Katalog (auth gerektiren ortak route'lar)
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/products/barcode/:code", catalog.GetProductByBarcodeHandler())
	protected.Get("/pour-presets", catalog.ListPourPresetsHandler())

	// Sayım motoru
	protected.Post("/counting-sessions", counting.StartSessionHandler(countingSvc))
	protected.Get("/counting-sessions", counting.ListSessionsHandler(countingSvc))
	protected.Get("/counting-sessions/:id", counting.GetSessionHandler(countingSvc))
	protected.Post("/counting-sessions/:id/complete", counting.CompleteSessionHandler(countingSvc))
	protected.Post("/counting-sessions/:id/approve", counting.ApproveSessionHandler(countingSvc))
	protected.Post("/counting-sessions/:id/cancel", counting.CancelSessionHandler(countingSvc))

	// Sayım defteri
	protected.Post("/counting-sessions/:id/counts", counting.RecordCountHandler(countingSvc))
	protected.Get("/counting-sessions/:id/counts", counting.ListCountsHandler(countingSvc))

	// Varyans raporu (saf projeksiyon, her istekte yeniden hesaplanır)
	protected.Get("/counting-sessions/:id/variance", counting.VarianceReportHandler(countingSvc))

	// Denetim kayıtları (sadece okuma)
	protected.Get("/audit-records", audit.ListAuditRecordsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
