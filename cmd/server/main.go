package main

import (
	"log"
	"strings"

	"almacen-backend/internal/admin"
	"almacen-backend/internal/auth"
	"almacen-backend/internal/catalog"
	"almacen-backend/internal/config"
	"almacen-backend/internal/dashboard"
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"
	"almacen-backend/internal/movements"
	"almacen-backend/internal/report"
	"almacen-backend/internal/stocktaking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	movementsSvc := movements.NewService(database.DB)
	stocktakingSvc := stocktaking.NewService(database.DB)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Error inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

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

	// Auth publico
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Rutas protegidas
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Put("/auth/perfil", auth.UpdateProfileHandler())

	// Solo administradores
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Gestion de usuarios
	adminRoutes.Get("/usuarios", admin.ListUsersHandler())
	adminRoutes.Post("/usuarios", admin.CreateUserHandler())
	adminRoutes.Put("/usuarios/:id", admin.UpdateUserHandler())
	adminRoutes.Delete("/usuarios/:id", admin.DeleteUserHandler())

	// Catalogo (altas/bajas solo admin)
	adminRoutes.Post("/categorias", catalog.CreateCategoryHandler())
	adminRoutes.Put("/categorias/:id", catalog.UpdateCategoryHandler())
	adminRoutes.Delete("/categorias/:id", catalog.DeleteCategoryHandler())

	adminRoutes.Post("/proveedores", catalog.CreateProviderHandler())
	adminRoutes.Put("/proveedores/:id", catalog.UpdateProviderHandler())
	adminRoutes.Delete("/proveedores/:id", catalog.DeleteProviderHandler())

	adminRoutes.Post("/productos", catalog.CreateProductHandler())
	adminRoutes.Put("/productos/:id", catalog.UpdateProductHandler())
	adminRoutes.Delete("/productos/:id", catalog.DeleteProductHandler())

	// Consultas de catalogo
	protected.Get("/categorias", catalog.ListCategoriesHandler())
	protected.Get("/proveedores", catalog.ListProvidersHandler())
	protected.Get("/productos", catalog.ListProductsHandler())
	protected.Get("/productos/buscar", catalog.SearchProductHandler())
	protected.Get("/productos/autocomplete", catalog.AutocompleteProductsHandler())

	// Entradas de mercancia (almacen y compras registran; admin tambien)
	entradaRoutes := protected.Group("/entradas")
	entradaRoutes.Get("/", movements.ListEntradasHandler())
	entradaRoutes.Get("/:id", movements.GetEntradaHandler())
	entradaRoutes.Post("/", auth.RequireRole(models.RoleAdmin, models.RoleAlmacen, models.RoleCompras), movements.CreateEntradaHandler(movementsSvc))

	// Salidas de mercancia (almacen y ventas registran; admin tambien)
	salidaRoutes := protected.Group("/salidas")
	salidaRoutes.Get("/", movements.ListSalidasHandler())
	salidaRoutes.Get("/reporte", report.SalidasReportHandler())
	salidaRoutes.Get("/:id", movements.GetSalidaHandler())
	salidaRoutes.Post("/", auth.RequireRole(models.RoleAdmin, models.RoleAlmacen, models.RoleVentas), movements.CreateSalidaHandler(movementsSvc))

	// Inventario fisico
	inventario := protected.Group("/inventario")
	inventario.Get("/sesiones", stocktaking.ListSessionsHandler())
	inventario.Post("/sesiones", stocktaking.StartSessionHandler(stocktakingSvc))
	inventario.Get("/sesiones/:id", stocktaking.GetSessionHandler(stocktakingSvc))
	inventario.Get("/sesiones/:id/resultados", stocktaking.SessionResultsHandler(stocktakingSvc))
	inventario.Post("/sesiones/:id/conteos", stocktaking.RecordCountHandler(stocktakingSvc))
	inventario.Delete("/sesiones/:id/conteos/:conteoId", stocktaking.DeleteCountHandler(stocktakingSvc))
	inventario.Post("/sesiones/:id/finalizar", stocktaking.FinalizeSessionHandler(stocktakingSvc))
	inventario.Post("/sesiones/:id/cancelar", stocktaking.CancelSessionHandler(stocktakingSvc))
	inventario.Post("/sesiones/:id/conciliar", auth.RequireRole(models.RoleAdmin), stocktaking.ReconcileSessionHandler(stocktakingSvc))

	// Dashboard
	protected.Get("/dashboard", dashboard.SummaryHandler())

	// Reportes de solo lectura
	protected.Get("/reportes/inventario-actual", report.CurrentInventoryReportHandler())
	protected.Get("/reportes/ajustes", report.AdjustmentsReportHandler())

	log.Println("Servidor escuchando en el puerto:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
