package router

import (
	"github.com/coachbar/catalog-api/internal/application"
	"github.com/coachbar/catalog-api/internal/container"
	pginfra "github.com/coachbar/catalog-api/internal/infrastructure/postgres"
	handlers "github.com/coachbar/catalog-api/internal/interface/http"
	"github.com/coachbar/catalog-api/internal/router/modules"
)

// InitModules initializes all application modules and registers them with
// the router registry. Called once during application startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	productRepo := pginfra.NewProductRepository(container.GetPGPool())

	userSvc := application.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetImages(),
		container.GetLogger(),
	)
	productSvc := application.NewProductService(
		productRepo,
		userRepo,
		container.GetImages(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESProductsIndex,
		container.GetEvents(),
		application.ParseReadScope(cfg.ProductReadScope),
	)

	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, container.GetLogger()), container.GetJWT()))
	r.Add(modules.NewProductModule(handlers.NewProductHandler(productSvc, container.GetLogger()), container.GetJWT()))
}
