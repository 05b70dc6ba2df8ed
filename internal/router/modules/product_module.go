package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coachbar/catalog-api/internal/container"
	handlers "github.com/coachbar/catalog-api/internal/interface/http"
	"github.com/coachbar/catalog-api/internal/interface/middleware"
	"github.com/coachbar/catalog-api/pkg/helpers"
)

// ProductModule wires the product directory routes. Everything requires
// authentication; /assign additionally requires the admin role.
// /categories and /search are registered before /:id on purpose.
type ProductModule struct {
	Handler *handlers.ProductHandler
	JWT     *helpers.JWTManager
}

func NewProductModule(h *handlers.ProductHandler, jwt *helpers.JWTManager) *ProductModule {
	return &ProductModule{Handler: h, JWT: jwt}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.Use(middleware.Auth(m.JWT))
	products.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		products.POST("", m.Handler.Create)
		products.GET("", m.Handler.List)
		products.GET("/categories", m.Handler.Categories)
		products.GET("/search", m.Handler.Search)
		products.GET("/:id", m.Handler.GetByID)
		products.PUT("/:id", m.Handler.Update)
		products.DELETE("/:id", m.Handler.Delete)

		admin := products.Group("/")
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("/assign", m.Handler.Assign)
		}
	}
}
