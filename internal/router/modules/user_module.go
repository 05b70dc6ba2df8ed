package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coachbar/catalog-api/internal/container"
	handlers "github.com/coachbar/catalog-api/internal/interface/http"
	"github.com/coachbar/catalog-api/internal/interface/middleware"
	"github.com/coachbar/catalog-api/pkg/helpers"
)

// UserModule wires the user directory routes.
// Public: POST /api/users/login
// Authenticated: upload-profile-pic, update, update-password, me
// AdminOnly: register, list
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil) // 10 req/min per IP
	users.POST("/login", loginLimiter, m.Handler.Login)

	auth := users.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/upload-profile-pic", m.Handler.UploadProfilePicture)
		auth.PUT("/update", m.Handler.UpdateSelf)
		auth.PUT("/update-password", m.Handler.UpdatePassword)
		auth.GET("/me", m.Handler.Me)

		admin := auth.Group("/")
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("/register", m.Handler.Register)
			admin.GET("", m.Handler.List)
		}
	}
}
