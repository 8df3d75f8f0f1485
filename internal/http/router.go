package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trustlens/internal/notify"
)

// NewRouter configura el router de Gin: tabla de rutas con guard por clase
// de acceso, acciones de formulario y catch-all a not-found.
func NewRouter(logger *zap.Logger, store SessionStore, feed *notify.Feed) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging y recovery.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	pages := newPageSet(logger, store, feed)
	authH := NewAuthHandler(logger, store, pages)

	for _, route := range Routes() {
		guard := guardMiddleware(store, route.Access, pages)
		switch route.Page {
		case "verify-email":
			r.GET(route.Path, guard, authH.VerifyEmailPage)
		case "dashboard":
			r.GET(route.Path, guard, authH.Dashboard)
		default:
			r.GET(route.Path, guard, pages.handler(route.Page))
		}
	}

	// Acciones de formulario; comparten la clase de acceso de su pagina.
	r.POST(loginPath, guardMiddleware(store, AccessGuestOnly, pages), authH.Login)
	r.POST("/register", guardMiddleware(store, AccessGuestOnly, pages), authH.Register)
	r.POST("/forgot-password", guardMiddleware(store, AccessGuestOnly, pages), authH.ForgotPassword)
	r.POST("/reset-password", authH.ResetPassword)
	r.POST("/logout", authH.Logout)
	r.POST("/resend-verification", guardMiddleware(store, AccessProtected, pages), authH.ResendVerification)
	r.POST("/settings", guardMiddleware(store, AccessProtected, pages), authH.UpdateSettings)

	// Paths no declarados: not-found sin redireccion.
	r.NoRoute(func(c *gin.Context) {
		pages.render(c, "not-found", http.StatusNotFound)
	})

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
