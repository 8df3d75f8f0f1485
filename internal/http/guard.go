package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trustlens/internal/domain"
)

// SessionReader expone lo que el guard necesita saber del Session Store.
type SessionReader interface {
	IsAuthenticated() bool
	Current() (domain.Session, bool)
}

// guardMiddleware aplica la clase de acceso de la ruta antes de renderizar:
//   - guest-only con sesion activa redirige al dashboard
//   - protected sin sesion redirige al login
//   - admin con rol insuficiente devuelve la pagina de acceso denegado
func guardMiddleware(sessions SessionReader, access AccessClass, pages *pageSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch access {
		case AccessGuestOnly:
			if sessions.IsAuthenticated() {
				c.Redirect(http.StatusFound, dashboardPath)
				c.Abort()
				return
			}
		case AccessProtected, AccessAdmin:
			if !sessions.IsAuthenticated() {
				c.Redirect(http.StatusFound, loginPath)
				c.Abort()
				return
			}
			if access == AccessAdmin {
				sess, ok := sessions.Current()
				if !ok || !sess.User.IsAdmin() {
					pages.render(c, "denied", http.StatusForbidden)
					c.Abort()
					return
				}
			}
		}
		c.Next()
	}
}
