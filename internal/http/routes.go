package http

// AccessClass clasifica quien puede ver una ruta.
type AccessClass int

const (
	// AccessPublic: visible siempre.
	AccessPublic AccessClass = iota
	// AccessGuestOnly: visible sin sesion; con sesion redirige al dashboard.
	AccessGuestOnly
	// AccessProtected: requiere sesion; sin sesion redirige al login.
	AccessProtected
	// AccessAdmin: requiere sesion con rol administrador.
	AccessAdmin
)

// Route declara el mapeo de un path a una pagina y su clase de acceso.
type Route struct {
	Path   string
	Page   string
	Access AccessClass
}

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// Routes devuelve la tabla de rutas de la aplicacion. Los paths no listados
// caen en la pagina not-found sin redireccion.
func Routes() []Route {
	return []Route{
		{Path: "/", Page: "landing", Access: AccessPublic},
		{Path: "/pricing", Page: "pricing", Access: AccessPublic},
		{Path: loginPath, Page: "login", Access: AccessGuestOnly},
		{Path: "/register", Page: "register", Access: AccessGuestOnly},
		{Path: "/forgot-password", Page: "forgot-password", Access: AccessGuestOnly},
		{Path: "/reset-password", Page: "reset-password", Access: AccessPublic},
		{Path: "/verify-email", Page: "verify-email", Access: AccessPublic},
		{Path: dashboardPath, Page: "dashboard", Access: AccessProtected},
		{Path: "/settings", Page: "settings", Access: AccessProtected},
		{Path: "/admin", Page: "admin", Access: AccessAdmin},
	}
}
