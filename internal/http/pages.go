package http

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trustlens/internal/domain"
	"trustlens/internal/notify"
)

// layoutSrc es el armazon comun: titulo, avisos transitorios y cuerpo.
const layoutSrc = `<!doctype html>
<html>
<head><title>{{.Title}} · TrustLens</title></head>
<body>
<nav>
<a href="/">TrustLens</a>
{{if .User}}<span>{{.User.DisplayName}}</span><form method="post" action="/logout"><button>Log out</button></form>
{{else}}<a href="/login">Log in</a> <a href="/register">Sign up</a>{{end}}
</nav>
{{range .Notices}}<div class="notice notice-{{.Level}}">{{.Message}}</div>{{end}}
<main>{{block "body" .}}{{end}}</main>
</body>
</html>`

// page es una pagina presentacional. La plantilla se compila recien en la
// primera navegacion a su path.
type page struct {
	title string
	body  string

	once sync.Once
	tmpl *template.Template
	err  error
}

func (p *page) template() (*template.Template, error) {
	p.once.Do(func() {
		t, err := template.New("layout").Parse(layoutSrc)
		if err != nil {
			p.err = err
			return
		}
		t, err = t.Parse(p.body)
		if err != nil {
			p.err = err
			return
		}
		p.tmpl = t
	})
	return p.tmpl, p.err
}

type pageData struct {
	Title   string
	User    *domain.User
	Notices []notify.Notice
	Query   map[string]string
}

// pageSet agrupa las paginas y el contexto necesario para renderizarlas.
type pageSet struct {
	logger   *zap.Logger
	sessions SessionReader
	feed     *notify.Feed
	pages    map[string]*page
}

func newPageSet(logger *zap.Logger, sessions SessionReader, feed *notify.Feed) *pageSet {
	return &pageSet{
		logger:   logger,
		sessions: sessions,
		feed:     feed,
		pages: map[string]*page{
			"landing": {title: "Trust, measured", body: `{{define "body"}}
<h1>See what your customers trust</h1>
<p>TrustLens turns raw review data into a trust score you can act on.</p>
<p><a href="/register">Start free</a> · <a href="/pricing">Pricing</a></p>
{{end}}`},
			"pricing": {title: "Pricing", body: `{{define "body"}}
<h1>Pricing</h1>
<ul><li>Free — 100 scans/month</li><li>Pro — 5,000 scans/month</li><li>Enterprise — unlimited</li></ul>
{{end}}`},
			"login": {title: "Log in", body: `{{define "body"}}
<h1>Log in</h1>
<form method="post" action="/login">
<input name="email" type="email" placeholder="Email" required>
<input name="password" type="password" placeholder="Password" required>
<button>Log in</button>
</form>
<p><a href="/forgot-password">Forgot your password?</a></p>
{{end}}`},
			"register": {title: "Create account", body: `{{define "body"}}
<h1>Create account</h1>
<form method="post" action="/register">
<input name="firstName" placeholder="First name" required>
<input name="lastName" placeholder="Last name" required>
<input name="company" placeholder="Company (optional)">
<input name="email" type="email" placeholder="Email" required>
<input name="password" type="password" placeholder="Password" required>
<button>Sign up</button>
</form>
{{end}}`},
			"forgot-password": {title: "Forgot password", body: `{{define "body"}}
<h1>Forgot password</h1>
<form method="post" action="/forgot-password">
<input name="email" type="email" placeholder="Email" required>
<button>Send reset link</button>
</form>
{{end}}`},
			"reset-password": {title: "Reset password", body: `{{define "body"}}
<h1>Reset password</h1>
<form method="post" action="/reset-password">
<input name="token" type="hidden" value="{{index .Query "token"}}">
<input name="password" type="password" placeholder="New password" required>
<button>Reset password</button>
</form>
{{end}}`},
			"verify-email": {title: "Verify email", body: `{{define "body"}}
<h1>Email verification</h1>
{{if .User}}{{if .User.EmailVerified}}<p>Your email is verified.</p>
{{else}}<p>Your email is not verified yet.</p>
<form method="post" action="/resend-verification"><button>Resend verification email</button></form>{{end}}
{{else}}<p>Log in to manage email verification.</p>{{end}}
{{end}}`},
			"dashboard": {title: "Dashboard", body: `{{define "body"}}
<h1>Dashboard</h1>
<p>Plan: {{.User.Plan}} · Usage: {{.User.UsageCount}}/{{.User.UsageLimit}}</p>
{{if not .User.EmailVerified}}<p>Please <a href="/verify-email">verify your email</a>.</p>{{end}}
{{end}}`},
			"settings": {title: "Settings", body: `{{define "body"}}
<h1>Settings</h1>
<form method="post" action="/settings">
<input name="firstName" placeholder="First name" value="{{.User.FirstName}}">
<input name="lastName" placeholder="Last name" value="{{.User.LastName}}">
<input name="company" placeholder="Company" value="{{.User.Company}}">
<textarea name="bio" placeholder="Bio">{{.User.Bio}}</textarea>
<button>Save</button>
</form>
{{end}}`},
			"admin": {title: "Admin", body: `{{define "body"}}
<h1>Admin</h1>
<p>Administration area.</p>
{{end}}`},
			"denied": {title: "Access denied", body: `{{define "body"}}
<h1>Access denied</h1>
<p>You do not have permission to view this page.</p>
{{end}}`},
			"not-found": {title: "Not found", body: `{{define "body"}}
<h1>Page not found</h1>
<p><a href="/">Back to home</a></p>
{{end}}`},
		},
	}
}

// render compila (si hace falta) y ejecuta la pagina con la sesion vigente
// y los avisos pendientes.
func (ps *pageSet) render(c *gin.Context, name string, status int) {
	p, ok := ps.pages[name]
	if !ok {
		p = ps.pages["not-found"]
		status = http.StatusNotFound
	}

	tmpl, err := p.template()
	if err != nil {
		if ps.logger != nil {
			ps.logger.Error("page template failed", zap.String("page", name), zap.Error(err))
		}
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	data := pageData{Title: p.title, Query: map[string]string{}}
	if sess, ok := ps.sessions.Current(); ok {
		user := sess.User
		data.User = &user
	}
	if ps.feed != nil {
		data.Notices = ps.feed.Drain()
	}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			data.Query[key] = values[0]
		}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := tmpl.Execute(c.Writer, data); err != nil && ps.logger != nil {
		ps.logger.Error("page render failed", zap.String("page", name), zap.Error(err))
	}
}

// handler devuelve el gin.HandlerFunc que renderiza la pagina con status 200.
func (ps *pageSet) handler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ps.render(c, name, http.StatusOK)
	}
}
