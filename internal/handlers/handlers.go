package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"blogly/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	cfg      config.Config
	logger   *zap.SugaredLogger
	validate *validator.Validate
)

// Init wires the package-level dependencies. Must be called before
// NewRouter is used.
func Init(c config.Config, l *zap.Logger) {
	cfg = c
	logger = l.Sugar()
	validate = validator.New()
	// Error messages should use the form field names the browser submits.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

func NewRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// Routes
	r.Get("/", RootHandler)

	r.Get("/users", UserListHandler)
	r.Get("/users/new", NewUserHandler)
	r.Post("/users/new", NewUserHandler)
	r.Get("/users/{id}", UserDetailHandler)
	r.Get("/users/{id}/edit", EditUserHandler)
	r.Post("/users/{id}/edit", EditUserHandler)
	r.Post("/users/{id}/delete", DeleteUserHandler)
	r.Get("/users/{id}/posts/new", NewPostHandler)
	r.Post("/users/{id}/posts/new", NewPostHandler)

	r.Get("/posts/{id}", PostDetailHandler)
	r.Get("/posts/{id}/edit", EditPostHandler)
	r.Post("/posts/{id}/edit", EditPostHandler)
	r.Post("/posts/{id}/delete", DeletePostHandler)

	r.Get("/tags", TagListHandler)
	r.Get("/tags/new", NewTagHandler)
	r.Post("/tags/new", NewTagHandler)
	r.Get("/tags/{id}", TagDetailHandler)
	r.Get("/tags/{id}/edit", EditTagHandler)
	r.Post("/tags/{id}/edit", EditTagHandler)
	r.Get("/tags/{id}/delete", DeleteTagHandler)

	return r
}

// RequestLogger logs one line per request through the shared zap logger.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func tagColor(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	// Hash-like deterministic color selection
	colors := []string{"is-info", "is-success", "is-warning", "is-danger", "is-primary", "is-link"}
	sum := 0
	for _, char := range tag {
		sum += int(char)
	}
	return colors[sum%len(colors)]
}

func RenderTemplate(w http.ResponseWriter, tmpl string, data interface{}) {
	renderStatus(w, http.StatusOK, tmpl, data)
}

func renderStatus(w http.ResponseWriter, status int, tmpl string, data interface{}) {
	layoutPath := filepath.Join(cfg.TemplatesDir, "layout.html")
	tmplPath := filepath.Join(cfg.TemplatesDir, tmpl)

	t, err := template.New(filepath.Base(layoutPath)).Funcs(template.FuncMap{
		"tagColor": tagColor,
	}).ParseFiles(layoutPath, tmplPath)
	if err != nil {
		logger.Errorw("template parse failed", "template", tmpl, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		logger.Errorw("template execute failed", "template", tmpl, "error", err)
	}
}

func renderNotFound(w http.ResponseWriter, what string) {
	renderStatus(w, http.StatusNotFound, "error.html", map[string]interface{}{
		"Message": what + " not found",
	})
}

func internalError(w http.ResponseWriter, err error) {
	logger.Errorw("request failed", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func paramID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
	}
	return "invalid input"
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/users", http.StatusFound)
}
