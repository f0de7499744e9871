// Package echoapi exposes the platform's REST API.
package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/assignment"
	"github.com/trezcool/elimu/core/contact"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/discussion"
	"github.com/trezcool/elimu/core/notification"
	"github.com/trezcool/elimu/core/user"
	clerksvc "github.com/trezcool/elimu/services/clerk"
)

type (
	Options struct {
		Address        string
		AllowedOrigins []string
		Debug          bool
		TestMode       bool
		DisableReqLogs bool
		// CourseAPIKey is the shared static key accepted as an alternate
		// credential on course creation.
		CourseAPIKey string
	}

	Deps struct {
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		TokenVerifier   clerksvc.TokenVerifier
		ProfileSvc      clerksvc.ProfileService
		WebhookVerifier clerksvc.WebhookVerifier

		UserSvc         user.ServiceInterface
		CourseSvc       course.ServiceInterface
		AssignmentSvc   assignment.ServiceInterface
		DiscussionSvc   discussion.ServiceInterface
		NotificationSvc notification.ServiceInterface
		ContactSvc      contact.ServiceInterface

		// Shutdown is signalled when an unrecoverable error is caught.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts Options
		deps *Deps
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts Options, deps *Deps) Server {
	s := &server{
		opts: opts,
		deps: deps,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.deps.Shutdown)
	s.app.Debug = s.opts.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	auth := bearerAuthMiddleware(s.deps.TokenVerifier)

	registerCourseAPI(api, auth, s.opts.CourseAPIKey, s.deps)
	registerAssignmentAPI(api, auth, s.deps)
	registerDiscussionAPI(api, auth, s.deps)
	registerUserAPI(api, auth, s.deps)
	registerNotificationAPI(api, auth, s.deps)
	registerWebhookAPI(api, s.deps)
	registerContactAPI(api, s.deps)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Elimu API!")
}
