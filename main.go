package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/elimu/api/echo"
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/assignment"
	"github.com/trezcool/elimu/core/contact"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/discussion"
	"github.com/trezcool/elimu/core/notification"
	"github.com/trezcool/elimu/core/user"
	aisvc "github.com/trezcool/elimu/services/ai"
	clerksvc "github.com/trezcool/elimu/services/clerk"
	emailsvc "github.com/trezcool/elimu/services/email"
	logsvc "github.com/trezcool/elimu/services/logger"
	mongorepos "github.com/trezcool/elimu/storage/mongodb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := mongorepos.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = mongorepos.Close(context.Background(), db); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up external collaborators
	tokenVerifier, err := clerksvc.NewTokenVerifier(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up token verifier: %v", err), err)
	}
	webhookVerifier, err := clerksvc.NewWebhookVerifier(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up webhook verifier: %v", err), err)
	}
	profileSvc := clerksvc.NewClient(conf, logger)
	aiClient := aisvc.NewClient(conf)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// set up services
	usrSvc := user.NewService(mongorepos.NewUserRepository(db))
	courseSvc := course.NewService(mongorepos.NewCourseRepository(db))
	notifSvc := notification.NewService(mongorepos.NewNotificationRepository(db))
	assignmentSvc := assignment.NewService(mongorepos.NewAssignmentRepository(db), courseSvc, notifSvc, aiClient, logger)
	discussionSvc := discussion.NewService(mongorepos.NewThreadRepository(db), courseSvc, notifSvc, logger)
	contactSvc := contact.NewService(mongorepos.NewContactRepository(db), mailSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		echoapi.Options{
			Address:        conf.Server.Host,
			AllowedOrigins: conf.Server.AllowedOrigins,
			Debug:          conf.Debug,
			TestMode:       conf.TestMode,
			CourseAPIKey:   conf.Server.CourseAPIKey,
		},
		&echoapi.Deps{
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			TokenVerifier:   tokenVerifier,
			ProfileSvc:      profileSvc,
			WebhookVerifier: webhookVerifier,
			UserSvc:         usrSvc,
			CourseSvc:       courseSvc,
			AssignmentSvc:   assignmentSvc,
			DiscussionSvc:   discussionSvc,
			NotificationSvc: notifSvc,
			ContactSvc:      contactSvc,
			Shutdown:        func() { shutdownCh <- syscall.SIGTERM },
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdownCh:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
