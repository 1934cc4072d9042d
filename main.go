package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dilshat/contacts-admin/broadcast"
	"github.com/dilshat/contacts-admin/config"
	"github.com/dilshat/contacts-admin/controller"
	"github.com/dilshat/contacts-admin/dao"
	_ "github.com/dilshat/contacts-admin/docs"
	"github.com/dilshat/contacts-admin/log"
	"github.com/dilshat/contacts-admin/service"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// @title Contacts admin HTTP API
// @description Contact directory with bulk import and broadcast hand-off

// @contact.name Dilshat Aliev
// @contact.email dilshat.aliev@gmail.com

var dotenvErr error

func init() {
	dotenvErr = godotenv.Load()
}

func main() {
	cfg := config.Load()

	if _, err := log.Init(cfg.LogLevel, cfg.LogDev); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if dotenvErr != nil && !os.IsNotExist(dotenvErr) {
		log.WarnIfErr("Error loading .env", dotenvErr)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	//open contact store
	contactDao, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	//start broadcast sender
	sender := broadcast.NewSender(broadcast.LogDeliverer{}, cfg.BroadcastTPS, cfg.BroadcastQueue)
	sender.Start()

	contactService := service.NewService(contactDao, sender)

	e := newServer(cfg, contactService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := e.Shutdown(shutdownCtx)
		sender.Stop()
		zap.L().Info("HTTP server stopped")
		return err
	})

	log.ErrIfErr("Server error", g.Wait())
}

// openStore opens the contact store selected by STORE_DRIVER, wrapped in the
// redis read-through cache when REDIS_URL is set. The returned func releases
// every opened resource.
func openStore(cfg config.Config) (dao.ContactDao, func(), error) {
	var (
		contactDao dao.ContactDao
		closers    []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			log.WarnIfErr("Error closing store", closers[i]())
		}
	}

	switch cfg.StoreDriver {
	case config.StoreStorm:
		db, err := dao.OpenStorm(cfg.DbPath)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		contactDao = dao.NewContactDao(db)
	default:
		db, err := dao.OpenGorm(cfg.StoreDriver, cfg.DbDsn, cfg.DbMaxOpenConns, cfg.DbMaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() error { return dao.CloseGorm(db) })
		contactDao = dao.NewGormContactDao(db)
	}

	if cfg.RedisURL != "" {
		client, err := dao.OpenRedis(cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		contactDao = dao.NewCachedContactDao(contactDao, dao.NewRedisCache(client, cfg.CacheTTL))
	}

	return contactDao, closeAll, nil
}

func newServer(cfg config.Config, service service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = controller.NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(controller.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CorsOrigins}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	bindRoutes(e, service)

	return e
}

func bindRoutes(e *echo.Echo, service service.Service) {

	e.GET("/health", controller.Health)

	e.POST("/api/contact", controller.GetCreateContactsFunc(service))

	e.GET("/api/contact", controller.GetListContactsFunc(service))

	e.DELETE("/api/contact", controller.GetDeleteContactFunc(service))

	e.Match([]string{http.MethodPut, http.MethodPatch, http.MethodHead}, "/api/contact", controller.MethodNotAllowed)

	e.POST("/api/broadcast", controller.GetSendBroadcastFunc(service))
}
