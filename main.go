// Package main bookshare API.
//
// @title           Bookshare API
// @version         1.0
// @description     Peer-to-peer book lending (books, authors, genres, borrow requests).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"bookshare/app/echoServer"
	authctrl "bookshare/app/echoServer/controller/auth"
	bookctrl "bookshare/app/echoServer/controller/book"
	catalogctrl "bookshare/app/echoServer/controller/catalog"
	requestctrl "bookshare/app/echoServer/controller/request"
	"bookshare/app/echoServer/validation"
	"bookshare/config"
	authrepo "bookshare/repository/auth"
	bookrepo "bookshare/repository/book"
	catalogrepo "bookshare/repository/catalog"
	requestrepo "bookshare/repository/request"
	authsvc "bookshare/service/auth"
	booksvc "bookshare/service/book"
	catalogsvc "bookshare/service/catalog"
	requestsvc "bookshare/service/request"
	"bookshare/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ar := authrepo.New(db)
	br := bookrepo.New(db)
	cr := catalogrepo.New(db)
	rr := requestrepo.New(db)

	// services
	as := authsvc.New(ar, cfg.JWTSecret)
	bs := booksvc.New(br)
	cs := catalogsvc.New(cr)
	rs := requestsvc.New(rr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	catalogC := &catalogctrl.Controller{Svc: cs, V: v, Log: log}
	requestC := &requestctrl.Controller{Svc: rs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Book:    bookC,
		Request: requestC,
		Catalog: catalogC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
