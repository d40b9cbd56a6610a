// Package main library management API.
//
// @title           Library Management API
// @version         1.0
// @description     library circulation service (catalog, loans, fines, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer"
	authctrl "github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/auth"
	bookctrl "github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/book"
	categoryctrl "github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/category"
	loanctrl "github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/loan"
	userctrl "github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/user"
	"github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/validation"
	"github.com/Manohar-mrtarns/bookmanagementsystem/config"
	bookrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/book"
	categoryrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/category"
	loanrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/loan"
	"github.com/Manohar-mrtarns/bookmanagementsystem/repository/openlibrary"
	userrepo "github.com/Manohar-mrtarns/bookmanagementsystem/repository/user"
	authsvc "github.com/Manohar-mrtarns/bookmanagementsystem/service/auth"
	booksvc "github.com/Manohar-mrtarns/bookmanagementsystem/service/book"
	categorysvc "github.com/Manohar-mrtarns/bookmanagementsystem/service/category"
	loansvc "github.com/Manohar-mrtarns/bookmanagementsystem/service/loan"
	usersvc "github.com/Manohar-mrtarns/bookmanagementsystem/service/user"
	"github.com/Manohar-mrtarns/bookmanagementsystem/util/database"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(cfg.DatabaseURL, migrationFS); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	cr := categoryrepo.New(db)
	br := bookrepo.New(db)
	lr := loanrepo.New(db)
	ol := openlibrary.NewHTTP()

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	us := usersvc.New(ur)
	cs := categorysvc.New(cr)
	bs := booksvc.New(br, cr, ol, log)
	lsv := loansvc.New(lr, br, cfg.FinePerDay, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	categoryC := &categoryctrl.Controller{Svc: cs, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: lsv, V: v, Log: log}

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
		Auth:     authC,
		User:     userC,
		Category: categoryC,
		Book:     bookC,
		Loan:     loanC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
