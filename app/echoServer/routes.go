package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/auth"
	"github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/book"
	"github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/category"
	"github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/loan"
	"github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/controller/user"
	"github.com/Manohar-mrtarns/bookmanagementsystem/app/echoServer/jwtx"
)

type C struct {
	Auth     *auth.Controller
	User     *user.Controller
	Category *category.Controller
	Book     *book.Controller
	Loan     *loan.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
	}))
	// user_id / role extraction from verified claims
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				reqID := ctx.Response().Header().Get(echo.HeaderXRequestID)
				ctx.Logger().Warnf("[AUTH] failed to cast claims req_id=%s", reqID)
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			if role, err := jwtx.RoleFromContext(ctx); err == nil {
				ctx.Set("role", role)
			}
			return next(ctx)
		}
	})

	// Categories
	auth.GET("/categories", c.Category.List)
	auth.GET("/categories/:id", c.Category.Detail)
	auth.POST("/categories", c.Category.Create)
	auth.PUT("/categories/:id", c.Category.Update)
	auth.DELETE("/categories/:id", c.Category.Delete)

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/available", c.Book.Available)
	auth.GET("/books/:id", c.Book.Detail)
	// Admin endpoints
	auth.POST("/books", c.Book.Create)
	auth.PUT("/books/:id", c.Book.Update)
	auth.DELETE("/books/:id", c.Book.Delete)
	auth.POST("/books/:id/copies", c.Book.Restock)

	// Loans — student side
	auth.POST("/loans/request", c.Loan.Request)
	auth.GET("/loans/my-requests", c.Loan.MyRequests)
	auth.GET("/loans/my-issued", c.Loan.MyIssued)
	auth.GET("/loans/my-fines", c.Loan.MyFines)
	auth.POST("/loans/:id/return", c.Loan.Return)

	// Loans — admin side
	auth.GET("/loans", c.Loan.List)
	auth.GET("/loans/issued", c.Loan.IssuedBooks)
	auth.POST("/loans/:id/approve", c.Loan.Approve)
	auth.POST("/loans/:id/reject", c.Loan.Reject)
	auth.POST("/loans/:id/issue", c.Loan.MarkIssued)

	// Users
	auth.PUT("/users/profile/:id", c.User.UpdateProfile)
	auth.POST("/users/change-password", c.User.ChangePassword)
	auth.GET("/users", c.User.List)
	auth.GET("/users/stats", c.User.Stats)
	auth.GET("/users/:id", c.User.Detail)
	auth.POST("/users/activate/:id", c.User.Activate)
	auth.POST("/users/deactivate/:id", c.User.Deactivate)
	auth.DELETE("/users/:id", c.User.Delete)
}
