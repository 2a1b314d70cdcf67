package echoServer

import (
	"net/http"

	"bookshare/app/echoServer/controller/auth"
	"bookshare/app/echoServer/controller/book"
	"bookshare/app/echoServer/controller/catalog"
	"bookshare/app/echoServer/controller/request"
	"bookshare/app/echoServer/jwtx"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Request   *request.Controller
	Catalog   *catalog.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Catalog reads are open
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)
	pub.GET("/authors", c.Catalog.ListAuthors)
	pub.GET("/authors/:id", c.Catalog.AuthorDetail)
	pub.GET("/genres", c.Catalog.ListGenres)
	pub.GET("/genres/:id", c.Catalog.GenreDetail)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "authentication required")
		},
	}))
	// user_id extraction from verified claims
	authed.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusForbidden, echo.Map{"message": "authentication required"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	// Books (writes)
	authed.POST("/books", c.Book.Create)
	authed.PUT("/books/:id", c.Book.Update)
	authed.PATCH("/books/:id", c.Book.Update)
	authed.DELETE("/books/:id", c.Book.Delete)

	// Requests
	authed.GET("/requests", c.Request.List)
	authed.POST("/requests", c.Request.Create)
	authed.GET("/requests/:id", c.Request.Detail)
	authed.PUT("/requests/:id", c.Request.Update)
	authed.PATCH("/requests/:id", c.Request.Update)
	authed.DELETE("/requests/:id", c.Request.Delete)
	authed.POST("/requests/:id/accept", c.Request.Accept)
	authed.POST("/requests/:id/reject", c.Request.Reject)

	// Reference data (writes)
	authed.POST("/authors", c.Catalog.CreateAuthor)
	authed.POST("/genres", c.Catalog.CreateGenre)
}
