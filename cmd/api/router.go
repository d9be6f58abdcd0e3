package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/giovaniif/motorent/domain/user"
	"github.com/giovaniif/motorent/infra/auth"
	"github.com/giovaniif/motorent/infra/logging"
	"github.com/giovaniif/motorent/infra/metrics"
	"github.com/giovaniif/motorent/infra/requestid"
	"github.com/giovaniif/motorent/infra/tracing"
	"github.com/giovaniif/motorent/use_cases/board"
	"github.com/giovaniif/motorent/use_cases/cancel"
	"github.com/giovaniif/motorent/use_cases/catalog"
	"github.com/giovaniif/motorent/use_cases/check"
	"github.com/giovaniif/motorent/use_cases/checkout"
	"github.com/giovaniif/motorent/use_cases/fleet"
	"github.com/giovaniif/motorent/use_cases/history"
	"github.com/giovaniif/motorent/use_cases/login"
	"github.com/giovaniif/motorent/use_cases/pickup"
	"github.com/giovaniif/motorent/use_cases/profile"
	"github.com/giovaniif/motorent/use_cases/quote"
	"github.com/giovaniif/motorent/use_cases/returns"
	"github.com/giovaniif/motorent/use_cases/selection"
	"github.com/giovaniif/motorent/use_cases/support"
	"github.com/giovaniif/motorent/use_cases/users"
)

// App holds the use cases the HTTP handlers call into.
type App struct {
	Logger          *slog.Logger
	Tokens          *auth.Tokens
	CheckoutTimeout time.Duration

	Login     *login.Login
	Selection *selection.Selection
	Catalog   *catalog.Catalog
	Check     *check.Check
	Quote     *quote.Quote
	Checkout  *checkout.Checkout
	History   *history.History
	Profile   *profile.Profile
	Cancel    *cancel.Cancel
	Pickup    *pickup.Pickup
	Return    *returns.Return
	Board     *board.Board
	Fleet     *fleet.Fleet
	Users     *users.Users
	Support   *support.Support
}

func NewRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestid.Middleware(), tracing.Middleware(), metrics.Middleware, logging.Middleware(app.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	r.POST("/auth/login", app.login)

	r.PUT("/session/selection", app.saveSelection)
	r.GET("/session/selection", app.getSelection)
	r.GET("/session/order", app.pendingOrder)

	r.GET("/bikes", app.listBikes)
	r.GET("/bikes/:id", app.getBike)
	r.GET("/bikes/:id/availability", app.availability)
	r.POST("/bikes/:id/quote", app.quote)

	r.POST("/support/chat", app.chat)
	r.POST("/support/locations", app.suggestLocations)
	r.POST("/support/messages", app.submitMessage)

	renter := r.Group("", app.Tokens.Middleware())
	renter.POST("/checkout", app.checkout)
	renter.GET("/rentals/mine", app.myRentals)
	renter.POST("/rentals/:id/cancel", app.cancelOwn)

	renter.GET("/users/me", app.getProfile)
	renter.PUT("/users/me", app.updateProfile)

	staff := r.Group("/staff", app.Tokens.Middleware(user.BackOffice()...))
	staff.GET("/summary", app.summary)
	staff.GET("/rentals", app.board)
	staff.POST("/rentals/:id/pickup", app.pickup)
	staff.POST("/rentals/:id/return", app.complete)
	staff.POST("/rentals/:id/cancel", app.cancel)
	staff.GET("/users", app.listUsers)
	staff.GET("/support/messages", app.listMessages)
	staff.PUT("/support/messages/:id/status", app.setMessageStatus)
	staff.POST("/support/messages/:id/reply", app.replyMessage)

	admin := r.Group("/admin", app.Tokens.Middleware(user.Admin))
	admin.GET("/bikes", app.fleetList)
	admin.GET("/bikes/:id", app.getBike)
	admin.POST("/bikes", app.fleetCreate)
	admin.PUT("/bikes/:id", app.fleetUpdate)
	admin.DELETE("/bikes/:id", app.fleetDelete)
	admin.GET("/users", app.listUsers)
	admin.PUT("/users/:id/role", app.changeRole)
	admin.GET("/support/messages", app.listMessages)
	admin.PUT("/support/messages/:id/status", app.setMessageStatus)
	admin.POST("/support/messages/:id/reply", app.replyMessage)

	return r
}
