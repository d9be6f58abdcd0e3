package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/domain/session"
	"github.com/giovaniif/motorent/domain/support"
	"github.com/giovaniif/motorent/domain/user"
	"github.com/giovaniif/motorent/infra"
	"github.com/giovaniif/motorent/infra/gateways"
	"github.com/giovaniif/motorent/protocols"
	"github.com/giovaniif/motorent/use_cases/check"
	"github.com/giovaniif/motorent/use_cases/checkout"
	"github.com/giovaniif/motorent/use_cases/fleet"
	"github.com/giovaniif/motorent/use_cases/login"
	"github.com/giovaniif/motorent/use_cases/profile"
	supportuc "github.com/giovaniif/motorent/use_cases/support"
)

var (
	errBadRequest     = errors.New("bad request")
	errMissingSession = errors.New("missing X-Session-ID header")
	errMissingKey     = errors.New("missing Idempotency-Key header")
)

var statuses = []struct {
	err    error
	status int
}{
	{errBadRequest, http.StatusBadRequest},
	{errMissingSession, http.StatusBadRequest},
	{errMissingKey, http.StatusBadRequest},
	{availability.ErrInvalidRange, http.StatusBadRequest},
	{availability.ErrInvalidQuantity, http.StatusBadRequest},
	{bike.ErrInvalid, http.StatusBadRequest},
	{rental.ErrUnknownOption, http.StatusBadRequest},
	{user.ErrInvalidRole, http.StatusBadRequest},
	{support.ErrInvalidStatus, http.StatusBadRequest},
	{support.ErrEmptyReply, http.StatusBadRequest},
	{supportuc.ErrEmptyQuery, http.StatusBadRequest},
	{supportuc.ErrInvalidMessage, http.StatusBadRequest},
	{login.ErrInvalidEmail, http.StatusBadRequest},
	{profile.ErrInvalidProfile, http.StatusBadRequest},

	{bike.ErrNotFound, http.StatusNotFound},
	{rental.ErrNotFound, http.StatusNotFound},
	{user.ErrNotFound, http.StatusNotFound},
	{support.ErrNotFound, http.StatusNotFound},
	{session.ErrNotFound, http.StatusNotFound},

	{rental.ErrInsufficientStock, http.StatusConflict},
	{rental.ErrInvalidTransition, http.StatusConflict},
	{rental.ErrStaleStatus, http.StatusConflict},
	{protocols.ErrCheckoutInProgress, http.StatusConflict},
	{checkout.ErrNoPendingOrder, http.StatusConflict},
	{fleet.ErrBikeInUse, http.StatusConflict},

	{gateways.ErrPaymentDeclined, http.StatusPaymentRequired},

	{infra.ErrTimeout, http.StatusGatewayTimeout},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
	{infra.ErrNetwork, http.StatusBadGateway},
	{gateways.ErrAssistantResponse, http.StatusBadGateway},
	{check.ErrReservationsUnavailable, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		// internals stay in the logs
		c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
