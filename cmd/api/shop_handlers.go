package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/infra/auth"
	"github.com/giovaniif/motorent/use_cases/cancel"
	"github.com/giovaniif/motorent/use_cases/catalog"
	"github.com/giovaniif/motorent/use_cases/check"
	"github.com/giovaniif/motorent/use_cases/checkout"
	"github.com/giovaniif/motorent/use_cases/login"
	"github.com/giovaniif/motorent/use_cases/profile"
	"github.com/giovaniif/motorent/use_cases/quote"
	"github.com/giovaniif/motorent/use_cases/selection"
	"github.com/giovaniif/motorent/use_cases/support"
)

const (
	sessionHeader     = "X-Session-ID"
	idempotencyHeader = "Idempotency-Key"
)

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", errBadRequest, raw)
	}
	return t, nil
}

func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err)
	}
	return nil
}

func sessionId(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.GetHeader(sessionHeader))
	if id == "" {
		return "", errMissingSession
	}
	return id, nil
}

func claims(c *gin.Context) *auth.Claims {
	cl, _ := auth.FromContext(c)
	return cl
}

// resolveDates completes the requested dates the same way the catalog does.
func (a *App) resolveDates(c *gin.Context, fromRaw, toRaw string) (time.Time, time.Time, error) {
	from, err := parseDate(fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	sel, err := a.Selection.Resolve(c.Request.Context(), c.GetHeader(sessionHeader), selection.Input{From: from, To: to}, time.Now())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return sel.From, sel.To, nil
}

type loginRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

func (a *App) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	out, err := a.Login.Login(c.Request.Context(), login.Input{Email: req.Email, Name: req.Name})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type selectionRequest struct {
	From     string `json:"from" binding:"required"`
	To       string `json:"to" binding:"required"`
	Location string `json:"location"`
}

func (a *App) saveSelection(c *gin.Context) {
	id, err := sessionId(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req selectionRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	from, err := parseDate(req.From)
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	sel, err := a.Selection.Save(c.Request.Context(), id, selection.Input{From: from, To: to, Location: req.Location})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

func (a *App) getSelection(c *gin.Context) {
	id, err := sessionId(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sel, err := a.Selection.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

func (a *App) listBikes(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := a.Catalog.List(c.Request.Context(), catalog.Input{
		SessionId:     c.GetHeader(sessionHeader),
		From:          from,
		To:            to,
		Location:      c.Query("location"),
		Category:      bike.Category(c.Query("type")),
		Cylinder:      bike.CylinderClass(c.Query("cylinder")),
		OnlyAvailable: c.Query("available") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a *App) getBike(c *gin.Context) {
	b, err := a.Fleet.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type availabilityResponse struct {
	BikeId            string    `json:"bikeId"`
	From              time.Time `json:"from"`
	To                time.Time `json:"to"`
	NumDays           int32     `json:"numDays"`
	AvailableQuantity int32     `json:"availableQuantity"`
	IsAvailable       bool      `json:"isAvailable"`
	Quantity          int32     `json:"quantity"`
	TotalPrice        float64   `json:"totalPrice"`
}

func (a *App) availability(c *gin.Context) {
	from, to, err := a.resolveDates(c, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	quantity := int64(1)
	if raw := c.Query("quantity"); raw != "" {
		if quantity, err = strconv.ParseInt(raw, 10, 32); err != nil {
			respondError(c, fmt.Errorf("%w: quantity %q", errBadRequest, raw))
			return
		}
	}
	out, err := a.Check.Check(c.Request.Context(), check.Input{BikeId: c.Param("id"), From: from, To: to, Quantity: int32(quantity)})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, availabilityResponse{
		BikeId:            out.Bike.Id,
		From:              out.Range.Start,
		To:                out.Range.End,
		NumDays:           out.NumDays,
		AvailableQuantity: out.Result.AvailableQuantity,
		IsAvailable:       out.Result.IsAvailable,
		Quantity:          out.Quantity,
		TotalPrice:        availability.Price(out.Bike.PricePerDay, out.Range, out.Quantity, nil),
	})
}

type quoteRequest struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Quantity int32    `json:"quantity" binding:"required"`
	Options  []string `json:"options"`
}

func (a *App) quote(c *gin.Context) {
	id, err := sessionId(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req quoteRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	from, to, err := a.resolveDates(c, req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	order, err := a.Quote.Quote(c.Request.Context(), quote.Input{
		SessionId: id,
		BikeId:    c.Param("id"),
		From:      from,
		To:        to,
		Quantity:  req.Quantity,
		Options:   req.Options,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (a *App) pendingOrder(c *gin.Context) {
	id, err := sessionId(c)
	if err != nil {
		respondError(c, err)
		return
	}
	order, err := a.Quote.Pending(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (a *App) checkout(c *gin.Context) {
	id, err := sessionId(c)
	if err != nil {
		respondError(c, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
	if key == "" {
		respondError(c, errMissingKey)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), a.CheckoutTimeout)
	defer cancel()

	out, err := a.Checkout.Checkout(ctx, checkout.Input{IdempotencyKey: key, SessionId: id, UserId: claims(c).Subject})
	if err != nil {
		respondError(c, err)
		return
	}
	if out.Replayed {
		c.JSON(http.StatusOK, out)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (a *App) myRentals(c *gin.Context) {
	rentals, err := a.History.List(c.Request.Context(), claims(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rentals)
}

func (a *App) getProfile(c *gin.Context) {
	u, err := a.Profile.Get(c.Request.Context(), claims(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (a *App) updateProfile(c *gin.Context) {
	var req profile.Input
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	u, err := a.Profile.Update(c.Request.Context(), claims(c).Subject, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (a *App) cancelOwn(c *gin.Context) {
	r, err := a.Cancel.Cancel(c.Request.Context(), cancel.Input{RentalId: c.Param("id"), OwnerId: claims(c).Subject})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type chatRequest struct {
	Query string `json:"query"`
}

func (a *App) chat(c *gin.Context) {
	var req chatRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	answer, err := a.Support.Ask(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

type locationsRequest struct {
	UserLocation string `json:"userLocation"`
}

func (a *App) suggestLocations(c *gin.Context) {
	var req locationsRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	suggestions, err := a.Support.SuggestLocations(c.Request.Context(), req.UserLocation)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

type messageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (a *App) submitMessage(c *gin.Context) {
	var req messageRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	// signing in is optional here; a valid token links the message to the user
	var userId string
	if raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		if cl, err := a.Tokens.Parse(raw); err == nil {
			userId = cl.Subject
		}
	}
	m, err := a.Support.Submit(c.Request.Context(), support.MessageInput{
		UserId:  userId,
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}
