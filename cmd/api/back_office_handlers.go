package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/user"
	"github.com/giovaniif/motorent/use_cases/board"
	"github.com/giovaniif/motorent/use_cases/cancel"
	"github.com/giovaniif/motorent/use_cases/pickup"
	"github.com/giovaniif/motorent/use_cases/returns"
	"github.com/giovaniif/motorent/use_cases/users"
)

func (a *App) board(c *gin.Context) {
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
	out, err := a.Board.List(c.Request.Context(), board.Input{From: from, To: to, Location: c.Query("location")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a *App) summary(c *gin.Context) {
	out, err := a.Board.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a *App) pickup(c *gin.Context) {
	r, err := a.Pickup.Confirm(c.Request.Context(), pickup.Input{RentalId: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *App) complete(c *gin.Context) {
	r, err := a.Return.Complete(c.Request.Context(), returns.Input{RentalId: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *App) cancel(c *gin.Context) {
	r, err := a.Cancel.Cancel(c.Request.Context(), cancel.Input{RentalId: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *App) fleetList(c *gin.Context) {
	bikes, err := a.Fleet.List(c.Request.Context(), bike.Filter{
		Location: c.Query("location"),
		Category: bike.Category(c.Query("type")),
		Cylinder: bike.CylinderClass(c.Query("cylinder")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bikes)
}

func (a *App) fleetCreate(c *gin.Context) {
	var b bike.Bike
	if err := bindJSON(c, &b); err != nil {
		respondError(c, err)
		return
	}
	created, err := a.Fleet.Create(c.Request.Context(), b)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (a *App) fleetUpdate(c *gin.Context) {
	var b bike.Bike
	if err := bindJSON(c, &b); err != nil {
		respondError(c, err)
		return
	}
	updated, err := a.Fleet.Update(c.Request.Context(), c.Param("id"), b)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *App) fleetDelete(c *gin.Context) {
	if err := a.Fleet.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) listUsers(c *gin.Context) {
	all, err := a.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

type roleRequest struct {
	Role user.Role `json:"role" binding:"required"`
}

func (a *App) changeRole(c *gin.Context) {
	var req roleRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	u, err := a.Users.ChangeRole(c.Request.Context(), users.Input{ActorId: claims(c).Subject, UserId: c.Param("id"), Role: req.Role})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (a *App) listMessages(c *gin.Context) {
	messages, err := a.Support.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (a *App) setMessageStatus(c *gin.Context) {
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	m, err := a.Support.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type replyRequest struct {
	Reply string `json:"reply"`
}

func (a *App) replyMessage(c *gin.Context) {
	var req replyRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	m, err := a.Support.Reply(c.Request.Context(), c.Param("id"), req.Reply)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
