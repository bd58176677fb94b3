package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/game"
)

// CreateTableRequest is the body of POST /tables. Every field is optional.
type CreateTableRequest struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
	RackStyle  string `json:"rack_style"`
}

// ClaimSeatRequest is the body of POST /tables/:id/seats.
type ClaimSeatRequest struct {
	Name string `json:"name"`
}

// SeatResponse tells a player where they sit and how to connect.
type SeatResponse struct {
	TableID  string        `json:"table_id"`
	PlayerID string        `json:"player_id"`
	Token    string        `json:"token"`
	WSPath   string        `json:"ws_path"`
	State    game.Snapshot `json:"state"`
}

func seatResponse(signer *auth.SeatSigner, room *game.Room, player game.PlayerID) (SeatResponse, error) {
	token, err := signer.Issue(room.ID, string(player))
	if err != nil {
		return SeatResponse{}, err
	}
	return SeatResponse{
		TableID:  room.ID,
		PlayerID: string(player),
		Token:    token,
		WSPath:   "/api/v1/tables/" + room.ID + "/ws?token=" + token,
		State:    room.Snapshot(),
	}, nil
}

// CreateTable racks a new table against the computer and seats the caller.
func CreateTable(gm *game.GameManager, signer *auth.SeatSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTableRequest
		// An empty body is a valid request.
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		if req.RackStyle != "" && req.RackStyle != string(game.RackRedYellow) && req.RackStyle != string(game.RackNumbered) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown rack_style"})
			return
		}

		room, player := gm.CreateRoom(game.CreateOptions{
			Difficulty: normalizeDifficulty(req.Difficulty),
			RackStyle:  req.RackStyle,
			PlayerName: normalizeName(req.Name),
		})

		resp, err := seatResponse(signer, room, player)
		if err != nil {
			log.Printf("[API] Failed to issue seat token for table %s: %v", room.ID, err)
			gm.RemoveRoom(room.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue seat"})
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// ClaimSeat seats a second player at an existing table.
func ClaimSeat(gm *game.GameManager, signer *auth.SeatSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ClaimSeatRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		room, player, err := gm.ClaimSeat(c.Param("id"), normalizeName(req.Name))
		switch {
		case errors.Is(err, game.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		case errors.Is(err, game.ErrRoomFull):
			c.JSON(http.StatusConflict, gin.H{"error": "table is full"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim seat"})
			return
		}

		resp, err := seatResponse(signer, room, player)
		if err != nil {
			log.Printf("[API] Failed to issue seat token for table %s: %v", room.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue seat"})
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// GetTable returns the current state of a table. Tables hosted by another
// process are served from their last stored snapshot.
func GetTable(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tableID := c.Param("id")

		room, err := gm.GetRoom(tableID)
		if err == nil {
			c.JSON(http.StatusOK, room.Snapshot())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		snap, ok, err := gm.Store().LoadSnapshot(ctx, tableID)
		if err != nil {
			log.Printf("[API] Snapshot lookup failed for table %s: %v", tableID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "state unavailable"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// GetTableResults returns the recorded outcome of a finished table.
func GetTableResults(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		results, err := gm.Store().TableResults(ctx, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "results unavailable"})
			return
		}
		if len(results) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no results recorded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"table_id": c.Param("id"), "results": results})
	}
}
