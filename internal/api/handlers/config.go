package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
)

// GetConfig returns the table constants a client needs to draw and aim
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"table_width":  game.TableWidth,
			"table_height": game.TableHeight,
			"ball_radius":  game.BallRadius,
			"power_scale":  game.PowerScale,
			"min_power":    game.MinPower,
			"tick_rate":    cfg.TickRate,
			"difficulty":   cfg.AIDifficulty,
			"rack_style":   cfg.RackStyle,
		})
	}
}
