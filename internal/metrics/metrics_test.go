package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestHandlerExposesTableMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", Handler())

	RecordTick(2 * time.Millisecond)
	RecordShot(true)
	RecordShot(false)
	RecordFoul()
	RecordDropped("rate_limit")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, name := range []string{
		"billiards_tick_duration_seconds",
		`billiards_shots_total{actor="computer"}`,
		`billiards_shots_total{actor="human"}`,
		"billiards_fouls_total",
		`billiards_websocket_messages_dropped_total{reason="rate_limit"}`,
	} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected %s in metrics output", name)
		}
	}
}
