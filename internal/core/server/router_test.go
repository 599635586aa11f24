package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRouterRecoversAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)
	r := NewRouter(zap.New(core), func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError || w.Body.String() != `{"error":"internal server error"}` {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
	if logs.Len() == 0 {
		t.Error("expected panic to be logged")
	}
}

func TestNewRouterAllowsAuthorizationHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop(), func(c *gin.Context, _ any) { c.AbortWithStatus(500) })
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin: %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestBuildServer(t *testing.T) {
	srv := BuildServer(Addr("127.0.0.1", 3001), http.NotFoundHandler(), time.Second, 2*time.Second, 3*time.Second)
	if srv.Addr != "127.0.0.1:3001" || srv.ReadTimeout != time.Second || srv.IdleTimeout != 3*time.Second {
		t.Errorf("unexpected server %+v", srv)
	}
}
