package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestRequestIDKeepsOrGenerates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", ok)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(KeyRequestID) == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc-123")
	if got := serve(r, req).Header().Get(KeyRequestID); got != "abc-123" {
		t.Errorf("expected upstream id, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0.0001, 2))
	r.GET("/", ok)

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected codes %v", codes)
	}
}

func TestRateLimitPerIPIsolatesClients(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.0001, 1))
	r.GET("/", ok)

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}
	if from("10.0.0.1") != 200 || from("10.0.0.1") != http.StatusTooManyRequests {
		t.Error("second request from same ip should be limited")
	}
	if from("10.0.0.2") != 200 {
		t.Error("other ip should have its own bucket")
	}

	// 并发访问不应触发 map 竞争
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from(fmt.Sprintf("10.1.0.%d", i))
		}(i)
	}
	wg.Wait()
}

func TestZeroLimitsAreDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0), RateLimitPerIP(0, 0), ConcurrencyLimit(0), Timeout(0))
	r.GET("/", ok)
	for i := 0; i < 5; i++ {
		if code := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code; code != 200 {
			t.Fatalf("request %d: %d", i, code)
		}
	}
}

func TestConcurrencyLimitRejectsWhenCancelled(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	r.GET("/", func(c *gin.Context) {
		close(started)
		<-release
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() { done <- serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while slot is held, got %d", w.Code)
	}

	close(release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first request: %d", code)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	big := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"k":"0123456789"}`))
	if code := serve(r, big).Code; code != http.StatusRequestEntityTooLarge {
		t.Errorf("declared length: got %d", code)
	}

	chunked := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"k":"0123456789"}`))
	chunked.ContentLength = -1
	if code := serve(r, chunked).Code; code != http.StatusBadRequest {
		t.Errorf("chunked body: got %d", code)
	}

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"k":1}`))
	if code := serve(r, small).Code; code != http.StatusOK {
		t.Errorf("small body: got %d", code)
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", ok)

	if code := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code; code != http.StatusGatewayTimeout {
		t.Errorf("slow: got %d", code)
	}
	if code := serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code; code != http.StatusOK {
		t.Errorf("fast: got %d", code)
	}
}

func TestAccessLogMasksSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/x", ok)
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(r, httptest.NewRequest(http.MethodGet, "/x?token=abc&page=2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/bad", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	q, ok := entries[0].ContextMap()["query"].(map[string][]string)
	if !ok {
		t.Fatalf("query field missing: %v", entries[0].ContextMap())
	}
	if q["token"][0] != "****" || q["page"][0] != "2" {
		t.Errorf("unexpected masking %v", q)
	}
	if entries[0].ContextMap()["rid"] == "" {
		t.Error("expected request id in log")
	}
	if entries[1].Level != zap.WarnLevel {
		t.Errorf("4xx should log at warn, got %v", entries[1].Level)
	}
}
