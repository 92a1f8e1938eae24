package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakePool struct{ acquired, idle, total int32 }

func (f fakePool) AcquiredConns() int32 { return f.acquired }
func (f fakePool) IdleConns() int32     { return f.idle }
func (f fakePool) TotalConns() int32    { return f.total }

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakePool{acquired: 2, idle: 3, total: 5})
	if got := testutil.ToFloat64(DBPoolConnsOpen); got != 5 {
		t.Errorf("open = %v, want 5", got)
	}
	if got := testutil.ToFloat64(DBPoolConnsAcquired); got != 2 {
		t.Errorf("acquired = %v, want 2", got)
	}
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/v1/ngos/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/ngos/:id", "200"))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ngos/42", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/ngos/:id", "200"))
	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, got %v", after-before)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "donamatch_http_requests_total") {
		t.Error("expected donamatch_http_requests_total in /metrics output")
	}
}
