package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCollector_Twice(t *testing.T) {
	// 独立 Registry，重复创建不应 panic
	_ = NewCollector("clinic")
	_ = NewCollector("clinic")
}

func TestObserveBooking(t *testing.T) {
	c := NewCollector("clinic")
	c.ObserveBooking("book", ResultSuccess)
	c.ObserveBooking("book", ResultSuccess)
	c.ObserveBooking("book", ResultRejected)

	if got := testutil.ToFloat64(c.BookingOperationsTotal.WithLabelValues("book", ResultSuccess)); got != 2 {
		t.Errorf("期望 book/success=2，实际=%v", got)
	}
	if got := testutil.ToFloat64(c.BookingOperationsTotal.WithLabelValues("book", ResultRejected)); got != 1 {
		t.Errorf("期望 book/rejected=1，实际=%v", got)
	}
}

func TestObserve_NilCollector(t *testing.T) {
	var c *Collector
	c.ObserveBooking("cancel", ResultSuccess)
	c.ObserveScheduleCreated()
}

func TestHandler_ExposesBookingMetrics(t *testing.T) {
	c := NewCollector("clinic")
	c.ObserveScheduleCreated()
	c.ObserveBooking("cancel", ResultSuccess)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "clinic_booking_schedules_created_total 1") {
		t.Error("响应中缺少 schedules_created_total")
	}
	if !strings.Contains(body, `clinic_booking_operations_total{operation="cancel",result="success"} 1`) {
		t.Error("响应中缺少 operations_total")
	}
}
