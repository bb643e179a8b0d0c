package stream

import (
	"net/http"
	"testing"
)

func TestConnLimiterPerIP(t *testing.T) {
	limiter := NewConnLimiter(2, 100)

	if !limiter.TryAcquire("192.168.1.1") || !limiter.TryAcquire("192.168.1.1") {
		t.Fatal("first two connections should be allowed")
	}
	if limiter.TryAcquire("192.168.1.1") {
		t.Error("third connection from same IP should be rejected")
	}
	if !limiter.TryAcquire("192.168.1.2") {
		t.Error("connection from different IP should be allowed")
	}

	limiter.Release("192.168.1.1")
	if !limiter.TryAcquire("192.168.1.1") {
		t.Error("connection should be allowed after release")
	}

	total, ips := limiter.Stats()
	if total != 3 || ips != 2 {
		t.Errorf("Stats() = %d, %d; want 3, 2", total, ips)
	}
}

func TestConnLimiterTotal(t *testing.T) {
	limiter := NewConnLimiter(0, 2)
	limiter.TryAcquire("a")
	limiter.TryAcquire("b")
	if limiter.TryAcquire("c") {
		t.Error("total limit not enforced")
	}
	limiter.Release("a")
	limiter.Release("a")
	if total, _ := limiter.Stats(); total != 1 {
		t.Errorf("total = %d after over-release, want 1", total)
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		remote string
		want   string
	}{
		{"remote addr", http.Header{}, "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded for", http.Header{"X-Forwarded-For": {"1.2.3.4, 10.0.0.2"}}, "10.0.0.1:5555", "1.2.3.4"},
		{"real ip", http.Header{"X-Real-Ip": {" 5.6.7.8 "}}, "10.0.0.1:5555", "5.6.7.8"},
		{"no port", http.Header{}, "10.0.0.1", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{Header: tt.header, RemoteAddr: tt.remote}
			if got := realIP(r); got != tt.want {
				t.Errorf("realIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
