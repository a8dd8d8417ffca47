package security

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	g := NewCSRFGenerator([]byte("secret"))

	token, err := g.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tampered := token[:len(token)-1] + "0"
	if token[len(token)-1] == '0' {
		tampered = token[:len(token)-1] + "1"
	}

	tests := []struct {
		name      string
		sessionID string
		token     string
		want      bool
	}{
		{"matching session", "session-1", token, true},
		{"other session", "session-2", token, false},
		{"empty token", "session-1", "", false},
		{"empty session", "", token, false},
		{"tampered token", "session-1", tampered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidateToken(tt.sessionID, tt.token); got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCSRFRequiresSessionID(t *testing.T) {
	g := NewCSRFGenerator([]byte("secret"))
	if _, err := g.GenerateToken(""); err == nil {
		t.Fatal("expected error for empty session ID")
	}
}

func TestCSRFTokensDependOnSecret(t *testing.T) {
	a, _ := NewCSRFGenerator([]byte("one")).GenerateToken("s")
	b, _ := NewCSRFGenerator([]byte("two")).GenerateToken("s")
	if a == b {
		t.Fatal("tokens for different secrets should differ")
	}
}

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request should be blocked")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own bucket")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Allow("a")
	rl.Allow("b")

	if n := rl.Prune(time.Now()); n != 0 {
		t.Fatalf("Prune() removed %d fresh keys, want 0", n)
	}
	if n := rl.Prune(time.Now().Add(3 * time.Minute)); n != 2 {
		t.Fatalf("Prune() removed %d idle keys, want 2", n)
	}
}

func TestIsSecureRequest(t *testing.T) {
	plain := httptest.NewRequest("GET", "http://example.com/", nil)
	if IsSecureRequest(plain) {
		t.Error("plain HTTP request reported as secure")
	}

	proxied := httptest.NewRequest("GET", "http://example.com/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")
	if !IsSecureRequest(proxied) {
		t.Error("X-Forwarded-Proto https should be secure")
	}

	direct := httptest.NewRequest("GET", "https://example.com/", nil)
	direct.TLS = &tls.ConnectionState{}
	if !IsSecureRequest(direct) {
		t.Error("TLS request should be secure")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr without port", nil, "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "10.0.0.1:1", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.1:1", "198.51.100.4"},
		{"unparseable remote", nil, "pipe", "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
