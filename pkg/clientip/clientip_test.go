package clientip_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/leaderboard/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "remote addr", remoteAddr: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "cloudflare first", headers: map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"}, want: "1.1.1.1"},
		{name: "leftmost forwarded", headers: map[string]string{"X-Forwarded-For": "3.3.3.3, 10.0.0.2"}, want: "3.3.3.3"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "4.4.4.4"}, want: "4.4.4.4"},
		{name: "invalid skipped", headers: map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "5.5.5.5"}, want: "5.5.5.5"},
		{name: "unspecified skipped", headers: map[string]string{"CF-Connecting-IP": "0.0.0.0"}, remoteAddr: "10.0.0.3:80", want: "10.0.0.3"},
		{name: "ipv6", headers: map[string]string{"X-Real-IP": "2001:db8::1"}, want: "2001:db8::1"},
		{name: "ipv6 remote", remoteAddr: "[::1]:8080", want: "::1"},
		{name: "unparsable remote", remoteAddr: "pipe", want: "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			if tt.remoteAddr != "" {
				r.RemoteAddr = tt.remoteAddr
			}
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(r))
		})
	}
}

func TestRemoteIP_IgnoresHeaders(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.1.1:5000"
	r.Header.Set("X-Forwarded-For", "6.6.6.6")

	assert.Equal(t, "10.1.1.1", clientip.RemoteIP(r))
}
