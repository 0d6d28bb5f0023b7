// Package clientip extracts client IP addresses from HTTP requests.
//
// GetIP checks, in order, CF-Connecting-IP, DO-Connecting-IP, the leftmost
// X-Forwarded-For entry, and X-Real-IP, then falls back to RemoteAddr.
// Invalid and unspecified addresses are skipped and results are normalized
// with net.IP.String. RemoteIP ignores headers entirely, which is the safe
// choice when the service is exposed directly.
package clientip
