// Package clientip extracts real client IP addresses from HTTP requests.
//
// It handles proxy headers in priority order to determine the actual
// client IP, which matters for rate limiting and security logging behind
// proxies, load balancers, or CDNs:
//
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// All candidates are validated and normalized; malformed headers and the
// unspecified address are skipped. GetIP never panics and always returns
// a string, falling back to the raw RemoteAddr.
package clientip
