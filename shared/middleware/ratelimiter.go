package middleware

import (
	"net"
	"net/http"

	"github.com/itchan-dev/agora/shared/errors"
	"github.com/itchan-dev/agora/shared/middleware/ratelimiter"
	"github.com/itchan-dev/agora/shared/utils"
)

func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.UserRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetUserIdentity keys limits by caller identity; requires NeedIdentity upstream.
func GetUserIdentity(r *http.Request) (string, error) {
	id, ok := GetUserIdFromContext(r)
	if !ok {
		return "", errors.InvalidInput("missing " + UserIdHeader)
	}
	return "user_" + id, nil
}

// GetIP extracts the client IP from RemoteAddr only; forwarding headers are not trusted.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", errors.InvalidInput("invalid IP address: " + ip)
	}
	return ip, nil
}
