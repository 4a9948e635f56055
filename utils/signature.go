package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// EmptyBodyHash is hex(SHA256("")), used when a signed request has no body.
const EmptyBodyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// BuildStringToSign returns the canonical form internal callers sign.
// Format: METHOD\nPATH\nTIMESTAMP\nSHA256(body)
//
// Parameters:
//   - method: HTTP method in uppercase (DELETE for an owner purge)
//   - path: request path without host or query string
//   - timestamp: Unix seconds, the same value sent in X-Timestamp
//   - bodyHash: hex SHA256 of the body, EmptyBodyHash when there is none
func BuildStringToSign(method, path string, timestamp int64, bodyHash string) string {
	return fmt.Sprintf("%s\n%s\n%d\n%s", method, path, timestamp, bodyHash)
}

// ComputeHMACSHA256 returns the hex-encoded HMAC-SHA256 of message (64 characters).
func ComputeHMACSHA256(secretKey, message string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// SignRequest produces the signature a calling service puts after
// "HMAC <caller>:" in the Authorization header. ServiceAuthMiddleware
// recomputes it from the received request and compares the two.
//
// Parameters:
//   - secretKey: the shared INTERNAL_HMAC_SECRET
//   - method, path, timestamp: as passed to BuildStringToSign
//   - body: raw request body, may be nil
func SignRequest(secretKey, method, path string, timestamp int64, body []byte) string {
	return ComputeHMACSHA256(secretKey, BuildStringToSign(method, path, timestamp, HashBodySHA256(body)))
}

// SecureCompare compares two signatures in constant time.
// Signatures must never be compared with ==.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// HashBodySHA256 returns the hex SHA256 of body, or EmptyBodyHash for an
// empty one.
func HashBodySHA256(body []byte) string {
	if len(body) == 0 {
		return EmptyBodyHash
	}
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}

// Abs is used for the clock skew check on X-Timestamp.
func Abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
