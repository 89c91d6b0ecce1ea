package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errInvalidSignature = errors.New("invalid webhook signature")

// verifyStripeSignature checks a Stripe-Signature header
// ("t=<unix>,v1=<hex hmac>") against the raw payload. The signed string is
// "<timestamp>.<payload>".
func verifyStripeSignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if header == "" {
		return fmt.Errorf("%w: missing signature header", errInvalidSignature)
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed signature header", errInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", errInvalidSignature)
	}
	if age := time.Since(time.Unix(ts, 0)); age > tolerance || age < -tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", errInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return errInvalidSignature
}

// verifyHubspotSignature checks an X-HubSpot-Signature-v3 header: base64
// HMAC-SHA256 over method + uri + body + timestamp, with the timestamp
// (milliseconds) carried in X-HubSpot-Request-Timestamp.
func verifyHubspotSignature(method, uri string, body []byte, timestamp, signature, secret string, tolerance time.Duration) error {
	if signature == "" || timestamp == "" {
		return fmt.Errorf("%w: missing signature headers", errInvalidSignature)
	}

	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", errInvalidSignature)
	}
	if age := time.Since(time.UnixMilli(ms)); age > tolerance || age < -tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", errInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method))
	mac.Write([]byte(uri))
	mac.Write(body)
	mac.Write([]byte(timestamp))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errInvalidSignature
	}
	return nil
}
