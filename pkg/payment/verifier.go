package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SignatureHeader carries the provider signature on webhook deliveries.
const SignatureHeader = "Stripe-Signature"

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrSignatureExpired = errors.New("signature timestamp outside tolerance")
	ErrMalformedPayload = errors.New("malformed event payload")
)

// Verifier authenticates webhook deliveries. The HMAC is computed over the
// raw, unparsed body; parsing before verifying would invalidate the check.
// The secret can be swapped at runtime for rotation via config reload.
type Verifier struct {
	mu        sync.RWMutex
	secret    []byte
	tolerance time.Duration

	now func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	return &Verifier{
		secret:    []byte(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

func (v *Verifier) UpdateSecret(secret string) {
	v.mu.Lock()
	v.secret = []byte(secret)
	v.mu.Unlock()
}

// VerifyAndParse checks the signature header against the raw body and only
// then decodes the event. The header format is "t=<unix>,v1=<hex hmac>";
// several v1 entries may be present during secret rotation and any match
// passes.
func (v *Verifier) VerifyAndParse(body []byte, header string) (*Event, error) {
	if strings.TrimSpace(header) == "" {
		return nil, ErrMissingSignature
	}

	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return nil, err
	}

	if v.tolerance > 0 {
		age := v.now().Sub(time.Unix(timestamp, 0))
		if age > v.tolerance || age < -v.tolerance {
			return nil, ErrSignatureExpired
		}
	}

	v.mu.RLock()
	expected := computeSignature(v.secret, timestamp, body)
	v.mu.RUnlock()

	matched := false
	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, ErrMalformedPayload
	}
	if event.Type == "" {
		return nil, ErrMalformedPayload
	}
	return &event, nil
}

// Sign produces a signature header for the given body, as the provider
// would. Used by tests and the webhook replay script.
func Sign(secret string, at time.Time, body []byte) string {
	sig := computeSignature([]byte(secret), at.Unix(), body)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func computeSignature(secret []byte, timestamp int64, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}

func parseSignatureHeader(header string) (int64, [][]byte, error) {
	var timestamp int64 = -1
	var signatures [][]byte

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == -1 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}
