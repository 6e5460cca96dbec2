// Sends a signed test checkout event to a running server.
//
// Usage: go run scripts/send_test_webhook.go -url http://localhost:8080/api/payments/webhook \
//	-secret whsec_test_secret -course 1 -user user_2abc
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"course_market_backend/pkg/payment"

	"github.com/google/uuid"
)

func main() {
	url := flag.String("url", "http://localhost:8080/api/payments/webhook", "webhook endpoint")
	secret := flag.String("secret", "whsec_test_secret", "webhook signing secret")
	courseID := flag.String("course", "1", "course id for the session metadata")
	userID := flag.String("user", "user_test", "auth subject id for the session metadata")
	amount := flag.Int64("amount", 4999, "amount in minor units")
	eventType := flag.String("type", payment.EventCheckoutSessionCompleted, "event type to send")
	flag.Parse()

	event := map[string]interface{}{
		"id":   "evt_" + uuid.New().String(),
		"type": *eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":           "cs_" + uuid.New().String(),
				"amount_total": *amount,
				"currency":     "usd",
				"metadata": map[string]string{
					"courseId": *courseID,
					"userId":   *userID,
				},
			},
		},
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("marshal event: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payment.SignatureHeader, payment.Sign(*secret, time.Now(), body))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("send request: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s: %s\n", resp.Status, string(respBody))
}
