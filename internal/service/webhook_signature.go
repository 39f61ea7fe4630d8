package service

import (
	"errors"
	"net/http"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

const headerWebhookID = "svix-id"

var errMissingWebhookID = errors.New("missing webhook id header")

// verifyWebhook checks a signed identity-provider delivery and returns its
// delivery id. The secret may carry the "whsec_" prefix.
func verifyWebhook(wh *svix.Webhook, headers http.Header, body []byte) (string, error) {
	if err := wh.Verify(body, headers); err != nil {
		return "", err
	}
	id := headers.Get(headerWebhookID)
	if id == "" {
		id = headers.Get("webhook-id")
	}
	if id == "" {
		return "", errMissingWebhookID
	}
	return id, nil
}

// SignWebhook produces the signature header value for a delivery. Used by
// tests and local tooling to forge valid requests.
func SignWebhook(secret, id string, at time.Time, body []byte) (string, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return "", err
	}
	return wh.Sign(id, at, body)
}
