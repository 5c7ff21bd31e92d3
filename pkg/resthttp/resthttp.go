package resthttp

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofrs/uuid"
)

const headerKeyRequestID = "X-Request-Id"

// NewClient builds a resty client for an upstream json API. Every
// request carries a fresh request id so upstream logs can be matched
// against ours.
func NewClient(endPoint string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Charset", "utf-8").
		SetBaseURL(endPoint).
		SetTimeout(timeout)

	client.OnBeforeRequest(func(c *resty.Client, r *resty.Request) error {
		if r.Header.Get(headerKeyRequestID) == "" {
			r.SetHeader(headerKeyRequestID, uuid.Must(uuid.NewV4()).String())
		}

		return nil
	})

	return client
}
