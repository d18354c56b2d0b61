package harness

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultTimeout bounds a single request of the fiber transport.
const DefaultTimeout = 2 * time.Minute

// Response is what came back for a Request. Any status counts as a response.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Transport performs harness requests. An error means no response was received.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// FiberTransport sends requests with the fiber HTTP client.
type FiberTransport struct {
	Timeout time.Duration
}

// NewFiberTransport returns a transport with DefaultTimeout.
func NewFiberTransport() *FiberTransport {
	return &FiberTransport{Timeout: DefaultTimeout}
}

func (t *FiberTransport) Do(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	var a *fiber.Agent
	switch req.Method {
	case http.MethodGet:
		a = fiber.Get(req.URL)
	case http.MethodPost:
		a = fiber.Post(req.URL).Body(req.Body).ContentType(fiber.MIMEApplicationJSON)
	default:
		return Response{}, fmt.Errorf("unsupported method %s", req.Method)
	}
	// Send the path as given; escaped separators inside a segment stay escaped.
	a.Request().URI().DisablePathNormalizing = true

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	a.Timeout(timeout)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return Response{}, fmt.Errorf("%s %s: %w", req.Method, req.URL, errors.Join(errs...))
	}
	return Response{Status: code, Body: body}, nil
}

var _ Transport = (*FiberTransport)(nil)
