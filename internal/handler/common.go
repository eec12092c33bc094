package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
)

// dbTimeout bounds every database round trip started by a handler.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// serverError logs err with request context and answers a generic 500.
// Driver messages never reach the client.
func serverError(c echo.Context, err error, msg string) error {
	logrus.WithError(err).WithFields(logrus.Fields{
		"method":     c.Request().Method,
		"route":      c.Path(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	}).Error(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// EventPublisher is implemented by service.Publisher.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
	PublishPaymentMade(ctx context.Context, ev queue.PaymentMadeEvent) error
}

// inflight counts event publications started by publishAsync that have not
// finished yet.
var inflight sync.WaitGroup

// publishAsync runs fn in the background with its own deadline so a slow
// broker never delays the response.  Errors are already logged by the
// publisher.
func publishAsync(fn func(ctx context.Context) error) {
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = fn(ctx)
	}()
}

// WaitEvents blocks until every background publication has returned or ctx
// is done.  Call it after the HTTP server has stopped accepting requests.
func WaitEvents(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ImageStore is implemented by storage.MinIOStore.
type ImageStore interface {
	Upload(ctx context.Context, productID string, data []byte, filename string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// nullable maps "" to a JSON null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// principal returns the authenticated actor stored by middleware.JWTAuth.
func principal(c echo.Context) (model.Principal, bool) {
	return middleware.PrincipalFrom(c)
}
