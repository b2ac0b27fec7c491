package observability

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/baxromumarov/pharma-pricer/internal/httpx"
	"github.com/baxromumarov/pharma-pricer/internal/page"
)

const (
	ErrorTimeout  = "timeout"
	ErrorLocator  = "locator"
	ErrorMismatch = "mismatch"
	ErrorNetwork  = "network"
	ErrorStore    = "store"
	ErrorUnknown  = "unknown"
)

func ClassifyError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, page.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	if errors.Is(err, page.ErrNotFound) {
		return ErrorLocator
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		return ErrorNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorNetwork
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "sql") || strings.Contains(msg, "database") {
		return ErrorStore
	}
	return ErrorUnknown
}
