package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/pharma-pricer/internal/httpx"
	"github.com/baxromumarov/pharma-pricer/internal/page"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ErrorUnknown},
		{fmt.Errorf("wait: %w", page.ErrTimeout), ErrorTimeout},
		{context.DeadlineExceeded, ErrorTimeout},
		{fmt.Errorf("find: %w", page.ErrNotFound), ErrorLocator},
		{&httpx.FetchError{Status: 503, Err: errors.New("unavailable")}, ErrorNetwork},
		{errors.New("sql: database is closed"), ErrorStore},
		{errors.New("something else"), ErrorUnknown},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ClassifyError(tt.err), "%v", tt.err)
	}
}

func TestSnapshotCounts(t *testing.T) {
	before := Snapshot()

	IncPairDispatched("olimpica_co")
	IncOutcome("olimpica_co", "available")
	IncRecordWritten("olimpica_co")
	IncError(ErrorTimeout, "dispatcher")
	ObservePairDuration("olimpica_co", 2)

	after := Snapshot()
	require.Equal(t, before.PairsDispatched+1, after.PairsDispatched)
	require.Equal(t, before.RecordsWritten+1, after.RecordsWritten)
	require.Equal(t, before.Outcomes["available"]+1, after.Outcomes["available"])
	require.Equal(t, before.ErrorsByType[ErrorTimeout]+1, after.ErrorsByType[ErrorTimeout])
	require.Positive(t, after.PairSecondsAvg)
}

func TestHandlerExposesPairCounter(t *testing.T) {
	IncOutcome("cafam_co", "not_found")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `pricer_pairs_total{outcome="not_found",site="cafam_co"}`)
}
