package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	PairsDispatched   uint64            `json:"pairs_dispatched"`
	RecordsWritten    uint64            `json:"records_written"`
	Snapshots         uint64            `json:"snapshots"`
	ErrorsTotal       uint64            `json:"errors_total"`
	PairSecondsAvg    float64           `json:"pair_seconds_avg"`
	Outcomes          map[string]uint64 `json:"outcomes,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	pairsDispatched uint64
	recordsWritten  uint64
	snapshots       uint64
	errorsTotal     uint64

	pairCount uint64
	pairNanos uint64

	statsMu           sync.Mutex
	outcomes          = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncPairDispatched(_ string) {
	atomic.AddUint64(&pairsDispatched, 1)
}

func IncRecordWritten(_ string) {
	atomic.AddUint64(&recordsWritten, 1)
}

func IncSnapshot(_ string) {
	atomic.AddUint64(&snapshots, 1)
}

// IncOutcome counts a finished pair by its outcome label and feeds the
// prometheus counter for site.
func IncOutcome(site, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	statsMu.Lock()
	outcomes[outcome]++
	statsMu.Unlock()
	pairsTotal.WithLabelValues(site, outcome).Inc()
}

func ObservePairDuration(site string, seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&pairCount, 1)
	atomic.AddUint64(&pairNanos, uint64(seconds*1e9))
	pairSeconds.WithLabelValues(site).Observe(seconds)
}

func IncError(errType, component string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	outcomesCopy := copyMap(outcomes)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&pairCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&pairNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		PairsDispatched:   atomic.LoadUint64(&pairsDispatched),
		RecordsWritten:    atomic.LoadUint64(&recordsWritten),
		Snapshots:         atomic.LoadUint64(&snapshots),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		PairSecondsAvg:    avg,
		Outcomes:          outcomesCopy,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
