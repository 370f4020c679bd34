package service

import "sync"

type sourceCounters struct {
	Requests int `json:"requests"`
	Failures int `json:"failures"`
	Jobs     int `json:"jobs"`
}

// searchStats accumulates process-lifetime counters for /stats.
type searchStats struct {
	mu          sync.Mutex
	searches    int
	outcomes    map[string]int
	lastQueryMs int64
	totalMs     int64
	sources     map[string]*sourceCounters
}

func newSearchStats() *searchStats {
	return &searchStats{
		outcomes: make(map[string]int),
		sources:  make(map[string]*sourceCounters),
	}
}

func (st *searchStats) recordSearch(outcome string, queryMs int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.searches++
	st.outcomes[outcome]++
	st.lastQueryMs = queryMs
	st.totalMs += queryMs
}

func (st *searchStats) recordSource(source string, jobs int, ok bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	c, found := st.sources[source]
	if !found {
		c = &sourceCounters{}
		st.sources[source] = c
	}
	c.Requests++
	c.Jobs += jobs
	if !ok {
		c.Failures++
	}
}

func (st *searchStats) fill(out map[string]interface{}) {
	st.mu.Lock()
	defer st.mu.Unlock()

	out["searches"] = st.searches
	outcomes := make(map[string]int, len(st.outcomes))
	for k, v := range st.outcomes {
		outcomes[k] = v
	}
	out["outcomes"] = outcomes
	out["lastQueryMs"] = st.lastQueryMs
	if st.searches > 0 {
		out["avgQueryMs"] = float64(st.totalMs) / float64(st.searches)
	}

	perSource := make(map[string]sourceCounters, len(st.sources))
	for name, c := range st.sources {
		perSource[name] = *c
	}
	out["sourceTotals"] = perSource
}
