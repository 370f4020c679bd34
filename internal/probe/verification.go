package probe

import (
	"fmt"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

const scoreEpsilon = 1e-9

// Verify checks the response invariants of one search and returns every
// violation found. An empty result means the response is consistent.
func Verify(q model.SearchQuery, res model.SearchResult) []string {
	var v []string
	add := func(format string, args ...any) { v = append(v, fmt.Sprintf(format, args...)) }

	if res.Page != q.Page {
		add("page %d echoed as %d", q.Page, res.Page)
	}
	if res.Limit < 1 || res.Limit > q.Limit {
		add("limit %d echoed as %d", q.Limit, res.Limit)
	}
	if len(res.Jobs) > res.Limit {
		add("%d jobs exceed limit %d", len(res.Jobs), res.Limit)
	}
	if want := res.Page*res.Limit < res.TotalCount; res.HasMore != want {
		add("has_more=%t but page*limit=%d and total_count=%d", res.HasMore, res.Page*res.Limit, res.TotalCount)
	}
	if res.QueryTimeMs < 0 {
		add("negative query_time %d", res.QueryTimeMs)
	}

	for i, j := range res.Jobs {
		if j.RelevanceScore < -scoreEpsilon || j.RelevanceScore > 1+scoreEpsilon {
			add("job %d score %.4f out of [0,1]", i, j.RelevanceScore)
		}
		if i > 0 && j.RelevanceScore > res.Jobs[i-1].RelevanceScore+scoreEpsilon {
			add("job %d score %.4f above job %d score %.4f", i, j.RelevanceScore, i-1, res.Jobs[i-1].RelevanceScore)
		}
		if strings.TrimSpace(j.Source) == "" {
			add("job %d has no source", i)
		}
	}

	for _, e := range res.Errors {
		if e.Source == model.AggregatorSource {
			continue
		}
		if st, ok := res.Sources[e.Source]; !ok || st.Success {
			add("error for %s not reflected in sources", e.Source)
		}
	}
	return v
}
