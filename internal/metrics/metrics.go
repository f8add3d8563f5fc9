package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CommentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "icomment_comment_operations_total", Help: "Comment store operations"},
		[]string{"operation", "outcome"},
	)
	DiscussionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "icomment_discussion_operations_total", Help: "Discussion store operations"},
		[]string{"operation", "outcome"},
	)
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "icomment_ratelimit_decisions_total", Help: "Rate limiter admit/deny decisions"},
		[]string{"action", "decision"},
	)
	RateLimitStoreFaults = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "icomment_ratelimit_store_faults_total", Help: "Counter store failures handled fail-open"},
	)
)

func MustRegister() {
	prometheus.MustRegister(CommentOps, DiscussionOps, RateLimitDecisions, RateLimitStoreFaults)
}
