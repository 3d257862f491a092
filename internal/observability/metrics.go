package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	sessionsStartedTotal   prometheus.Counter
	sessionsCompletedTotal prometheus.Counter
	answersScoredTotal     *prometheus.CounterVec
	scoringFailuresTotal   prometheus.Counter
	scoringDurationSeconds prometheus.Histogram
	questionFetchFailures  prometheus.Counter
	timerExpiriesTotal     prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the interview engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interview_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		sessionsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_sessions_started_total",
			Help: "Number of interview sessions that reached in-progress.",
		})

		sessionsCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_sessions_completed_total",
			Help: "Number of interview sessions completed.",
		})

		answersScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_answers_scored_total",
			Help: "Number of answers scored, by submission kind.",
		}, []string{"kind"})

		scoringFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_scoring_failures_total",
			Help: "Number of scoring calls that fell back to the default score.",
		})

		scoringDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "interview_scoring_duration_seconds",
			Help: "Duration of answer scoring requests.",
		})

		questionFetchFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_question_fetch_failures_total",
			Help: "Number of failed question generation requests.",
		})

		timerExpiriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_timer_expiries_total",
			Help: "Number of auto-submissions triggered by timer expiry.",
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			sessionsStartedTotal, sessionsCompletedTotal,
			answersScoredTotal, scoringFailuresTotal, scoringDurationSeconds,
			questionFetchFailures, timerExpiriesTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SessionsStarted counts sessions that reached in-progress.
func SessionsStarted() prometheus.Counter {
	RegisterMetrics()
	return sessionsStartedTotal
}

// SessionsCompleted counts completed sessions.
func SessionsCompleted() prometheus.Counter {
	RegisterMetrics()
	return sessionsCompletedTotal
}

// AnswersScored counts scored answers labelled by submission kind.
func AnswersScored() *prometheus.CounterVec {
	RegisterMetrics()
	return answersScoredTotal
}

// ScoringFailures counts scoring calls that degraded to the fallback score.
func ScoringFailures() prometheus.Counter {
	RegisterMetrics()
	return scoringFailuresTotal
}

// ScoringDuration observes scoring round-trip time.
func ScoringDuration() prometheus.Histogram {
	RegisterMetrics()
	return scoringDurationSeconds
}

// QuestionFetchFailures counts failed question generation requests.
func QuestionFetchFailures() prometheus.Counter {
	RegisterMetrics()
	return questionFetchFailures
}

// TimerExpiries counts auto-submissions caused by countdown expiry.
func TimerExpiries() prometheus.Counter {
	RegisterMetrics()
	return timerExpiriesTotal
}
