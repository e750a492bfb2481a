package broker

import (
	"strconv"

	"relay/internal/config"
	"relay/pkg/errors"
)

type Route int

const (
	RouteCommit Route = iota
	RouteRetry
	RouteError
)

func (r Route) String() string {
	switch r {
	case RouteRetry:
		return "retry"
	case RouteError:
		return "error"
	default:
		return "commit"
	}
}

type Decision struct {
	Route Route
	Topic string
	// NextAttempt is the attempt number carried by a message sent to the
	// retry topic.
	NextAttempt int
	Reason      string
}

// Decide routes the outcome of delivery attempt number attempt. Retryable
// failures go to the retry topic until the attempt limit is reached; every
// other failure goes to the error topic.
func Decide(cfg config.KafkaConfig, attempt int, err error) Decision {
	if err == nil {
		return Decision{Route: RouteCommit}
	}

	if errors.IsRetryable(err) {
		if attempt < cfg.Retry.MaxAttempts {
			return Decision{
				Route:       RouteRetry,
				Topic:       cfg.RetryTopic(),
				NextAttempt: attempt + 1,
				Reason:      "retryable",
			}
		}
		return Decision{Route: RouteError, Topic: cfg.ErrorTopic(), Reason: "max_retries_exceeded"}
	}

	return Decision{Route: RouteError, Topic: cfg.ErrorTopic(), Reason: "non_retryable"}
}

// attemptFromHeader returns the delivery attempt recorded in the
// retry-attempt header; first deliveries carry none and count as 1.
func attemptFromHeader(value string) int {
	attempt, err := strconv.Atoi(value)
	if err != nil || attempt < 1 {
		return 1
	}
	return attempt
}
