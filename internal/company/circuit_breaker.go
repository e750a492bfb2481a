package company

import (
	"context"
	stderrors "errors"
	"fmt"

	"relay/pkg/circuitbreaker"
	"relay/pkg/errors"
	"relay/pkg/models"
)

type lookupResult struct {
	details models.CompanyDetails
	found   bool
}

// CircuitBreakerLookup stops calling the company service while it keeps
// failing. Unreachable or failing servers count against the breaker; client
// rejections do not.
type CircuitBreakerLookup struct {
	lookup Lookup
	cb     *circuitbreaker.Wrapper
}

func NewCircuitBreakerLookup(lookup Lookup, cfg circuitbreaker.Config) *CircuitBreakerLookup {
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || !(errors.IsRetryable(err) || stderrors.Is(err, errors.ErrRemoteUnavailable))
	}
	return &CircuitBreakerLookup{
		lookup: lookup,
		cb:     circuitbreaker.NewWrapper(cfg),
	}
}

func (l *CircuitBreakerLookup) GetCompanyDetails(ctx context.Context, companyNumber string) (models.CompanyDetails, bool, error) {
	result, err := l.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		details, found, err := l.lookup.GetCompanyDetails(ctx, companyNumber)
		if err != nil {
			return nil, err
		}
		return lookupResult{details: details, found: found}, nil
	})

	l.cb.RecordRequest(err == nil)

	if err != nil {
		if circuitbreaker.IsRejection(err) {
			return models.CompanyDetails{}, false, errors.Retryable(errors.ErrRemoteUnavailable, lookupContext,
				fmt.Errorf("circuit breaker %s rejected request: %w", l.cb.Name(), err))
		}
		if ctx.Err() != nil && err == ctx.Err() {
			return models.CompanyDetails{}, false, errors.Retryable(errors.ErrRemoteUnavailable, lookupContext, err)
		}
		return models.CompanyDetails{}, false, err
	}

	r := result.(lookupResult)
	return r.details, r.found, nil
}

func (l *CircuitBreakerLookup) State() string {
	return l.cb.State().String()
}
