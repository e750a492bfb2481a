package descriptions

import (
	"context"
	"strings"

	"relay/internal/constants"
	"relay/internal/logger"
	"relay/pkg/metrics"
)

type Resolver struct {
	dict   *Dictionary
	logger logger.Logger
}

func NewResolver(dict *Dictionary, log logger.Logger) *Resolver {
	metrics.SetDescriptionDictionarySize(dict.Len())
	return &Resolver{
		dict:   dict,
		logger: log,
	}
}

// Resolve turns a description key and its values into display text.
func (r *Resolver) Resolve(ctx context.Context, key string, values map[string]string) (string, bool) {
	if strings.TrimSpace(key) == "" {
		r.logger.ErrorwCtx(ctx, "Description key is blank", "description_key", key)
		metrics.IncDescriptionLookup(constants.StatusDescriptionMissed)
		return "", false
	}

	if key == constants.LegacyDescriptionKey {
		if legacy, ok := values[constants.LegacyDescriptionValue]; ok {
			metrics.IncDescriptionLookup(constants.StatusDescriptionLegacy)
			return legacy, true
		}
	}

	template, ok := r.dict.Lookup(key)
	if !ok {
		r.logger.InfowCtx(ctx, "No filing history description available", "description_key", key)
		metrics.IncDescriptionLookup(constants.StatusDescriptionMissed)
		return "", false
	}

	metrics.IncDescriptionLookup(constants.StatusDescriptionFound)
	return Interpolate(strings.ReplaceAll(template, "*", ""), values), true
}
