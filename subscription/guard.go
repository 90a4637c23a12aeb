package subscription

import (
	"github.com/goliatone/go-errors"
)

// ErrFeatureNotAllowed is returned by Require when the current tier cannot
// use the requested feature.
var ErrFeatureNotAllowed = errors.New("feature is not available on the current subscription tier", errors.CategoryAuthz).
	WithTextCode("FEATURE_NOT_ALLOWED").
	WithCode(errors.CodeForbidden)

// Require returns nil when the resolver grants the feature, otherwise
// ErrFeatureNotAllowed annotated with the feature and tier.
func Require(resolver *Resolver, feature string) error {
	if resolver == nil {
		return ErrFeatureNotAllowed.WithMetadata(map[string]any{
			"feature": feature,
			"reason":  "no resolver configured",
		})
	}

	if resolver.HasFeatureAccess(feature) {
		return nil
	}

	return ErrFeatureNotAllowed.WithMetadata(map[string]any{
		"feature": feature,
		"tier":    resolver.Status().Tier,
	})
}
