// Package subscription maps RevenueCat entitlement state to feature-access
// decisions through a static tier-requirement table.
package subscription

import (
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
)

// Feature keys used across the app. The table below is the single source of
// truth for which tiers may use each feature.
const (
	FeatureAICoaching        = "ai_coaching"
	FeatureAIAnalysis        = "ai_analysis"
	FeatureStreamingFeedback = "streaming_feedback"
	FeatureStreamingMetrics  = "streaming_metrics"
	FeaturePersonaInsights   = "persona_insights"
	FeatureCloudSync         = "cloud_sync"
	FeatureCustomPatterns    = "custom_patterns"
	FeatureNFTCreation       = "nft_creation"
	FeatureWeb3Features      = "web3_features"
	FeatureInstructorTools   = "instructor_tools"
	FeatureAdvancedAnalytics = "advanced_analytics"
)

// featureAccess maps a feature to the tiers permitted to use it. A feature
// missing from this table is denied for every tier; that default is part of
// the contract, not a gap.
var featureAccess = map[string][]unifiedauth.Tier{
	FeatureAICoaching:        {unifiedauth.TierPremium, unifiedauth.TierPro},
	FeatureAIAnalysis:        {unifiedauth.TierPremium, unifiedauth.TierPro},
	FeatureStreamingFeedback: {unifiedauth.TierPremium, unifiedauth.TierPro},
	FeatureStreamingMetrics:  {unifiedauth.TierPremium, unifiedauth.TierPro},
	FeaturePersonaInsights:   {unifiedauth.TierPro},
	FeatureCloudSync:         {unifiedauth.TierPremium, unifiedauth.TierPro},
	FeatureCustomPatterns:    {unifiedauth.TierBasic, unifiedauth.TierPremium, unifiedauth.TierPro},
	FeatureNFTCreation:       {unifiedauth.TierPro},
	FeatureWeb3Features:      {unifiedauth.TierPremium, unifiedauth.TierPro},
	FeatureInstructorTools:   {unifiedauth.TierPro},
	FeatureAdvancedAnalytics: {unifiedauth.TierPro},
}

// TiersFor returns the tiers permitted to use a feature. Unknown features
// return nil.
func TiersFor(feature string) []unifiedauth.Tier {
	tiers, ok := featureAccess[feature]
	if !ok {
		return nil
	}
	return append([]unifiedauth.Tier(nil), tiers...)
}

// AllFeatures returns every known feature key.
func AllFeatures() []string {
	features := make([]string, 0, len(featureAccess))
	for feature := range featureAccess {
		features = append(features, feature)
	}
	return features
}

func tierPermitted(feature string, tier unifiedauth.Tier) bool {
	for _, permitted := range featureAccess[feature] {
		if permitted == tier {
			return true
		}
	}
	return false
}
