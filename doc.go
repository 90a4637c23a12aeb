// Package unifiedauth unifies independent credential and entitlement sources
// (Supabase session, EVM wallet, Lens social auth, RevenueCat subscription,
// SIWE verification) into a single observable session aggregate.
//
// The package provides the session Store, the Orchestrator that bridges
// external provider events into it, a token layer for SIWE-minted and
// Supabase-issued JWTs, and the derived AuthLevel/Tier access primitives
// used by the dataclient, subscription, and middleware subpackages.
package unifiedauth
