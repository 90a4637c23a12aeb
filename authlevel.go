package unifiedauth

// AuthLevel summarizes how many credential types are currently satisfied
type AuthLevel = string

const (
	// AuthLevelNone means no credential is present
	AuthLevelNone AuthLevel = "none"
	// AuthLevelEmail means only a Supabase session is present
	AuthLevelEmail AuthLevel = "email"
	// AuthLevelWallet means only a wallet credential is present (connection or SIWE)
	AuthLevelWallet AuthLevel = "wallet"
	// AuthLevelFull means both a Supabase session and a wallet credential are present
	AuthLevelFull AuthLevel = "full"
)

// IsValidAuthLevel checks if the level is one of the predefined valid levels
func IsValidAuthLevel(l AuthLevel) bool {
	switch l {
	case AuthLevelNone, AuthLevelEmail, AuthLevelWallet, AuthLevelFull:
		return true
	default:
		return false
	}
}

// AuthLevelIsAtLeast checks if a level meets the minimum required level.
// Email and wallet rank equally; only full outranks them both.
func AuthLevelIsAtLeast(l, min AuthLevel) bool {
	levelHierarchy := map[AuthLevel]int{
		AuthLevelNone:   0,
		AuthLevelEmail:  1,
		AuthLevelWallet: 1,
		AuthLevelFull:   2,
	}

	currentLevel, exists := levelHierarchy[l]
	if !exists {
		return false
	}

	minLevel, exists := levelHierarchy[min]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// ParseAuthLevel safely parses a string into an AuthLevel type
func ParseAuthLevel(levelStr string) (AuthLevel, bool) {
	level := AuthLevel(levelStr)
	return level, IsValidAuthLevel(level)
}
