package revenuecat

import "github.com/gofiber/fiber/v2"

// PlatformKeys carries the public SDK keys handed to clients. Keys live in
// server-side configuration and are never baked into client bundles.
type PlatformKeys struct {
	IOS       string `json:"ios"`
	Android   string `json:"android"`
	Available bool   `json:"available"`
}

// LoadPlatformKeys derives availability from whichever keys are configured.
// Both keys empty yields an unavailable (but well-formed) config.
func LoadPlatformKeys(iosKey, androidKey string) PlatformKeys {
	return PlatformKeys{
		IOS:       iosKey,
		Android:   androidKey,
		Available: iosKey != "" || androidKey != "",
	}
}

// ConfigHandler serves the keys for client SDK initialization.
func ConfigHandler(keys PlatformKeys) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(keys)
	}
}

// StatusHandler reports which platforms are configured.
func StatusHandler(keys PlatformKeys) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ios_configured":     keys.IOS != "",
			"android_configured": keys.Android != "",
			"available":          keys.Available,
		})
	}
}
