package inventory

import "time"

// Config holds the inventory (ticketing) API settings.
type Config struct {
	// Endpoint is the get-events URL.
	Endpoint string `mapstructure:"endpoint" default:"https://skybox.vividseats.com/services/events"`
	// APIToken is sent as X-Api-Token.
	APIToken string `mapstructure:"api_token" default:""`
	// AppToken is sent as X-Application-Token.
	AppToken string `mapstructure:"app_token" default:""`
	// Account is sent as X-Account.
	Account string `mapstructure:"account" default:""`
	// ExcludeActiveInventory asks the API to skip events that already carry inventory.
	ExcludeActiveInventory bool `mapstructure:"exclude_active_inventory" default:"false"`
	// Timeout bounds one attempt; the inventory API is slow on wide windows.
	Timeout time.Duration `mapstructure:"timeout" default:"60s"`
}

func (c Config) headers() map[string]string {
	return map[string]string{
		"X-Api-Token":         c.APIToken,
		"X-Application-Token": c.AppToken,
		"X-Account":           c.Account,
	}
}
