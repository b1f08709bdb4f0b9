package project

// User is the authenticated user record. It is handed to the header
// unchanged; nothing in the discovery view reads it.
type User struct {
	ID              string `json:"id" koanf:"id"`
	BitcoinAddress  string `json:"bitcoinAddress" koanf:"bitcoin_address"`
	DisplayName     string `json:"displayName,omitempty" koanf:"display_name"`
	ProfileImage    string `json:"profileImage,omitempty" koanf:"profile_image"`
	TotalReputation int    `json:"totalReputation" koanf:"total_reputation"`
}

// Label returns the display name, or an abbreviated bitcoin address.
func (u User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if len(u.BitcoinAddress) > 12 {
		return u.BitcoinAddress[:6] + "…" + u.BitcoinAddress[len(u.BitcoinAddress)-4:]
	}
	return u.BitcoinAddress
}
