package avatar

// DefaultBaseColor is the avatar color every fresh profile starts with.
const DefaultBaseColor = "grey"

// DefaultOwned are the starter accessories granted to every account.
var DefaultOwned = []string{"glasses", "bow", "hat"}

// Profile is a user's avatar: its base color, the accessories currently
// equipped and everything the user owns (starters plus shop purchases).
type Profile struct {
	BaseColor   string   `json:"base_color"`
	Accessories []string `json:"accessories"`
	Owned       []string `json:"owned"`
}

func DefaultProfile() Profile {
	owned := make([]string, len(DefaultOwned))
	copy(owned, DefaultOwned)
	return Profile{
		BaseColor:   DefaultBaseColor,
		Accessories: []string{},
		Owned:       owned,
	}
}

func (p Profile) Owns(accessory string) bool {
	return contains(p.Owned, accessory)
}

func (p Profile) HasEquipped(accessory string) bool {
	return contains(p.Accessories, accessory)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
