package crm

import (
	"regexp"
	"strings"
)

// DefaultBuilding is used when no house number can be split off the street.
const DefaultBuilding = "1"

var (
	roomPattern     = regexp.MustCompile(`(?i)(?:кв\.?|квартира)\s*(\d+)`)
	entrancePattern = regexp.MustCompile(`(?i)(?:подъезд|подьезд|под\.?)\s*(\d+)`)
	floorPattern    = regexp.MustCompile(`(?i)(?:этаж|эт\.?)\s*(\d+)`)
	detailPattern   = regexp.MustCompile(`(?i)(?:кв\.?|квартира|подъезд|подьезд|под\.?|этаж|эт\.?)\s*\d+`)
	trailingSeps    = regexp.MustCompile(`[,\s]+$`)
	leadingSeps     = regexp.MustCompile(`^[,\s]+`)
	streetBuilding  = regexp.MustCompile(`^(.+?)\s+(\d+\S*)\s*$`)
)

// Address is a free-text delivery address split into CRM fields. Empty
// optional parts mean the text did not mention them.
type Address struct {
	Street   string
	Building string
	Entrance string
	Floor    string
	Room     string
}

// ParseAddress extracts room, entrance and floor anywhere in the text, then
// treats the last token of what remains as the building number.
func ParseAddress(raw string) Address {
	var a Address
	if strings.TrimSpace(raw) == "" {
		return a
	}
	a.Room = firstGroup(roomPattern, raw)
	a.Entrance = firstGroup(entrancePattern, raw)
	a.Floor = firstGroup(floorPattern, raw)

	clean := detailPattern.ReplaceAllString(raw, "")
	clean = trailingSeps.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(leadingSeps.ReplaceAllString(clean, ""))

	if m := streetBuilding.FindStringSubmatch(clean); m != nil {
		a.Street = trailingSeps.ReplaceAllString(m[1], "")
		a.Building = strings.TrimSpace(m[2])
		return a
	}
	a.Street = clean
	a.Building = DefaultBuilding
	return a
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
