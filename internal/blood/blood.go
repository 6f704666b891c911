// Package blood defines the blood group primitive shared across the
// platform's records.
package blood

import "strings"

// Group is an ABO/Rh blood group.
type Group int

const (
	// GroupUnspecified represents a missing or unknown blood group.
	GroupUnspecified Group = iota
	GroupAPositive
	GroupANegative
	GroupBPositive
	GroupBNegative
	GroupABPositive
	GroupABNegative
	GroupOPositive
	GroupONegative
)

var labels = map[Group]string{
	GroupAPositive:  "A+",
	GroupANegative:  "A-",
	GroupBPositive:  "B+",
	GroupBNegative:  "B-",
	GroupABPositive: "AB+",
	GroupABNegative: "AB-",
	GroupOPositive:  "O+",
	GroupONegative:  "O-",
}

// Label returns the display label for the group, e.g. "O-".
func (g Group) Label() string {
	if label, ok := labels[g]; ok {
		return label
	}
	return "UNSPECIFIED"
}

// Valid reports whether the group is one of the eight known groups.
func (g Group) Valid() bool {
	_, ok := labels[g]
	return ok
}

// ParseGroup maps a display label back to a group.
func ParseGroup(label string) Group {
	normalized := strings.ToUpper(strings.TrimSpace(label))
	for group, l := range labels {
		if l == normalized {
			return group
		}
	}
	return GroupUnspecified
}

// Groups returns all known groups in a stable order.
func Groups() []Group {
	return []Group{
		GroupAPositive, GroupANegative,
		GroupBPositive, GroupBNegative,
		GroupABPositive, GroupABNegative,
		GroupOPositive, GroupONegative,
	}
}
