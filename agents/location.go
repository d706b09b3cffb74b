package agents

import (
	"strings"

	"github.com/krishidhan/sahayak/components/geo"
)

var setLocationPrefixes = []string{"set my location to ", "set location to "}

// placeMarkers introduce an in-query location mention. Checked in order;
// the first marker present wins.
var placeMarkers = []string{" in ", " near ", " at "}

// mentionStoppers cut trailing add-ons off a place fragment, as in
// "fpo in moga, punjab also kvk".
var mentionStoppers = []string{" also ", " and fpo", " also kvk", " also shop"}

// parseSetLocation recognizes the explicit location command and returns
// the place fragment after the prefix, lowercased.
func parseSetLocation(query string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(query))
	for _, prefix := range setLocationPrefixes {
		if strings.HasPrefix(lower, prefix) {
			frag := trimFragment(lower[len(prefix):])
			if frag == "" {
				return "", false
			}
			return frag, true
		}
	}
	return "", false
}

// extractPlace pulls a location mention out of a query, e.g.
// "weather in ludhiana" or "seed shop near moga, punjab". The fragment
// is a hint: the caller still has to resolve it before trusting it.
func extractPlace(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, marker := range placeMarkers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		frag := lower[idx+len(marker):]
		for _, stopper := range mentionStoppers {
			if cut := strings.Index(frag, stopper); cut >= 0 {
				frag = frag[:cut]
			}
		}
		frag = trimFragment(frag)
		if frag == "" {
			return "", false
		}
		return frag, true
	}
	return "", false
}

// splitPlaceState splits "patna, bihar" into the place name and its
// state. The state half must name a real Indian state, otherwise the
// whole fragment is returned as the name.
func splitPlaceState(frag string) (name, state string) {
	comma := strings.LastIndex(frag, ",")
	if comma < 0 {
		return strings.TrimSpace(frag), ""
	}
	name = strings.TrimSpace(frag[:comma])
	if st, ok := geo.StateIn(frag[comma+1:]); ok && name != "" {
		return name, st
	}
	return strings.TrimSpace(frag), ""
}

func trimFragment(frag string) string {
	return strings.Trim(frag, " \t.?!,")
}

// titleCase capitalizes the first letter of each word for display of
// lowercased fragments ("patna" -> "Patna").
func titleCase(s string) string {
	b := []byte(s)
	prevLetter := false
	for i, c := range b {
		isLower := c >= 'a' && c <= 'z'
		isUpper := c >= 'A' && c <= 'Z'
		if !prevLetter && isLower {
			b[i] = c - 'a' + 'A'
		}
		prevLetter = isLower || isUpper
	}
	return string(b)
}
