package geo

import "strings"

// States lists Indian states and union territories as they appear in
// scheme documents and user queries.
var States = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram",
	"Nagaland", "Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu",
	"Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal",
	"Delhi", "Chandigarh", "Puducherry", "Jammu and Kashmir", "Ladakh",
}

// StateIn returns the first state name mentioned in text. Matching is
// case-insensitive on word boundaries, so "schemes for punjab farmers"
// resolves to "Punjab" while "goat farming" does not resolve to "Goa".
func StateIn(text string) (string, bool) {
	t := strings.ToLower(text)
	for _, s := range States {
		if containsWord(t, strings.ToLower(s)) {
			return s, true
		}
	}
	return "", false
}

func containsWord(text, word string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if (i == 0 || !isLetter(text[i-1])) && (end == len(text) || !isLetter(text[end])) {
			return true
		}
		start = i + 1
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
