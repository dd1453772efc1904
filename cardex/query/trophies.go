package query

// trophyKeys translates the display name carried in a trophies clause to the
// canonical census key used inside the trophies JSONB column. The stored keys
// are composites of this canonical key and the tier percentage, e.g.
// "NATIONS-1" for a top-1% Most Nations trophy.
var trophyKeys = map[string]string{
	"Most Nations":            "NATIONS",
	"Most World Assembly":     "WA",
	"Most Valuable Deck":      "DECK",
	"Most Authoritarian":      "AUTHORITARIAN",
	"Most Liberal":            "LIBERAL",
	"Most Conservative":       "CONSERVATIVE",
	"Most Devout":             "DEVOUT",
	"Most Corrupt":            "CORRUPT",
	"Most Compassionate":      "COMPASSIONATE",
	"Most Cultured":           "CULTURED",
	"Most Extensive Economy":  "ECONOMY",
	"Most Advanced Defense":   "DEFENSE",
	"Most Scientific":         "SCIENTIFIC",
	"Most Environmental":      "ENVIRONMENT",
	"Most Influential":        "INFLUENCE",
	"Most Patriotic":          "PATRIOTISM",
	"Most Rebellious":         "REBELLIOUS",
	"Most Politically Apathetic": "APATHETIC",
	"Largest Population":      "POPULATION",
	"Highest Average Income":  "INCOME",
	"Fattest Citizens":        "FAT",
	"Nudest":                  "NUDITY",
	"Most Avoided":            "AVOIDED",
	"Highest Crime Rates":     "CRIME",
	"Longest Average Lifespan": "LIFESPAN",
	"Largest Gambling Industry": "GAMBLING",
}

// TrophyKey resolves a trophy display name to its canonical key. The second
// return reports whether the name is part of the fixed vocabulary.
func TrophyKey(name string) (string, bool) {
	key, ok := trophyKeys[name]
	return key, ok
}
