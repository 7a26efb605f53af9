package pipeline

import (
	"regexp"
	"strings"
)

// usCountryAliases are the country spellings treated as United States.
var usCountryAliases = map[string]bool{
	"US":                       true,
	"USA":                      true,
	"UNITED STATES":            true,
	"UNITED STATES OF AMERICA": true,
}

// cityStateRe matches trailing "City, ST" location text.
var cityStateRe = regexp.MustCompile(`,\s*[A-Z]{2}\s*$`)

// usAliasRe matches the country as a whole word, so "Austria" and
// "Australia" don't pass on the "US" substring.
var usAliasRe = regexp.MustCompile(`\b(?:USA?|UNITED STATES(?: OF AMERICA)?)\b`)

// isUSCountry reports whether a country code or name denotes the US.
func isUSCountry(country string) bool {
	return usCountryAliases[strings.ToUpper(strings.TrimSpace(country))]
}

// isUSLocation reports whether free-form location text looks US-based:
// it names the country outright or ends in a "City, ST" pattern.
func isUSLocation(location string) bool {
	if usAliasRe.MatchString(strings.ToUpper(location)) {
		return true
	}
	return cityStateRe.MatchString(location)
}
