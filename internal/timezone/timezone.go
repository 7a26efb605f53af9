// Package timezone maps contact records to US timezone buckets.
//
// Resolution priority: CRM timezone hint > state > phone area code.
// Pure lookup tables, no network calls; the same input always resolves to
// the same zone, which the resume flow depends on.
package timezone

import (
	"strings"

	"github.com/sells-group/coldcall-cli/internal/model"
)

// Zone is a US timezone bucket.
type Zone string

// The fixed set of buckets. Hawaii and Alaska are distinct from the four
// contiguous zones. Unknown means no field resolved.
const (
	Eastern  Zone = "US/Eastern"
	Central  Zone = "US/Central"
	Mountain Zone = "US/Mountain"
	Pacific  Zone = "US/Pacific"
	Hawaii   Zone = "US/Hawaii"
	Alaska   Zone = "US/Alaska"
	Unknown  Zone = "UNKNOWN"
)

var labels = map[Zone]string{
	Eastern:  "ET",
	Central:  "CT",
	Mountain: "MT",
	Pacific:  "PT",
	Hawaii:   "HT",
	Alaska:   "AKT",
}

// Label returns the short display label for a zone. Unrecognized zones
// (including verbatim CRM hints) are returned unchanged.
func Label(z Zone) string {
	if l, ok := labels[z]; ok {
		return l
	}
	return string(z)
}

// Resolve maps a contact to a timezone bucket using the priority cascade:
//  1. non-empty CRM hint, returned verbatim (already canonical)
//  2. US state, two-letter code or full name
//  3. area code from mobile phone, then primary phone
func Resolve(c model.Contact) Zone {
	if hint := strings.TrimSpace(c.TimezoneHint); hint != "" {
		return Zone(hint)
	}

	state := strings.ToUpper(strings.TrimSpace(c.State))
	if z, ok := stateToZone[state]; ok {
		return z
	}

	for _, phone := range []string{c.MobilePhone, c.Phone} {
		if area := areaCode(phone); area != "" {
			if z, ok := areaCodeToZone[area]; ok {
				return z
			}
		}
	}

	return Unknown
}

// areaCode extracts the 3-digit US area code from a free-form phone string,
// or returns "" when the number is too short to carry one.
func areaCode(phone string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 10 {
		return ""
	}
	// Drop the leading country "1" on 11-digit numbers.
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	return d[:3]
}
