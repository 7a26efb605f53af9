package pipeline

import "testing"

func TestIsUSCountry(t *testing.T) {
	cases := []struct {
		country string
		want    bool
	}{
		{"US", true},
		{"us", true},
		{" USA ", true},
		{"United States", true},
		{"united states of america", true},
		{"CA", false},
		{"France", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isUSCountry(tc.country); got != tc.want {
			t.Errorf("isUSCountry(%q) = %v, want %v", tc.country, got, tc.want)
		}
	}
}

func TestIsUSLocation(t *testing.T) {
	cases := []struct {
		location string
		want     bool
	}{
		{"San Francisco, CA", true},
		{"Denver, CO", true},
		{"Austin, TX, USA", true},
		{"United States", true},
		{"Remote - US", true},
		{"London, United Kingdom", false},
		{"Paris, France", false},
		{"Vienna, Austria", false},
		{"Sydney, Australia", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isUSLocation(tc.location); got != tc.want {
			t.Errorf("isUSLocation(%q) = %v, want %v", tc.location, got, tc.want)
		}
	}
}
