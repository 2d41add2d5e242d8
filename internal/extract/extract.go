// Package extract pulls contact details and company hints out of posting
// text with regular expressions, mirroring what the detailed analysis needs
// for scam-database and legitimacy checks.
package extract

import (
	"regexp"
	"strings"
)

var (
	urlRe = regexp.MustCompile(`https?://(?:[-\w.])+(?:[:\d]+)?(?:/(?:[\w/_.])*(?:\?(?:[\w&=%.])*)?(?:#(?:[\w.])*)?)?`)
	wwwRe = regexp.MustCompile(`www\.(?:[-\w.])+\.(?:[a-zA-Z]{2,4})`)

	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,4}[\s-]?\(?\d{2,4}\)?[\s-]?[\d\s-]{6,15}`), // international
		regexp.MustCompile(`\(\d{3}\)[\s-]?\d{3}[\s-]?\d{4}`),                  // US (XXX) XXX-XXXX
		regexp.MustCompile(`\d{3}[\s-]?\d{3}[\s-]?\d{4}`),                      // US XXX-XXX-XXXX
	}

	companyRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:at|join|with)\s+([A-Z][a-zA-Z\s&]+?)(?:\s+(?:Inc|LLC|Corp|Ltd|Co)\.?)?(?:\s|$|[,.])`),
		regexp.MustCompile(`([A-Z][a-zA-Z\s&]+?)(?:\s+(?:Inc|LLC|Corp|Ltd|Co)\.?)\s+is\s+hiring`),
	}
)

// Website returns the first URL in text, prefixing bare www domains with
// https. Empty when none is found.
func Website(text string) string {
	if m := urlRe.FindString(text); m != "" {
		return m
	}
	if m := wwwRe.FindString(text); m != "" {
		return "https://" + m
	}
	return ""
}

// Email returns the first email address in text, or empty.
func Email(text string) string {
	return emailRe.FindString(text)
}

// Phone returns the first phone-number-looking span in text, or empty.
func Phone(text string) string {
	for _, re := range phoneRes {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// CompanyName guesses the hiring company from "at/join/with X" or
// "X Inc is hiring" patterns. Empty when nothing matches.
func CompanyName(text string) string {
	for _, re := range companyRes {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
