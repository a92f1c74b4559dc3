package validation

import "strings"

// NormalizeEmail canonicalises an address: lowercased, provider sub-address
// tags stripped, googlemail.com folded into gmail.com. Dots in gmail local
// parts are kept.
func NormalizeEmail(email string) string {
	email = strings.ToLower(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}
	local, domain := email[:at], email[at+1:]

	switch domain {
	case "gmail.com", "googlemail.com":
		domain = "gmail.com"
		local = cutTag(local, "+")
	case "outlook.com", "hotmail.com", "live.com", "icloud.com", "me.com":
		local = cutTag(local, "+")
	case "yahoo.com", "ymail.com", "rocketmail.com":
		local = cutTag(local, "-")
	}
	if local == "" {
		return email
	}
	return local + "@" + domain
}

func cutTag(local, sep string) string {
	before, _, _ := strings.Cut(local, sep)
	return before
}
