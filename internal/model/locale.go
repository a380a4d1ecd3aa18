package model

import "slices"

// Locale is a two-letter language code
type Locale string

// Languages describes the configured locale set
type Languages struct {
	// App is the base application language
	App Locale
	// Available lists every supported locale, including App
	Available []Locale
}

// Supports reports whether the locale is in the available set
func (l Languages) Supports(locale Locale) bool {
	return slices.Contains(l.Available, locale)
}

// Translatable reports whether a translation may be stored in the locale
func (l Languages) Translatable(locale Locale) bool {
	return locale != l.App && l.Supports(locale)
}
