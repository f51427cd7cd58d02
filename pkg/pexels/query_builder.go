package pexels

import "strings"

// BuildSearchQuery turns a free-text destination into a photo query. Only
// the leading place name is kept, so "Kyoto, Japan" searches "Kyoto Japan"
// and "Paris (France)" searches "Paris".
func BuildSearchQuery(destination string) string {
	d := strings.TrimSpace(destination)
	if i := strings.IndexAny(d, "(["); i >= 0 {
		d = d[:i]
	}
	d = strings.NewReplacer(",", " ", ";", " ", "/", " ").Replace(d)
	return strings.Join(strings.Fields(d), " ")
}
