package itinerary

import (
	"fmt"
	"net/url"
)

// PlaceholderImageURL returns a stable stock image for an item without a
// photo. The same title and location always map to the same image.
func PlaceholderImageURL(title, location string) string {
	seed := url.PathEscape(fmt.Sprintf("%s-%s", title, location))
	return fmt.Sprintf("https://picsum.photos/seed/%s/1000/800", seed)
}

// DisplayImageURL is the item's own image, or its placeholder.
func DisplayImageURL(title, location, imageURL string) string {
	if imageURL != "" {
		return imageURL
	}
	return PlaceholderImageURL(title, location)
}
