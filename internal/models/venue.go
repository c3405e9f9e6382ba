package models

// VenueCandidate is a single place returned by the search provider before ranking.
// Rating is nil when the provider reported no rating at all; a missing rating is a
// distinct state and must never be coerced to zero.
type VenueCandidate struct {
	Name           string      // Name is the display name of the venue.
	PhotoReference string      // PhotoReference is the provider photo token, empty when the venue has no photo.
	Rating         *float64    // Rating is the provider rating, nil when absent.
	Location       Coordinates // Location is the geographic position of the venue.
}

// RankedResult is the sorted, capped list of venues ready for reply composition.
// It is ordered descending by rating, with absent ratings after all numeric ones,
// and ties keep the provider's original order.
type RankedResult []VenueCandidate

// ReplyCard is one entry of the outbound reply: a venue rendered for display.
// Every field is non-empty; ThumbnailURL and MapURI are syntactically valid URLs.
type ReplyCard struct {
	Title        string // Title is the venue name, truncated to the template limit.
	RatingText   string // RatingText is the display form of the rating, or the no-rating marker.
	ThumbnailURL string // ThumbnailURL is the resolved photo URL, or the placeholder image.
	MapURI       string // MapURI links to the venue location on an external map service.
}

// ReplyPayload is the final structured message handed to the messaging collaborator.
type ReplyPayload []ReplyCard
