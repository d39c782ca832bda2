package models

// ClothingItem is one garment detected in the wardrobe video. Items are created
// once per analysis; the caller keeps them in its own session state.
type ClothingItem struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Subtype          string   `json:"subtype"`
	PrimaryColor     string   `json:"primary_color"`
	Patterns         []string `json:"patterns"`
	Season           string   `json:"season"`
	Formality        int      `json:"formality"`
	SearchTags       []string `json:"search_tags"`
	Emoji            string   `json:"emoji"`
	TimestampSeconds float64  `json:"timestamp_seconds"`
}

// Inventory is the full result of one video analysis. WelcomeMessage may be
// overwritten by the persona narrative after the items are extracted.
type Inventory struct {
	Items             []ClothingItem `json:"inventory"`
	SuggestionStarter string         `json:"suggestion_starter"`
	WelcomeMessage    string         `json:"welcome_message"`
}
