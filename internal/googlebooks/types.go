package googlebooks

// SearchResponse is the envelope returned by the volumes search endpoint.
type SearchResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is one raw catalog item as returned by the Google Books API.
// It only exists between fetch and normalization.
type Volume struct {
	ID         string     `json:"id"`
	SelfLink   string     `json:"selfLink"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
	AccessInfo AccessInfo `json:"accessInfo"`
}

// VolumeInfo carries the nested volume metadata.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Dimensions          *Dimensions          `json:"dimensions"`
	Categories          []string             `json:"categories"`
	AverageRating       float64              `json:"averageRating"`
	RatingsCount        int                  `json:"ratingsCount"`
	Language            string               `json:"language"`
	ImageLinks          ImageLinks           `json:"imageLinks"`
}

// IndustryIdentifier is one entry in the volume's identifier list
// (ISBN_13, ISBN_10, OTHER).
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Dimensions holds physical dimension metadata; present only for print
// editions.
type Dimensions struct {
	Height    string `json:"height"`
	Width     string `json:"width"`
	Thickness string `json:"thickness"`
}

// ImageLinks lists cover image URLs by resolution.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}

// AccessInfo carries the access-method flags used for format detection.
type AccessInfo struct {
	Epub FormatAvailability `json:"epub"`
	PDF  FormatAvailability `json:"pdf"`
}

// FormatAvailability reports whether a digital format is offered.
type FormatAvailability struct {
	IsAvailable bool `json:"isAvailable"`
}

// DigitalAvailable reports whether the volume exposes an epub or pdf
// access method.
func (a AccessInfo) DigitalAvailable() bool {
	return a.Epub.IsAvailable || a.PDF.IsAvailable
}
