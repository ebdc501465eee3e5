package catalog

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/nvalenz/libreria/internal/googlebooks"
)

const (
	dateLayout       = "2006-01-02"
	defaultTitle     = "Unknown Title"
	defaultAuthor    = "Unknown Author"
	defaultPublisher = "Unknown Publisher"
	defaultEdition   = "1st Edition"
	defaultLanguage  = "en"
	defaultCategory  = "General"
	defaultRating    = 3.0

	// subtitleChance is the probability of synthesizing a subtitle when the
	// source has none.
	subtitleChance = 0.3
)

// acceptedDateLayouts are tried in order against the source date string.
// A year-only or year-month match defaults the missing parts to January 1st.
var acceptedDateLayouts = []string{"2006-01-02", "2006-01", "2006"}

var subtitleTemplates = []string{
	"An introduction to %s",
	"Modern perspectives on %s",
	"A practical guide to %s",
	"Theory and practice in %s",
	"Advanced concepts in %s",
}

// Normalizer maps raw Google Books volumes into canonical Book records.
// All randomized fallbacks draw from the injected source so runs can be
// made deterministic in tests.
type Normalizer struct {
	rng *rand.Rand
}

// NewNormalizer creates a Normalizer. A nil source gets a time-seeded one.
func NewNormalizer(rng *rand.Rand) *Normalizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Normalizer{rng: rng}
}

// Normalize produces exactly one Book from a raw volume. It never fails:
// every missing field is synthesized with a documented fallback. The
// subject term of the originating query seeds the category fallback.
func (n *Normalizer) Normalize(vol googlebooks.Volume, subject string) Book {
	info := vol.VolumeInfo

	price := n.price(info)
	authors := n.authors(info)
	categories := n.categories(info, subject)

	book := Book{
		Title:         info.Title,
		Subtitle:      info.Subtitle,
		ISBN:          n.isbn(info),
		PublishedDate: n.publishedDate(info.PublishedDate),
		Edition:       defaultEdition,
		Publisher:     info.Publisher,
		Price:         price,
		Stock:         n.stock(info),
		Description:   info.Description,
		PageCount:     info.PageCount,
		Language:      info.Language,
		Rating:        n.rating(info.PageCount, price),
		CoverURL:      pickCoverURL(info.ImageLinks),
		Format:        classifyFormat(vol),
		Authors:       authors,
		Categories:    categories,
	}

	if book.Title == "" {
		book.Title = defaultTitle
	}
	if book.Publisher == "" {
		book.Publisher = defaultPublisher
	}
	if book.Language == "" {
		book.Language = defaultLanguage
	}
	if book.PageCount <= 0 {
		book.PageCount = 100 + n.rng.Intn(401)
	}
	if book.Description == "" {
		book.Description = fmt.Sprintf(
			"A %s title by %s that explores the major themes of its field.",
			categories[0], authors[0].FullName)
	}
	if book.Subtitle == "" && n.rng.Float64() < subtitleChance {
		template := subtitleTemplates[n.rng.Intn(len(subtitleTemplates))]
		book.Subtitle = fmt.Sprintf(template, categories[0])
	}

	return book
}

// isbn prefers an ISBN_13 identifier, falls back to ISBN_10, and
// synthesizes a checksum-valid identifier when neither is present.
func (n *Normalizer) isbn(info googlebooks.VolumeInfo) string {
	isbn10 := ""
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		}
	}
	if isbn10 != "" {
		return isbn10
	}
	return SynthesizeISBN(n.rng)
}

// publishedDate normalizes the source date string to YYYY-MM-DD, trying the
// accepted layouts in order. Absent or unparsable dates become a uniformly
// random date with year in [1950,2023], month in [1,12], day in [1,28].
func (n *Normalizer) publishedDate(raw string) string {
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout)
		}
	}
	year := 1950 + n.rng.Intn(74)
	month := 1 + n.rng.Intn(12)
	day := 1 + n.rng.Intn(28)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// price samples a base in [10,50] and scales it by the average rating when
// present: ±10% per rating point away from 3.
func (n *Normalizer) price(info googlebooks.VolumeInfo) float64 {
	base := 10 + n.rng.Float64()*40
	if info.AverageRating > 0 {
		base *= 1 + (info.AverageRating-3)*0.1
	}
	return math.Round(base*100) / 100
}

// stock samples a base in [5,20] with a +5 bonus for popular titles
// (more than 100 ratings).
func (n *Normalizer) stock(info googlebooks.VolumeInfo) int {
	stock := 5 + n.rng.Intn(16)
	if info.RatingsCount > 100 {
		stock += 5
	}
	return stock
}

// rating computes a value-density score: normalized page count (capped at
// 1000 pages) over normalized price (capped at 50) times 5, clamped to
// [0,5]. Without both page count and price it defaults to 3.0.
func (n *Normalizer) rating(pageCount int, price float64) float64 {
	if pageCount <= 0 || price <= 0 {
		return defaultRating
	}
	pagesNorm := math.Min(float64(pageCount)/1000, 1)
	priceNorm := math.Min(price/50, 1)
	rating := math.Min(5, math.Max(0, pagesNorm/priceNorm*5))
	return math.Round(rating*100) / 100
}

func (n *Normalizer) authors(info googlebooks.VolumeInfo) []Author {
	names := info.Authors
	if len(names) == 0 {
		names = []string{defaultAuthor}
	}
	authors := make([]Author, 0, len(names))
	for _, name := range names {
		authors = append(authors, SplitAuthorName(name))
	}
	return authors
}

// categories uses the source list when non-empty, then the originating
// subject term, then the generic default.
func (n *Normalizer) categories(info googlebooks.VolumeInfo, subject string) []string {
	if len(info.Categories) > 0 {
		return info.Categories
	}
	if subject != "" {
		return []string{capitalize(subject)}
	}
	return []string{defaultCategory}
}

// classifyFormat treats digitally available volumes as ebooks, volumes
// with physical dimension metadata as hardcovers, and everything else as
// paperbacks.
func classifyFormat(vol googlebooks.Volume) Format {
	if vol.AccessInfo.DigitalAvailable() {
		return FormatEbook
	}
	if vol.VolumeInfo.Dimensions != nil {
		return FormatHardCover
	}
	return FormatPaperback
}

// pickCoverURL selects the first available resolution, largest first.
func pickCoverURL(links googlebooks.ImageLinks) string {
	for _, url := range []string{
		links.ExtraLarge,
		links.Large,
		links.Medium,
		links.Small,
		links.Thumbnail,
		links.SmallThumbnail,
	} {
		if url != "" {
			return url
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
