package pagination

const (
	// DefaultItemsOnPage is used when a request does not say how many items it wants.
	DefaultItemsOnPage = 10

	// AllItems disables the page window and returns every matching item.
	AllItems = 0
)

// Options configures pagination behavior.
type Options struct {
	// MaxItemsOnPage caps ItemsOnPage. Zero means no cap.
	MaxItemsOnPage int
}

type Option func(*Options)

// WithMaxItemsOnPage caps the page size a caller can ask for.
// The cap does not apply to AllItems.
func WithMaxItemsOnPage(maxItems int) Option {
	return func(o *Options) {
		o.MaxItemsOnPage = maxItems
	}
}
