package templates

// SlidePageData contains the dynamic values for the presenter view.
type SlidePageData struct {
	Title     string
	DeckTitle string
	Layout    string
	BodyHTML  string
	Image     string
	Caption   string
	Index     int
	Total     int
	Wrap      bool
}

// OverviewItem represents one slide in the overview grid.
type OverviewItem struct {
	Index  int
	Title  string
	Layout string
}

// OverviewPageData bundles template data for the overview page.
type OverviewPageData struct {
	Title     string
	DeckTitle string
	Items     []OverviewItem
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	Title       string
	StatusLabel string
	Message     string
}
