package feed

// Item is a single extracted entry. Link identifies it within a batch.
type Item struct {
	Title       string
	Link        string
	Description string
	PubDate     string // raw, as published by the source
	Source      string // display label of the originating source
}

// Batch is the result of one extraction call.
type Batch struct {
	Title string
	Items []Item
}
