package models

// Comment is embedded in a recipe's comment list. IDs are generated
// server-side; ordering is insertion order.
type Comment struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Recipe is the stored recipe document. Author is stamped from the
// authenticated identity, never taken from the client payload.
type Recipe struct {
	ID           string    `json:"id,omitempty"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Ingredients  []string  `json:"ingredients"`
	Instructions string    `json:"instructions"`
	Categories   []string  `json:"categories"`
	Comments     []Comment `json:"comments"`
}
