package entities

type Book struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}
