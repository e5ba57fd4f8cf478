package dto

// DateResponse is the result of a relative-date resolution.
type DateResponse struct {
	Base   string `json:"base"`
	Offset int    `json:"offset"`
	Date   string `json:"date"`
}
