package party

// VideoMetadata is a queue entry. It is immutable once fetched.
type VideoMetadata struct {
	Id        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Thumbnail string `json:"thumbnail"`
}
