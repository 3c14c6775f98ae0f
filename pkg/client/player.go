package client

// VideoData describes what the player has loaded. VideoId is empty when
// nothing is loaded.
type VideoData struct {
	VideoId string
	Title   string
	Author  string
}

// Player is the embedded video player. State returns the widget's raw
// numeric state code.
type Player interface {
	Load(videoId string)
	Play()
	Pause()
	SeekTo(seconds float64)
	State() int
	CurrentTime() float64
	Duration() float64
	VideoData() VideoData
}
