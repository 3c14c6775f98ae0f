package client

import (
	"sync"
)

type fakePlayer struct {
	mu          sync.Mutex
	calls       []string
	state       int
	currentTime float64
	duration    float64
	data        VideoData
}

func newFakePlayer(videoId string) *fakePlayer {
	return &fakePlayer{
		state: -1,
		data:  VideoData{VideoId: videoId, Title: "Title", Author: "Author"},
	}
}

func (p *fakePlayer) record(call string) {
	p.calls = append(p.calls, call)
}

func (p *fakePlayer) Load(videoId string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("load:" + videoId)
	p.data = VideoData{VideoId: videoId, Title: "Title", Author: "Author"}
	p.state = 3
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("play")
	p.state = 1
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("pause")
	p.state = 2
}

func (p *fakePlayer) SeekTo(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("seek")
	p.currentTime = seconds
}

func (p *fakePlayer) State() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *fakePlayer) setState(state int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = state
}

func (p *fakePlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.currentTime
}

func (p *fakePlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.duration
}

func (p *fakePlayer) VideoData() VideoData {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.data
}

func (p *fakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.calls...)
}
