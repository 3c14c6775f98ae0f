package party

import "fmt"

type PlayerState string

const (
	PlayerStateUnstarted PlayerState = "UNSTARTED"
	PlayerStateEnded     PlayerState = "ENDED"
	PlayerStatePlaying   PlayerState = "PLAYING"
	PlayerStatePaused    PlayerState = "PAUSED"
	PlayerStateBuffering PlayerState = "BUFFERING"
	PlayerStateCued      PlayerState = "CUED"
)

// Code 4 is not used by the player widget and stays unmapped.
var playerStateCodes = map[int]PlayerState{
	-1: PlayerStateUnstarted,
	0:  PlayerStateEnded,
	1:  PlayerStatePlaying,
	2:  PlayerStatePaused,
	3:  PlayerStateBuffering,
	5:  PlayerStateCued,
}

// PlayerStateFromCode translates a raw player widget state code.
func PlayerStateFromCode(code int) (PlayerState, error) {
	state, ok := playerStateCodes[code]
	if !ok {
		return "", fmt.Errorf("unknown player state code: %d", code)
	}

	return state, nil
}

func (s PlayerState) IsValid() bool {
	switch s {
	case PlayerStateUnstarted, PlayerStateEnded, PlayerStatePlaying,
		PlayerStatePaused, PlayerStateBuffering, PlayerStateCued:
		return true
	}

	return false
}

type StateVideoMetadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// State is a playback snapshot. A nil *State means nothing was ever played.
type State struct {
	VideoId       *string             `json:"videoId"`
	VideoMetadata *StateVideoMetadata `json:"videoMetadata"`
	PlayerState   PlayerState         `json:"playerState" validate:"required,oneof=UNSTARTED ENDED PLAYING PAUSED BUFFERING CUED"`
	CurrentTime   int                 `json:"currentTime" validate:"min=0"`
	Duration      int                 `json:"duration" validate:"min=0"`
}

// Clone returns a copy sharing no pointers with s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	c := *s
	if s.VideoId != nil {
		videoId := *s.VideoId
		c.VideoId = &videoId
	}
	if s.VideoMetadata != nil {
		metadata := *s.VideoMetadata
		c.VideoMetadata = &metadata
	}

	return &c
}

func (s *State) GetVideoId() string {
	if s == nil || s.VideoId == nil {
		return ""
	}

	return *s.VideoId
}
