package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytparty/server/pkg/party"
)

func TestValidateState(t *testing.T) {
	v := NewValidator()

	_, ok := v.Validate(party.State{PlayerState: party.PlayerStatePlaying, CurrentTime: 4, Duration: 10})
	assert.True(t, ok)

	errs, ok := v.Validate(party.State{PlayerState: "STOPPED", CurrentTime: -1})
	require.False(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "playerState", errs[0].Field)
	assert.Equal(t, "ONEOF", errs[0].Code)
	assert.Equal(t, "currentTime", errs[1].Field)
	assert.Equal(t, "MIN", errs[1].Code)
}

func TestVarVideoId(t *testing.T) {
	v := NewValidator()

	assert.True(t, v.Var("dQw4w9WgXcQ", "ytid"))
	assert.True(t, v.Var("a-b_c123456", "ytid"))
	assert.False(t, v.Var("bad", "ytid"))
	assert.False(t, v.Var("dQw4w9WgXcQ1", "ytid"))
	assert.False(t, v.Var("dQw4w9WgXc!", "ytid"))
}
