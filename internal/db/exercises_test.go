package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `100\% effort`, likeEscaper.Replace("100% effort"))
	assert.Equal(t, `pull\_up`, likeEscaper.Replace("pull_up"))
	assert.Equal(t, `a\\b`, likeEscaper.Replace(`a\b`))
	assert.Equal(t, "bench press", likeEscaper.Replace("bench press"))
}

func TestNonNil(t *testing.T) {
	assert.NotNil(t, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}
