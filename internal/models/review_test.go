package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewResult_ATSScore(t *testing.T) {
	t.Run("zero is present", func(t *testing.T) {
		var r ReviewResult
		require.NoError(t, json.Unmarshal([]byte(`{"ats_friendliness":{"score":0,"suggestions":[]}}`), &r))

		score, ok := r.ATSScore()
		assert.True(t, ok)
		assert.Equal(t, 0, score)
	})

	t.Run("missing score", func(t *testing.T) {
		var r ReviewResult
		require.NoError(t, json.Unmarshal([]byte(`{"ats_friendliness":{"suggestions":["x"]}}`), &r))

		_, ok := r.ATSScore()
		assert.False(t, ok)
	})

	t.Run("nil result", func(t *testing.T) {
		var r *ReviewResult
		_, ok := r.ATSScore()
		assert.False(t, ok)
	})
}

func TestUploadRequest_HasFile(t *testing.T) {
	assert.False(t, (*UploadRequest)(nil).HasFile())
	assert.True(t, (&UploadRequest{FileName: "empty.pdf"}).HasFile())
	assert.False(t, (&UploadRequest{Data: []byte("x")}).HasFile())
	assert.True(t, (&UploadRequest{FileName: "cv.pdf", Data: []byte("%PDF")}).HasFile())
}
