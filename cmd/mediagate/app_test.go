package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"codeberg.org/mediagate/server/internal/authstate"
	"codeberg.org/mediagate/server/internal/client"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeature(t *testing.T) {
	feature, err := parseFeature("audio_convert")
	require.NoError(t, err)
	assert.Equal(t, limits.FeatureAudioConvert, feature)

	_, err = parseFeature("teleport")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image_stamp")
}

func TestProcessHelpListsRegisteredFeatures(t *testing.T) {
	for _, feature := range limits.Features {
		assert.Contains(t, processCmd.Long, string(feature))

		_, err := parseFeature(string(feature))
		assert.NoError(t, err)
	}

	assert.NotContains(t, processCmd.Long, "image_background_remove")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "auth state error",
			err:  &authstate.UserError{Op: "sign_in", Message: "sign in failed", Err: errors.New("boom")},
			want: "sign in failed",
		},
		{
			name: "client error from the API",
			err:  fmt.Errorf("wrapped: %w", &client.APIError{Status: http.StatusForbidden, Code: "forbidden", Message: "permission denied"}),
			want: "permission denied",
		},
		{
			name: "server error keeps detail",
			err:  &client.APIError{Status: http.StatusInternalServerError, Code: "server_error", Message: "oops"},
			want: "server_error: oops",
		},
		{
			name: "signed out",
			err:  usage.ErrAuthRequired,
			want: "you are not signed in, run `mediagate signin` first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}
