package cuesheet_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-cuesplit/internal/cuesheet"
)

func TestSplitCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    int
		interval int
		want     int
		wantErr  bool
	}{
		{name: "remainder adds a track", total: 125, interval: 60, want: 3},
		{name: "exact multiple", total: 120, interval: 60, want: 2},
		{name: "shorter than interval", total: 30, interval: 60, want: 1},
		{name: "zero length", total: 0, interval: 60, want: 0},
		{name: "zero interval", total: 100, interval: 0, wantErr: true},
		{name: "negative interval", total: 100, interval: -5, wantErr: true},
		{name: "negative length", total: -1, interval: 60, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cuesheet.SplitCount(tt.total, tt.interval)
			if tt.wantErr {
				require.ErrorIs(t, err, cuesheet.ErrInvalidInterval)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	body, err := cuesheet.Generate("/media/long mix.mp3", 125, 60)
	require.NoError(t, err)

	want := `PERFORMER "VA"
TITLE "No Title"
FILE "long mix.mp3" WAV
    TRACK 01 AUDIO
        TITLE "trk1"
        PERFORMER "trk1"
        INDEX 01 0:00:00
    TRACK 02 AUDIO
        TITLE "trk2"
        PERFORMER "trk2"
        INDEX 01 1:00:00
    TRACK 03 AUDIO
        TITLE "trk3"
        PERFORMER "trk3"
        INDEX 01 2:00:00
`
	assert.Equal(t, want, body)
}

func TestGenerate_ParsesBack(t *testing.T) {
	t.Parallel()

	body, err := cuesheet.Generate("/media/show.mkv", 3725, 600)
	require.NoError(t, err)

	sheet := cuesheet.NewParser().ParseCue(body, "/media/show.cue", "")

	require.Len(t, sheet.Tracks, 7)
	assert.Zero(t, sheet.ErrorCount())
	assert.Equal(t, "/media/show.mkv", sheet.MediaPath)
	assert.Equal(t, "No Title", sheet.Album)
	assert.Equal(t, "VA", sheet.Performer)
	for i, rec := range sheet.Tracks {
		assert.Equal(t, i, rec.Index)
		assert.Equal(t, time.Duration(i)*10*time.Minute, rec.Start)
	}
	assert.True(t, strings.Contains(body, "INDEX 01 60:00:00"), "hours fold into minutes")
}

func TestGenerate_InvalidInterval(t *testing.T) {
	t.Parallel()

	_, err := cuesheet.Generate("x.wav", 100, 0)

	require.ErrorIs(t, err, cuesheet.ErrInvalidInterval)
}
