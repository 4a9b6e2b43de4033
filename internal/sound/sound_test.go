package sound

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, r *Registry, name string, reverb float64) int {
	t.Helper()
	s, err := r.Streamer(name, reverb)
	require.NoError(t, err)

	total := 0
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			require.LessOrEqual(t, buf[i][0], 1.0)
			require.GreaterOrEqual(t, buf[i][0], -1.0)
		}
		total += n
		if !ok {
			return total
		}
	}
}

func TestDuration(t *testing.T) {
	r := DefaultRegistry()

	d, err := r.Duration(ManhackSingleNPC, "")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	d, err = r.Duration(ManhackSingleNPC, "models/combine_soldier.mdl")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, d)

	d, err = r.Duration(ManhackSingleNPC, "models/unknown.mdl")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	_, err = r.Duration("nope", "")
	assert.ErrorIs(t, err, ErrUnknownSound)
}

func TestDurationWithSpeedOfSound(t *testing.T) {
	r := DefaultRegistry()

	// 13504 in = 343.0016 m, a hair over one second of travel
	d, err := r.DurationWithSpeedOfSound(ManhackReload, "", 13504)
	require.NoError(t, err)
	assert.InDelta(t, (600*time.Millisecond + time.Second).Seconds(), d.Seconds(), 1e-3)

	d, err = r.DurationWithSpeedOfSound(ManhackReload, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 600*time.Millisecond, d)

	assert.Zero(t, TravelTime(-5))
}

func TestEmitWithReverb(t *testing.T) {
	r := DefaultRegistry()

	e, err := r.EmitWithReverb(ManhackSingle, 0)
	require.NoError(t, err)
	assert.Equal(t, 350*time.Millisecond, e.Duration)
	assert.Zero(t, e.Reverb)

	e, err = r.EmitWithReverb(ManhackSingle, 4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, e.Reverb)
	assert.Equal(t, 350*time.Millisecond+ReverbDelay, e.Duration)

	e, err = r.EmitAt(ManhackSingle, "", 0.5, 1000)
	require.NoError(t, err)
	assert.Equal(t, TravelTime(1000), e.Delay)
	assert.Equal(t, 350*time.Millisecond+ReverbDelay, e.Duration)
	assert.Equal(t, e.Delay+e.Duration, e.Heard)

	// the soldier model plays a shorter NPC shot
	e, err = r.EmitAt(ManhackSingleNPC, "models/combine_soldier.mdl", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, e.Duration)
	want, err := r.DurationWithSpeedOfSound(ManhackSingleNPC, "models/combine_soldier.mdl", 1000)
	require.NoError(t, err)
	assert.Equal(t, want, e.Heard)

	_, err = r.EmitAt("missing", "", 0, 0)
	assert.ErrorIs(t, err, ErrUnknownSound)

	_, err = r.EmitWithReverb("missing", 0)
	assert.ErrorIs(t, err, ErrUnknownSound)
}

func TestStreamerLength(t *testing.T) {
	r := DefaultRegistry()
	rate := r.SampleRate()

	assert.Equal(t, rate.N(80*time.Millisecond), drain(t, r, ManhackEmpty, 0))
	assert.Equal(t, rate.N(80*time.Millisecond)+rate.N(ReverbDelay), drain(t, r, ManhackEmpty, 1))
}

func TestRenderWAV(t *testing.T) {
	r := DefaultRegistry()

	data, err := r.RenderWAVBytes(ManhackReload, 0)
	require.NoError(t, err)

	require.Greater(t, len(data), 44)
	assert.Equal(t, []byte("RIFF"), data[0:4])
	assert.Equal(t, []byte("WAVE"), data[8:12])

	// header chunk size matches the file written
	riffSize := binary.LittleEndian.Uint32(data[4:8])
	assert.Equal(t, uint32(len(data)-8), riffSize)

	samples := r.SampleRate().N(600 * time.Millisecond)
	assert.Equal(t, 44+samples*2, len(data))

	_, err = r.RenderWAVBytes("missing", 0)
	assert.ErrorIs(t, err, ErrUnknownSound)
}

func TestNames(t *testing.T) {
	names := DefaultRegistry().Names()
	assert.Equal(t, []string{ManhackEmpty, ManhackReload, ManhackSingle, ManhackSingleNPC}, names)
}
