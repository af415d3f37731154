package dbus

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/levelosd/internal/model"
)

func TestProfiles(t *testing.T) {
	assert.Equal(t, BrightnessProfile, ProfileFor(model.QuantityBrightness))
	assert.Equal(t, VolumeProfile, ProfileFor(model.QuantityVolume))
	assert.False(t, BrightnessProfile.ToggleMute)
	assert.True(t, VolumeProfile.ToggleMute)
	assert.True(t, VolumeProfile.Path.IsValid())
	assert.True(t, BrightnessProfile.Path.IsValid())
	assert.Equal(t, "io.github.jmylchreest.levelosd.Volume.Increase", VolumeProfile.Member("Increase"))
}

func TestServer_EnqueuePreservesOrder(t *testing.T) {
	s := NewServer(VolumeProfile, 8, nil)

	require.Nil(t, s.Increase(":1.10", 5))
	require.Nil(t, s.Decrease(":1.10", 3))
	require.Nil(t, s.ToggleMute(":1.11"))

	want := []struct {
		kind model.Kind
		mag  int
	}{
		{model.KindIncrease, 5},
		{model.KindDecrease, 3},
		{model.KindToggleMute, 0},
	}
	for _, w := range want {
		cmd := <-s.Commands()
		assert.Equal(t, w.kind, cmd.Kind)
		assert.Equal(t, w.mag, cmd.Magnitude)
		assert.NotEmpty(t, cmd.ID)
	}

	require.Nil(t, s.Increase(":1.12", 1))
	assert.Equal(t, ":1.12", (<-s.Commands()).Source)
	assert.Equal(t, uint64(4), s.Info().Handled)
}

func TestServer_RejectsNegativeStep(t *testing.T) {
	s := NewServer(BrightnessProfile, 8, nil)

	derr := s.Increase(":1.10", -5)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorInvalidArgs, derr.Name)
	assert.Empty(t, s.Commands())
}

func TestServer_ToggleMuteNotSupportedForBrightness(t *testing.T) {
	s := NewServer(BrightnessProfile, 8, nil)

	derr := s.ToggleMute(":1.10")
	require.NotNil(t, derr)
	assert.Equal(t, ErrorNotSupported, derr.Name)

	_, exported := s.methodTable()["ToggleMute"]
	assert.False(t, exported)

	_, exported = NewServer(VolumeProfile, 1, nil).methodTable()["ToggleMute"]
	assert.True(t, exported)
}

func TestServer_QueueFull(t *testing.T) {
	s := NewServer(BrightnessProfile, 2, nil)

	require.Nil(t, s.Increase(":1.10", 1))
	require.Nil(t, s.Increase(":1.10", 1))

	derr := s.Increase(":1.10", 1)
	require.NotNil(t, derr)
	assert.Equal(t, BrightnessProfile.QueueFullError(), derr.Name)
	assert.Equal(t, uint64(1), s.rejected.Load())
	assert.Len(t, s.Commands(), 2)
}

func TestServer_GetState(t *testing.T) {
	s := NewServer(VolumeProfile, 1, nil)

	_, _, _, _, _, derr := s.GetState()
	require.NotNil(t, derr)

	s.SetStateHandler(func(context.Context) (State, error) {
		return State{Level: 70, Muted: true, Text: "70%", Icon: model.IconVolumeMuted, Visible: true}, nil
	})
	level, muted, text, icon, visible, derr := s.GetState()
	require.Nil(t, derr)
	assert.Equal(t, int32(70), level)
	assert.True(t, muted)
	assert.Equal(t, "70%", text)
	assert.Equal(t, model.IconVolumeMuted, icon)
	assert.True(t, visible)

	s.SetStateHandler(func(context.Context) (State, error) {
		return State{}, errors.New("pactl missing")
	})
	_, _, _, _, _, derr = s.GetState()
	require.NotNil(t, derr)
	assert.Equal(t, ErrorFailed, derr.Name)
}

func TestServer_GetServerInformation(t *testing.T) {
	s := NewServer(BrightnessProfile, 4, nil)
	s.SetServerInfo("brightd", "1.2.3")
	require.Nil(t, s.Increase(":1.5", 1))

	name, version, started, handled, derr := s.GetServerInformation()
	require.Nil(t, derr)
	assert.Equal(t, "brightd", name)
	assert.Equal(t, "1.2.3", version)
	assert.Positive(t, started)
	assert.Equal(t, uint64(1), handled)
}

func TestServer_Introspection(t *testing.T) {
	names := func(s *Server) []string {
		var out []string
		for _, m := range s.methods() {
			out = append(out, m.Name)
		}
		return out
	}

	assert.NotContains(t, names(NewServer(BrightnessProfile, 1, nil)), "ToggleMute")
	assert.Contains(t, names(NewServer(VolumeProfile, 1, nil)), "ToggleMute")
	assert.Equal(t, "StateChanged", stateSignals()[0].Name)
}

func TestServer_StopWithoutStart(t *testing.T) {
	s := NewServer(VolumeProfile, 1, nil)
	assert.NoError(t, s.Stop())
	assert.Error(t, s.EmitStateChanged(model.DisplayState{}))
	// not running, so Observe is a no-op
	s.Observe(model.Command{}, model.DisplayState{Text: "5%"})
}

func TestStateFromDisplay(t *testing.T) {
	ds := model.Describe(model.QuantityVolume, model.Reading{Level: 40})
	st := StateFromDisplay(ds, true)
	assert.Equal(t, State{Level: 40, Text: "40%", Icon: model.IconVolumeMedium, Visible: true}, st)
}

func TestTransportError(t *testing.T) {
	cause := errors.New("no bus")
	err := &TransportError{Op: "connect", Cause: cause}
	assert.Equal(t, "dbus connect: no bus", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsServiceUnknown(t *testing.T) {
	unknown := dbus.NewError("org.freedesktop.DBus.Error.ServiceUnknown", nil)
	assert.True(t, IsServiceUnknown(&TransportError{Op: "Increase", Cause: unknown}))
	assert.True(t, IsServiceUnknown(*unknown))
	assert.False(t, IsServiceUnknown(errors.New("other")))
}
