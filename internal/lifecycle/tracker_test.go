package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleepadm/pkg/types"
)

func TestApply_ProcessingIsIdempotent(t *testing.T) {
	tr := NewTracker()
	first, eff := tr.Apply(StatusEvent{Module: "weather", Kind: KindInstall, Status: StatusProcessing})
	require.True(t, first.Changed)
	assert.Equal(t, EffectNone, eff)

	second, eff := tr.Apply(StatusEvent{Module: "weather", Kind: KindInstall, Status: StatusProcessing})
	assert.False(t, second.Changed)
	assert.Equal(t, EffectNone, eff)

	st, ok := tr.Get("weather")
	require.True(t, ok)
	assert.Equal(t, PhaseProcessing, st.Phase)
	assert.Equal(t, KindInstall, st.Kind)
}

func TestApply_StatusZeroIgnored(t *testing.T) {
	tr := NewTracker()
	tn, eff := tr.Apply(StatusEvent{Module: "weather", Kind: KindUpdate, Status: StatusNone})
	assert.False(t, tn.Changed)
	assert.Equal(t, EffectNone, eff)
	_, ok := tr.Get("weather")
	assert.False(t, ok, "a no-op status must not materialize state")
}

func TestApply_UpdateTriggeredInstallIgnored(t *testing.T) {
	tr := NewTracker()
	tr.Apply(StatusEvent{Module: "weather", Kind: KindUpdate, Status: StatusProcessing})
	before, _ := tr.Get("weather")

	for _, s := range []Status{StatusProcessing, StatusError, StatusDone, StatusCanceled} {
		tn, eff := tr.Apply(StatusEvent{Module: "weather", Kind: KindInstall, Status: s, UpdateProcess: true})
		assert.False(t, tn.Changed)
		assert.Equal(t, EffectNone, eff)
	}
	after, _ := tr.Get("weather")
	assert.Equal(t, before, after)
}

func TestApply_TerminalEffects(t *testing.T) {
	cases := []struct {
		status Status
		phase  Phase
		effect Effect
	}{
		{StatusError, PhaseFailed, EffectReloadReportFailure},
		{StatusDone, PhaseSucceeded, EffectReloadMarkPending},
		{StatusCanceled, PhaseCanceled, EffectNone},
	}
	for _, c := range cases {
		tr := NewTracker()
		tr.Apply(StatusEvent{Module: "m", Kind: KindUninstall, Status: StatusProcessing})
		tn, eff := tr.Apply(StatusEvent{Module: "m", Kind: KindUninstall, Status: c.status})
		require.True(t, tn.Changed)
		assert.Equal(t, c.phase, tn.To.Phase)
		assert.Equal(t, c.effect, eff)
		assert.False(t, tn.To.Pending, "pending is only set by Complete")
	}
}

func TestComplete_PendingOnlyAfterSuccess(t *testing.T) {
	tr := NewTracker()
	tr.Apply(StatusEvent{Module: "a", Kind: KindInstall, Status: StatusError})
	tr.Complete("a", EffectReloadReportFailure)
	st, _ := tr.Get("a")
	assert.False(t, st.Pending)

	tr.Apply(StatusEvent{Module: "b", Kind: KindInstall, Status: StatusDone})
	tr.Complete("b", EffectReloadMarkPending)
	st, _ = tr.Get("b")
	assert.True(t, st.Pending)

	tr.ResetPending()
	st, _ = tr.Get("b")
	assert.False(t, st.Pending)
}

func TestApply_DuplicateSuccessHasNoEffect(t *testing.T) {
	tr := NewTracker()
	tr.Apply(StatusEvent{Module: "weather", Kind: KindUpdate, Status: StatusProcessing})
	_, eff := tr.Apply(StatusEvent{Module: "weather", Kind: KindUpdate, Status: StatusDone})
	require.Equal(t, EffectReloadMarkPending, eff)
	tr.Complete("weather", eff)

	tn, eff := tr.Apply(StatusEvent{Module: "weather", Kind: KindUpdate, Status: StatusDone})
	assert.False(t, tn.Changed)
	assert.Equal(t, EffectNone, eff)
	st, _ := tr.Get("weather")
	assert.Equal(t, PhaseSucceeded, st.Phase)
	assert.True(t, st.Pending)
}

func TestApply_NewOperationAfterTerminal(t *testing.T) {
	tr := NewTracker()
	tr.Apply(StatusEvent{Module: "m", Kind: KindInstall, Status: StatusDone})
	tn, eff := tr.Apply(StatusEvent{Module: "m", Kind: KindUpdate, Status: StatusDone})
	assert.True(t, tn.Changed)
	assert.Equal(t, EffectReloadMarkPending, eff)
}

func TestSeed_MaterializesWithoutOverwriting(t *testing.T) {
	tr := NewTracker()
	tr.Apply(StatusEvent{Module: "a", Kind: KindInstall, Status: StatusProcessing})
	tr.Seed(map[string]types.ModuleInfo{"a": {Name: "a"}, "b": {Name: "b", Pending: true}})

	states := tr.States()
	require.Len(t, states, 2)
	assert.Equal(t, "a", states[0].Module)
	assert.Equal(t, PhaseProcessing, states[0].Phase)
	assert.Equal(t, PhaseIdle, states[1].Phase)
	assert.False(t, states[1].Pending)
}

func TestParseStatus(t *testing.T) {
	for code := 0; code <= 4; code++ {
		s, err := ParseStatus(code)
		require.NoError(t, err)
		assert.Equal(t, Status(code), s)
	}
	_, err := ParseStatus(5)
	assert.True(t, errors.Is(err, ErrUnknownStatus))
	_, err = ParseStatus(-1)
	assert.True(t, errors.Is(err, ErrUnknownStatus))
}

func TestDriverTracker(t *testing.T) {
	tr := NewDriverTracker()
	k := DriverKey{Type: "audio", Name: "respeaker"}

	st, changed, eff := tr.Apply(DriverEvent{Key: k, Kind: KindInstall, Running: true})
	assert.True(t, changed)
	assert.Equal(t, PhaseProcessing, st.Phase)
	assert.Equal(t, EffectNone, eff)

	st, changed, eff = tr.Apply(DriverEvent{Key: k, Kind: KindInstall, Success: false, Message: "boom"})
	assert.True(t, changed)
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.Equal(t, "boom", st.Message)
	assert.Equal(t, EffectReloadDrivers, eff)

	_, changed, eff = tr.Apply(DriverEvent{Key: k, Kind: KindInstall, Success: false, Message: "boom"})
	assert.False(t, changed)
	assert.Equal(t, EffectNone, eff)

	tr.Seed([]types.DriverInfo{{DriverType: "gpio", DriverName: "relay"}})
	states := tr.States()
	require.Len(t, states, 2)
	assert.Equal(t, "audio", states[0].Key.Type)
}
