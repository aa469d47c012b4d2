package traffic

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/core/execution/promise"
	"go.dedis.ch/xcall/core/host"
	"go.dedis.ch/xcall/internal/testing/fake"
)

func TestTraffic_NotifyCallback(t *testing.T) {
	out := new(bytes.Buffer)
	traffic := NewTraffic(out)

	traffic.NotifyCallback(makeEvent("A", "B", access.Remote, promise.NewSuccessful(nil)))
	require.Equal(t, 1, traffic.Len())
	require.Contains(t, out.String(), "> B\n- item:\n")
	require.Contains(t, out.String(), "-- to: B.deposit\n")
	require.Contains(t, out.String(), "-- status: successful\n")

	traffic.NotifyCallback("not an event")
	require.Equal(t, 1, traffic.Len())

	traffic = NewTraffic(nil)
	traffic.NotifyCallback(makeEvent("A", "B", access.Remote, promise.NewSuccessful(nil)))
	require.Equal(t, 1, traffic.Len())
}

func TestTraffic_Display(t *testing.T) {
	traffic := NewTraffic(nil)

	traffic.NotifyCallback(makeEvent("A", "B", access.Remote, promise.NewSuccessful(nil)))
	traffic.NotifyCallback(makeEvent("A", "A", access.FollowUp, promise.NewFailed(fake.GetError())))

	out := new(bytes.Buffer)
	traffic.Display(out)

	require.Contains(t, out.String(), "- traffic:\n-- item:\n")
	require.Contains(t, out.String(), "--- from: A\n")
	require.Contains(t, out.String(), "--- channel: followup\n")
	require.Contains(t, out.String(), "--- status: failed\n")
}

func TestGenerateGraphviz(t *testing.T) {
	traffic := NewTraffic(nil)

	traffic.NotifyCallback(makeEvent("A", "B", access.Remote, promise.NewSuccessful(nil)))
	traffic.NotifyCallback(makeEvent("A", "A", access.FollowUp, promise.NewFailed(fake.GetError())))

	out := new(bytes.Buffer)
	GenerateGraphviz(out, traffic)

	require.Contains(t, out.String(), "digraph calls {\n")
	require.Contains(t, out.String(), "Calls of 2 accounts")
	require.Contains(t, out.String(), `"A" -> "B" [ label = < <font color='#303030'><b>1</b> deposit`)
	require.Contains(t, out.String(), `color="#4AB2FF" style="solid"`)
	require.Contains(t, out.String(), `color="#FF4A4A" style="dashed"`)
}

func TestTraffic_Save(t *testing.T) {
	traffic := NewTraffic(nil)
	traffic.NotifyCallback(makeEvent("A", "B", access.Remote, promise.NewSuccessful(nil)))

	path := filepath.Join(t.TempDir(), "calls.dot")

	err := traffic.Save(path)
	require.NoError(t, err)

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"A" -> "B"`)

	err = traffic.Save(filepath.Join(t.TempDir(), "missing", "calls.dot"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "file: ")
}

// -----------------------------------------------------------------------------
// Utility functions

func makeEvent(from, to access.Account, ch access.Channel, outcome promise.Outcome) host.Event {
	return host.Event{
		Call: execution.Call{
			ID:       promise.NewRef(),
			Receiver: to,
			Method:   "deposit",
			Caller:   access.Caller{Account: from, Channel: ch},
		},
		Outcome: outcome,
	}
}
