package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dukerupert/chorehub/internal/model"
)

func TestObserveMutationResults(t *testing.T) {
	action := "test mutation results"
	ObserveMutation(action, nil)
	ObserveMutation(action, errors.New("boom"))
	ObserveMutation(action, model.Invalid("title", "title is required"))
	ObserveMutation(action, fmt.Errorf("chore x: %w", model.ErrNotFound))

	for res, want := range map[string]float64{"ok": 1, "error": 1, "rejected": 2} {
		if got := testutil.ToFloat64(mutationsTotal.WithLabelValues(action, res)); got != want {
			t.Errorf("mutations{result=%s} = %v, want %v", res, got, want)
		}
	}
}

func TestObserveRemote(t *testing.T) {
	ObserveRemote("insert", "test_table", time.Now(), nil)
	ObserveRemote("insert", "test_table", time.Now(), errors.New("down"))

	if got := testutil.ToFloat64(remoteCallsTotal.WithLabelValues("insert", "test_table", "error")); got != 1 {
		t.Errorf("remote errors = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(remoteCallSeconds); n == 0 {
		t.Error("expected latency observations")
	}
}

func TestSetWorkspaces(t *testing.T) {
	SetWorkspaces(3)
	if got := testutil.ToFloat64(workspacesActive); got != 3 {
		t.Errorf("workspaces = %v, want 3", got)
	}
}
