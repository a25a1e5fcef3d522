package vehicle

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/vfleet/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/vfleet/internal/pkg/util/fsm"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
)

const (
	// EventAssign starts a delivery cycle.
	EventAssign = "assign"
	// EventDepart leaves the depot after loading.
	EventDepart = "depart"
	// EventArrive reaches the destination.
	EventArrive = "arrive"
	// EventUnload finishes unloading and heads back.
	EventUnload = "unload"
	// EventFinish reaches the depot.
	EventFinish = "finish"
	// EventAlert reacts to a forced anomaly.
	EventAlert = "alert"
	// EventRecall sends an alerted vehicle back to the depot.
	EventRecall = "recall"
	// EventRepair starts the recovery dwell.
	EventRepair = "repair"
	// EventRecover ends the recovery dwell.
	EventRecover = "recover"
)

var (
	stLoading    = core.StatusLoading.String()
	stDelivering = core.StatusDelivering.String()
	stUnloading  = core.StatusUnloading.String()
	stReturning  = core.StatusReturning.String()
	stWaiting    = core.StatusWaiting.String()
	stRepairing  = core.StatusRepairing.String()
	stAlert      = core.StatusAlert.String()

	allStatusNames = func() []string {
		names := make([]string, 0, len(core.AllStatuses))
		for _, s := range core.AllStatuses {
			names = append(names, s.String())
		}
		return names
	}()
)

// newStatusMachine builds the status machine of a vehicle. Entering any state
// calls onEnter with the new status.
func newStatusMachine(onEnter func(ctx context.Context, s core.Status) error) *fsm.FSM {
	events := fsm.Events{
		{Name: EventAssign, Src: []string{stWaiting}, Dst: stLoading},
		{Name: EventDepart, Src: []string{stLoading}, Dst: stDelivering},
		{Name: EventArrive, Src: []string{stDelivering}, Dst: stUnloading},
		{Name: EventUnload, Src: []string{stUnloading}, Dst: stReturning},
		{Name: EventFinish, Src: []string{stReturning}, Dst: stWaiting},

		// Anomalies
		{Name: EventAlert, Src: []string{stLoading, stDelivering, stUnloading, stReturning, stWaiting, stRepairing}, Dst: stAlert},
		{Name: EventRecall, Src: []string{stAlert}, Dst: stReturning},
		{Name: EventRepair, Src: []string{stAlert, stReturning, stWaiting}, Dst: stRepairing},
		{Name: EventRecover, Src: []string{stRepairing}, Dst: stWaiting},
	}

	callbacks := fsm.Callbacks{
		"enter_state": fsmutil.WrapEvent(func(ctx context.Context, e *fsm.Event) error {
			s, err := core.ParseStatus(e.Dst)
			if err != nil {
				return err
			}
			return onEnter(ctx, s)
		}),
	}

	return fsm.NewFSM(stWaiting, events, callbacks)
}

// enterStatus publishes the status change and updates metrics.
func (v *Vehicle) enterStatus(ctx context.Context, s core.Status) error {
	v.status = s
	v.logger.Info("Status changed", "status", s.String())
	metrics.SetStatus(v.cfg.ID, s.String(), allStatusNames)
	v.publishSnapshot()
	v.reporter.ReportStatus(ctx, v.cfg.ID, s)
	return nil
}

// fire triggers event on the status machine.
func (v *Vehicle) fire(ctx context.Context, event string) error {
	return v.machine.Event(ctx, event)
}
