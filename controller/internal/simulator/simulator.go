// Package simulator implements the Instrument Controller capability against
// simulated hardware. Actions complete after a short delay; activities walk
// the PENDING -> IN_PROGRESS -> terminal lifecycle on scheduled timers.
package simulator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adam-platform/instrument-bridge/common/contract"
	"github.com/adam-platform/instrument-bridge/common/logging"
	"github.com/adam-platform/instrument-bridge/controller/internal/metrics"
)

// Capability lists of the simulated instrument.
var (
	ActionNames   = []string{"HOME", "MOVE", "CALIBRATE"}
	ActivityNames = []string{"BUILD", "SCAN"}
)

// FailingAction always reports ACTION_FAILURE. Reserved for contract tests
// exercising the failure path.
const FailingAction = "CALIBRATE"

const failingActionMsg = "Calibration target not found"

// productCount is the number of data products a completed activity yields.
const productCount = 2

// Config configures a Simulator. Zero values fall back to defaults.
type Config struct {
	// ControllerID identifies this controller instance.
	ControllerID string

	// Name is the human-readable controller name.
	Name string

	// ActionDelay is the simulated action execution time.
	ActionDelay time.Duration

	// ProgressDelay is the time from PENDING to IN_PROGRESS.
	ProgressDelay time.Duration

	// CompleteDelay is the time from IN_PROGRESS to the terminal check.
	CompleteDelay time.Duration

	// Clock abstracts time; defaults to the real clock.
	Clock Clock

	// IDs generates activity and product identifiers; defaults to sequential.
	IDs IDGenerator

	// Logger defaults to the process default.
	Logger *logging.Logger
}

// activity is the state of one long-running operation. Exclusively owned by
// the Simulator that created it.
type activity struct {
	id        string
	name      string
	status    string
	timeBegin string
	timeEnd   string
	statusMsg string
	deadline  *time.Time
	products  []string
}

// Simulator implements contract.InstrumentController.
type Simulator struct {
	cfg    Config
	logger *logging.Logger

	mu         sync.Mutex
	activities map[string]*activity
	timers     map[uint64]Timer
	nextTimer  uint64
	cb         contract.EventCallback
	shutdown   bool
}

// New creates a Simulator with defaults applied.
func New(cfg Config) *Simulator {
	if cfg.ControllerID == "" {
		cfg.ControllerID = "sim-controller-1"
	}
	if cfg.Name == "" {
		cfg.Name = "INTERSECT Instrument Controller Simulator"
	}
	if cfg.ActionDelay == 0 {
		cfg.ActionDelay = 200 * time.Millisecond
	}
	if cfg.ProgressDelay == 0 {
		cfg.ProgressDelay = 200 * time.Millisecond
	}
	if cfg.CompleteDelay == 0 {
		cfg.CompleteDelay = 500 * time.Millisecond
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.IDs == nil {
		cfg.IDs = NewSequentialIDs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Simulator{
		cfg:        cfg,
		logger:     logger.With(logging.ControllerID(cfg.ControllerID)),
		activities: make(map[string]*activity),
		timers:     make(map[uint64]Timer),
	}
}

// Descriptor returns the controller identity and capability lists.
func (s *Simulator) Descriptor() contract.ControllerDescriptor {
	return contract.ControllerDescriptor{
		ControllerID:  s.cfg.ControllerID,
		Name:          s.cfg.Name,
		Type:          "simulator",
		ActionNames:   append([]string(nil), ActionNames...),
		ActivityNames: append([]string(nil), ActivityNames...),
	}
}

// ListActions returns the supported action names.
func (s *Simulator) ListActions() []string {
	return append([]string(nil), ActionNames...)
}

// ListActivities returns the supported activity names.
func (s *Simulator) ListActivities() []string {
	return append([]string(nil), ActivityNames...)
}

// SetEventCallback registers the emission callback. The callback runs under
// the controller lock; it must not call back into the controller.
func (s *Simulator) SetEventCallback(cb contract.EventCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

// PerformAction accepts the action immediately and schedules its completion
// event. CALIBRATE deterministically fails.
func (s *Simulator) PerformAction(ctx context.Context, cmd contract.PerformActionCmd) contract.ActionReply {
	if cmd.ActionName == "" {
		return contract.ActionReply{Accepted: false, ErrorMsg: "actionName is required"}
	}

	timeBegin := Timestamp(s.cfg.Clock.Now())
	name := cmd.ActionName

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return contract.ActionReply{Accepted: false, ErrorMsg: "controller is shut down"}
	}

	s.schedule(s.cfg.ActionDelay, func() {
		status := contract.ActionSuccess
		statusMsg := ""
		if strings.EqualFold(name, FailingAction) {
			status = contract.ActionFailure
			statusMsg = failingActionMsg
		}

		payload := map[string]interface{}{
			"actionName":   name,
			"actionStatus": status,
			"timeBegin":    timeBegin,
			"timeEnd":      Timestamp(s.cfg.Clock.Now()),
		}
		if statusMsg != "" {
			payload["statusMsg"] = statusMsg
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.emit(contract.EventActionCompletion, payload)
		metrics.ActionsTotal.WithLabelValues(name, status).Inc()
	})

	return contract.ActionReply{Accepted: true}
}

// StartActivity allocates a fresh activity and drives its lifecycle on the
// clock's timers. Unknown names are rejected without creating state.
func (s *Simulator) StartActivity(ctx context.Context, req contract.StartActivityRequest) contract.StartActivityReply {
	if !contains(ActivityNames, req.ActivityName) {
		return contract.StartActivityReply{
			ActivityID: "",
			ErrorMsg:   fmt.Sprintf("Unknown activityName: %s", req.ActivityName),
		}
	}

	var deadline *time.Time
	if req.ActivityDeadline != "" {
		t, err := time.Parse(time.RFC3339, req.ActivityDeadline)
		if err != nil {
			return contract.StartActivityReply{
				ActivityID: "",
				ErrorMsg:   fmt.Sprintf("Invalid activityDeadline: %v", err),
			}
		}
		deadline = &t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return contract.StartActivityReply{ActivityID: "", ErrorMsg: "controller is shut down"}
	}

	act := &activity{
		id:        s.cfg.IDs.NextActivityID(),
		name:      req.ActivityName,
		status:    contract.ActivityPending,
		timeBegin: Timestamp(s.cfg.Clock.Now()),
		deadline:  deadline,
	}
	s.activities[act.id] = act

	s.emitStatusChange(act)
	metrics.ActivitiesStarted.Inc()

	id := act.id
	s.schedule(s.cfg.ProgressDelay, func() { s.advanceToInProgress(id) })

	return contract.StartActivityReply{ActivityID: act.id}
}

// advanceToInProgress is the first scheduled lifecycle step.
func (s *Simulator) advanceToInProgress(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.activities[id]
	if !ok || contract.TerminalStatus(act.status) {
		// Canceled (or cleared) before the timer fired. Terminal states absorb.
		return
	}

	act.status = contract.ActivityInProgress
	s.emitStatusChange(act)

	s.schedule(s.cfg.CompleteDelay, func() { s.finish(id) })
}

// finish is the second scheduled step: deadline check, then completion.
// Deadline cancellation is detected here, not preempted mid-wait.
func (s *Simulator) finish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.activities[id]
	if !ok || contract.TerminalStatus(act.status) {
		return
	}

	now := s.cfg.Clock.Now()
	if act.deadline != nil && now.After(*act.deadline) {
		act.status = contract.ActivityCanceled
		act.statusMsg = "Deadline exceeded"
		act.timeEnd = Timestamp(now)
		s.emitStatusChange(act)
		metrics.ActivitiesFinished.WithLabelValues(act.status).Inc()
		return
	}

	act.status = contract.ActivityCompleted
	act.timeEnd = Timestamp(now)
	act.products = make([]string, 0, productCount)
	for i := 0; i < productCount; i++ {
		act.products = append(act.products, s.cfg.IDs.NewProductID())
	}
	s.emitStatusChange(act)
	metrics.ActivitiesFinished.WithLabelValues(act.status).Inc()
}

// CancelActivity forces an immediate transition to CANCELED for non-terminal
// activities. The simulator owns its hardware, so cancellation is always
// confirmed.
func (s *Simulator) CancelActivity(ctx context.Context, cmd contract.CancelActivityCmd) contract.CancelReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.activities[cmd.ActivityID]
	if !ok {
		return contract.CancelReply{
			Accepted: false,
			ErrorMsg: fmt.Sprintf("Unknown activityId: %s", cmd.ActivityID),
		}
	}
	if contract.TerminalStatus(act.status) {
		return contract.CancelReply{
			Accepted: false,
			ErrorMsg: fmt.Sprintf("activity %s already in terminal state %s", act.id, act.status),
		}
	}

	act.status = contract.ActivityCanceled
	act.statusMsg = cmd.Reason
	act.timeEnd = Timestamp(s.cfg.Clock.Now())
	s.emitStatusChange(act)
	metrics.ActivitiesFinished.WithLabelValues(act.status).Inc()

	return contract.CancelReply{Accepted: true, Confirmed: true}
}

// ActivityStatus reports current status, timestamps, and message.
func (s *Simulator) ActivityStatus(ctx context.Context, activityID string) contract.ActivityStatusReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.activities[activityID]
	if !ok {
		return contract.ActivityStatusReply{
			ActivityStatus: contract.ActivityFailed,
			ErrorMsg:       fmt.Sprintf("Unknown activityId: %s", activityID),
		}
	}

	return contract.ActivityStatusReply{
		ActivityStatus: act.status,
		TimeBegin:      act.timeBegin,
		TimeEnd:        act.timeEnd,
		StatusMsg:      act.statusMsg,
	}
}

// ActivityData gates product ids on completion.
func (s *Simulator) ActivityData(ctx context.Context, activityID string) contract.ActivityDataReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.activities[activityID]
	if !ok {
		return contract.ActivityDataReply{
			Products: []string{},
			ErrorMsg: fmt.Sprintf("Unknown activityId: %s", activityID),
		}
	}
	if act.status != contract.ActivityCompleted {
		return contract.ActivityDataReply{
			Products: []string{},
			ErrorMsg: "Data not ready",
		}
	}

	return contract.ActivityDataReply{
		Products: append([]string(nil), act.products...),
	}
}

// Shutdown stops pending timers and clears all activity state.
func (s *Simulator) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[uint64]Timer)
	s.activities = make(map[string]*activity)
	s.shutdown = true
	s.logger.Info("controller shut down, activity state cleared")
}

// schedule registers a timer so Shutdown can stop it. The handle is dropped
// once the timer fires, so long-lived controllers do not accumulate spent
// timers. Callers hold s.mu.
func (s *Simulator) schedule(d time.Duration, f func()) {
	id := s.nextTimer
	s.nextTimer++
	s.timers[id] = s.cfg.Clock.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		f()
	})
}

// emitStatusChange emits the InstrumentActivityStatusChange event for the
// activity's current state. Callers hold s.mu, which guarantees strict
// per-activity emission order.
func (s *Simulator) emitStatusChange(act *activity) {
	payload := map[string]interface{}{
		"activityId":     act.id,
		"activityName":   act.name,
		"activityStatus": act.status,
	}
	if act.statusMsg != "" {
		payload["statusMsg"] = act.statusMsg
	}
	s.emit(contract.EventActivityStatusChange, payload)
}

// emit delivers an envelope to the registered callback. No callback means a
// silent no-op. Callers hold s.mu.
func (s *Simulator) emit(eventName string, eventData map[string]interface{}) {
	if s.cb == nil {
		return
	}
	s.cb(contract.RawEventEnvelope{
		EventName: eventName,
		EventData: eventData,
	})
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
