// Package session drives the load, detect, mitigate, export workflow and
// enforces the order in which those steps may run.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/KaramelBytes/fairloom-cli/internal/bias"
	"github.com/KaramelBytes/fairloom-cli/internal/dataio"
	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"github.com/KaramelBytes/fairloom-cli/internal/rebalance"
	"github.com/google/uuid"
)

// State is a step of the workflow.
type State int

const (
	NoData State = iota
	Loaded
	Detected
	Mitigated
)

func (s State) String() string {
	switch s {
	case NoData:
		return "no-data"
	case Loaded:
		return "loaded"
	case Detected:
		return "detected"
	case Mitigated:
		return "mitigated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is matched by every *TransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError reports an operation attempted from a state that does not allow it.
type TransitionError struct {
	Op   string
	From State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// Session holds the working dataset and the latest results of one run.
// It is not safe for concurrent use.
type Session struct {
	ID     string
	logger *slog.Logger

	state    State
	source   string
	original *dataset.Dataset
	working  *dataset.Dataset
	target   string
	reports  map[string]bias.Report
	strategy rebalance.Strategy
}

// New starts an empty session. A nil logger discards output.
func New(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.NewString()
	return &Session{
		ID:     id,
		logger: logger.With("session", id),
		state:  NoData,
	}
}

// State returns the current step.
func (s *Session) State() State { return s.state }

// Dataset returns the working dataset: the loaded one, or the rebalanced one after Mitigate.
func (s *Session) Dataset() *dataset.Dataset { return s.working }

// Source names where the dataset came from.
func (s *Session) Source() string { return s.source }

// Original returns the dataset as loaded.
func (s *Session) Original() *dataset.Dataset { return s.original }

// Reports returns the results of the latest detection.
func (s *Session) Reports() map[string]bias.Report { return s.reports }

// Target returns the target column of the latest detection.
func (s *Session) Target() string { return s.target }

// AnyBiased reports whether the latest detection flagged an attribute.
func (s *Session) AnyBiased() bool {
	for _, r := range s.reports {
		if r.Biased {
			return true
		}
	}
	return false
}

func (s *Session) transition(to State) {
	s.logger.Debug("session transition", "from", s.state.String(), "to", to.String())
	s.state = to
}

// Load replaces the dataset and discards earlier results. Allowed in every state.
func (s *Session) Load(name string, ds *dataset.Dataset) error {
	if ds == nil {
		return errors.New("load: nil dataset")
	}
	s.source = name
	s.original = ds
	s.working = ds
	s.target = ""
	s.reports = nil
	s.logger.Info("dataset loaded", "source", name, "rows", ds.Len(), "columns", ds.NumColumns())
	s.transition(Loaded)
	return nil
}

// LoadFile reads path with dataio and loads the result.
func (s *Session) LoadFile(path string, opt dataio.Options) error {
	ds, err := dataio.Load(path, opt)
	if err != nil {
		return err
	}
	return s.Load(path, ds)
}

// Detect runs bias detection on the original dataset.
func (s *Session) Detect(sensitive []string, target string, opt bias.Options) (map[string]bias.Report, error) {
	if s.state == NoData {
		return nil, &TransitionError{Op: "detect", From: s.state}
	}
	reports, err := bias.DetectBias(s.original, sensitive, target, opt)
	if err != nil && !(opt.Partial && reports != nil) {
		s.logger.Warn("detection failed", "target", target, "error", err)
		return nil, err
	}
	s.target = target
	s.reports = reports
	s.working = s.original
	for _, name := range sortedNames(reports) {
		r := reports[name]
		s.logger.Info("attribute tested", "attribute", name, "chi2", r.Statistic, "p_value", r.PValue, "biased", r.Biased)
	}
	s.transition(Detected)
	return reports, err
}

// Mitigate rebalances the target of the latest detection.
func (s *Session) Mitigate(strategy rebalance.Strategy, opt rebalance.Options) (*dataset.Dataset, error) {
	if s.state != Detected {
		return nil, &TransitionError{Op: "mitigate", From: s.state}
	}
	out, err := rebalance.Rebalance(s.original, s.target, strategy, opt)
	if err != nil {
		s.logger.Warn("mitigation failed", "strategy", string(strategy), "error", err)
		return nil, err
	}
	s.working = out
	s.strategy = strategy
	s.logger.Info("dataset rebalanced", "strategy", string(strategy), "seed", opt.Seed, "rows_before", s.original.Len(), "rows_after", out.Len())
	s.transition(Mitigated)
	return out, nil
}

// Export writes the rebalanced dataset to path as CSV.
func (s *Session) Export(path string) error {
	if s.state != Mitigated {
		return &TransitionError{Op: "export", From: s.state}
	}
	if err := dataio.ExportCSV(path, s.working); err != nil {
		return err
	}
	s.logger.Info("dataset exported", "path", path, "rows", s.working.Len())
	return nil
}

// Strategy returns the strategy of the latest mitigation.
func (s *Session) Strategy() rebalance.Strategy { return s.strategy }

func sortedNames(reports map[string]bias.Report) []string {
	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
