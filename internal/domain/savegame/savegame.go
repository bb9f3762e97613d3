package savegame

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
	"github.com/andrescamacho/fabtycoon-go/pkg/utils"
)

// AutosavePrefix marks saves written by the autosave rotation
const AutosavePrefix = "auto-"

// DefaultAutosaveSlots is how many autosaves are kept
const DefaultAutosaveSlots = 6

// Status of a save record
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusInProgress || s == StatusDone
}

// ParseStatus parses a stored status
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid save status: %s", s)
	}
	return st, nil
}

// Save is one persisted snapshot of a game session
type Save struct {
	ID             string
	Name           string
	Status         Status
	ScenarioID     string
	CreatedAt      time.Time
	Month          shared.Month
	ProgressMonths int
	Fingerprint    string
	Snapshot       []byte
}

// New snapshots a state into a save record. Autosaves start in progress and are marked done
// once written; manual saves are done immediately.
func New(name string, s *simulation.State, clock shared.Clock) (*Save, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("name", "save name cannot be empty")
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}

	data, err := simulation.Snapshot(s)
	if err != nil {
		return nil, err
	}
	fp, err := simulation.Fingerprint(s)
	if err != nil {
		return nil, err
	}

	status := StatusDone
	if IsAutosave(name) {
		status = StatusInProgress
	}
	return &Save{
		ID:             utils.GenerateSaveID(name),
		Name:           name,
		Status:         status,
		ScenarioID:     s.ScenarioID,
		CreatedAt:      clock.Now(),
		Month:          s.Month,
		ProgressMonths: s.ElapsedMonths(),
		Fingerprint:    fp,
		Snapshot:       data,
	}, nil
}

// ManualName is the default name of a manual save taken at month m
func ManualName(m shared.Month) string {
	return fmt.Sprintf("manual-%04d%02d", m.Year(), m.MonthOfYear())
}

// AutosaveName names the autosave taken at month m
func AutosaveName(m shared.Month) string {
	return fmt.Sprintf("%s%04d%02d", AutosavePrefix, m.Year(), m.MonthOfYear())
}

// IsAutosave reports whether a save name belongs to the autosave rotation
func IsAutosave(name string) bool {
	return strings.HasPrefix(name, AutosavePrefix)
}

// MarkDone completes an autosave
func (s *Save) MarkDone() {
	s.Status = StatusDone
}

// Restore decodes the snapshot and checks it against the recorded fingerprint
func (s *Save) Restore() (*simulation.State, error) {
	st, err := simulation.Restore(s.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to restore save %s: %w", s.ID, err)
	}
	if s.Fingerprint != "" {
		fp, err := simulation.Fingerprint(st)
		if err != nil {
			return nil, err
		}
		if fp != s.Fingerprint {
			return nil, fmt.Errorf("save %s is corrupt: fingerprint mismatch", s.ID)
		}
	}
	return st, nil
}

// Expired returns the autosaves beyond the newest keep, oldest first
func Expired(saves []*Save, keep int) []*Save {
	var autos []*Save
	for _, s := range saves {
		if IsAutosave(s.Name) {
			autos = append(autos, s)
		}
	}
	if keep < 0 {
		keep = 0
	}
	if len(autos) <= keep {
		return nil
	}
	sort.SliceStable(autos, func(i, j int) bool {
		if !autos[i].CreatedAt.Equal(autos[j].CreatedAt) {
			return autos[i].CreatedAt.Before(autos[j].CreatedAt)
		}
		return autos[i].ProgressMonths < autos[j].ProgressMonths
	})
	return autos[:len(autos)-keep]
}
