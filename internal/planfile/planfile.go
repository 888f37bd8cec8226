// Package planfile loads scheduling plans from YAML documents and validates
// them before anything downstream runs.
package planfile

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/me/roadmap/pkg/model"
)

// document is the on-disk YAML shape of a plan.
type document struct {
	Name       string            `yaml:"name"`
	Tasks      []model.Task      `yaml:"tasks"`
	Engineers  []model.Engineer  `yaml:"engineers"`
	Milestones []model.Milestone `yaml:"milestones"`
}

// Load reads, parses, and validates a plan file.
func Load(path string) (*model.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML plan document and validates it.
func Parse(data []byte) (*model.Plan, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	// An omitted availability means full-time.
	for i := range doc.Engineers {
		if doc.Engineers[i].Availability == 0 {
			doc.Engineers[i].Availability = 1
		}
	}

	plan := &model.Plan{
		ID:         uuid.New().String(),
		Name:       doc.Name,
		Tasks:      doc.Tasks,
		Engineers:  doc.Engineers,
		Milestones: doc.Milestones,
		CreatedAt:  time.Now().UTC(),
	}
	if err := Validate(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ValidationError aggregates every problem found in a plan so callers can
// report them all at once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid plan: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid plan: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// Validate checks structural requirements: ids present and unique,
// availability fractions in range, dates well-formed, milestone anchors
// known, and freeze dates on or before deadlines. Soft data problems
// (orphaned deps, missing sizes) are diagnostics, not validation failures.
func Validate(plan *model.Plan) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(plan.Tasks) == 0 {
		addf("plan has no tasks")
	}

	taskIDs := make(map[string]bool, len(plan.Tasks))
	for i, t := range plan.Tasks {
		if t.ID == "" {
			addf("task %d has no id", i)
			continue
		}
		if taskIDs[t.ID] {
			addf("duplicate task id %q", t.ID)
		}
		taskIDs[t.ID] = true

		if t.Size < 0 || t.Size > model.SizeClassMax {
			addf("task %q size %v outside 0–%d", t.ID, t.Size, model.SizeClassMax)
		}
	}

	assignable := false
	engIDs := make(map[string]bool, len(plan.Engineers))
	for i, e := range plan.Engineers {
		if !e.External {
			assignable = true
		}
		if e.ID == "" {
			addf("engineer %d has no id", i)
			continue
		}
		if engIDs[e.ID] {
			addf("duplicate engineer id %q", e.ID)
		}
		engIDs[e.ID] = true

		if e.Availability <= 0 || e.Availability > 1 {
			addf("engineer %q availability %v outside (0, 1]", e.ID, e.Availability)
		}
		for _, r := range e.Unavailable {
			if _, err := model.ParseDate(string(r.Start)); err != nil {
				addf("engineer %q unavailability start: %v", e.ID, err)
			}
			if _, err := model.ParseDate(string(r.End)); err != nil {
				addf("engineer %q unavailability end: %v", e.ID, err)
			}
			if r.End.Before(r.Start) {
				addf("engineer %q unavailability range %s..%s is reversed", e.ID, r.Start, r.End)
			}
		}
	}

	if !assignable {
		for _, t := range plan.Tasks {
			if !t.Resolved && !t.ZeroEffort && t.Assignee == "" {
				addf("task %q needs an engineer but the roster has no assignable entries", t.ID)
				break
			}
		}
	}

	msNames := make(map[string]bool, len(plan.Milestones))
	for i, m := range plan.Milestones {
		if m.Name == "" {
			addf("milestone %d has no name", i)
			continue
		}
		if msNames[m.Name] {
			addf("duplicate milestone name %q", m.Name)
		}
		msNames[m.Name] = true

		if !taskIDs[m.AnchorTaskID] {
			addf("milestone %q anchor task %q does not exist", m.Name, m.AnchorTaskID)
		}
		if _, err := model.ParseDate(string(m.Deadline)); err != nil {
			addf("milestone %q deadline: %v", m.Name, err)
		}
		if _, err := model.ParseDate(string(m.Freeze)); err != nil {
			addf("milestone %q freeze: %v", m.Name, err)
		}
		if m.Deadline.Before(m.Freeze) {
			addf("milestone %q freeze %s is after deadline %s", m.Name, m.Freeze, m.Deadline)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
