// Package purge implements confirmation-gated bulk deletion of schemas and
// API keys.
//
// Schema deletion follows a two-tier order: subjects whose latest schema
// declares references are soft-deleted first, then the remaining subjects,
// and only then is every discovered version permanently deleted. References
// are checked one level deep; chains of references are not resolved.
package purge

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bbejeck/confluent-cli-plugins/internal/confluent"
)

// Record is a schema subject as discovered at listing time.
type Record struct {
	Subject  string `yaml:"subject"`
	SchemaID int    `yaml:"schema_id"`
	Version  int    `yaml:"version"`
}

// Stage identifies the kind of delete a Step performs.
type Stage int

const (
	// StageSoft removes every version of a subject recoverably.
	StageSoft Stage = iota
	// StagePermanent irreversibly removes the discovered version.
	StagePermanent
	// StageKey deletes an API key.
	StageKey
)

func (s Stage) String() string {
	switch s {
	case StageSoft:
		return "soft"
	case StagePermanent:
		return "permanent"
	case StageKey:
		return "key"
	default:
		return "unknown"
	}
}

// Step is one delete in execution order.
type Step struct {
	Stage   Stage
	Subject string
	// Version is "all" for soft deletes and the discovered version for
	// permanent ones. Empty for keys.
	Version string
}

// Plan is the two-tier deletion order built from a snapshot of records.
type Plan struct {
	WithRefs    []Record `yaml:"with_references"`
	WithoutRefs []Record `yaml:"without_references"`
	Permanent   []Record `yaml:"permanent"`
}

// ReferenceChecker reports whether a record declares outgoing references.
type ReferenceChecker interface {
	HasReferences(ctx context.Context, r Record) (bool, error)
}

// ReferenceCheckerFunc adapts a function to ReferenceChecker.
type ReferenceCheckerFunc func(ctx context.Context, r Record) (bool, error)

func (f ReferenceCheckerFunc) HasReferences(ctx context.Context, r Record) (bool, error) {
	return f(ctx, r)
}

// BuildPlan partitions records by whether they reference other subjects,
// preserving discovery order within each tier. The first failing lookup
// aborts the build.
func BuildPlan(ctx context.Context, records []Record, refs ReferenceChecker) (*Plan, error) {
	plan := &Plan{Permanent: append([]Record(nil), records...)}
	for _, r := range records {
		has, err := refs.HasReferences(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("failed to look up references of %s: %w", r.Subject, err)
		}
		if has {
			plan.WithRefs = append(plan.WithRefs, r)
		} else {
			plan.WithoutRefs = append(plan.WithoutRefs, r)
		}
	}
	return plan, nil
}

// Steps returns the deletes in execution order. Each subject is soft-deleted
// once; every record gets its own permanent delete.
func (p *Plan) Steps() []Step {
	var steps []Step
	processed := make(map[string]bool)

	soft := func(records []Record) {
		for _, r := range records {
			if processed[r.Subject] {
				continue
			}
			processed[r.Subject] = true
			steps = append(steps, Step{Stage: StageSoft, Subject: r.Subject, Version: confluent.AllVersions})
		}
	}
	soft(p.WithRefs)
	soft(p.WithoutRefs)

	for _, r := range p.Permanent {
		steps = append(steps, Step{Stage: StagePermanent, Subject: r.Subject, Version: strconv.Itoa(r.Version)})
	}
	return steps
}

// Deleter performs a single Step and returns the tool's message.
type Deleter interface {
	Delete(ctx context.Context, step Step) (string, error)
}

// Reporter observes execution progress.
type Reporter interface {
	Deleting(step Step)
	Deleted(step Step, message string)
}

type nopReporter struct{}

func (nopReporter) Deleting(Step)        {}
func (nopReporter) Deleted(Step, string) {}

// Execute runs steps in order and stops at the first failure. Deletes that
// already succeeded are not undone.
func Execute(ctx context.Context, steps []Step, d Deleter, rep Reporter) (int, error) {
	if rep == nil {
		rep = nopReporter{}
	}
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		rep.Deleting(step)
		msg, err := d.Delete(ctx, step)
		if err != nil {
			return i, fmt.Errorf("%s delete of %s failed: %w", step.Stage, step.Subject, err)
		}
		rep.Deleted(step, msg)
	}
	return len(steps), nil
}
