package purge

import (
	"context"
	"fmt"

	"github.com/bbejeck/confluent-cli-plugins/internal/confluent"
	"github.com/bbejeck/confluent-cli-plugins/internal/prompt"
)

// Outcome reports how a purge ended when it did not fail.
type Outcome int

const (
	// Completed means every planned delete ran.
	Completed Outcome = iota
	// NothingFound means discovery returned no records and nobody was asked.
	NothingFound
	// Declined means the user refused and nothing was deleted.
	Declined
)

// gate asks for confirmation of n deletions. It never prompts when n is 0.
func gate(ctx context.Context, c prompt.Confirmer, n int, message string) (Outcome, bool, error) {
	if n == 0 {
		return NothingFound, false, nil
	}
	ok, err := c.Confirm(ctx, message)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return Declined, false, nil
	}
	return Completed, true, nil
}

// SchemaRegistry is the part of the schema-registry CLI a schema purge needs.
type SchemaRegistry interface {
	ListSchemas(ctx context.Context, subjectPrefix string) ([]confluent.SchemaSummary, error)
	References(ctx context.Context, schemaID int) ([]confluent.SchemaReference, error)
	DeleteSchema(ctx context.Context, subject, version string, permanent bool) (string, error)
}

// Schemas purges every schema under an optional subject prefix.
type Schemas struct {
	Registry      SchemaRegistry
	Confirmer     prompt.Confirmer
	Reporter      Reporter
	SubjectPrefix string
}

// Discover snapshots the schemas to delete.
func (s *Schemas) Discover(ctx context.Context) ([]Record, error) {
	schemas, err := s.Registry.ListSchemas(ctx, s.SubjectPrefix)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(schemas))
	for _, sc := range schemas {
		records = append(records, Record{Subject: sc.Subject, SchemaID: sc.SchemaID, Version: sc.Version})
	}
	return records, nil
}

func (s *Schemas) HasReferences(ctx context.Context, r Record) (bool, error) {
	refs, err := s.Registry.References(ctx, r.SchemaID)
	if err != nil {
		return false, err
	}
	return len(refs) > 0, nil
}

func (s *Schemas) Delete(ctx context.Context, step Step) (string, error) {
	return s.Registry.DeleteSchema(ctx, step.Subject, step.Version, step.Stage == StagePermanent)
}

// Plan builds the deletion plan without deleting anything.
func (s *Schemas) Plan(ctx context.Context, records []Record) (*Plan, error) {
	return BuildPlan(ctx, records, s)
}

// Purge confirms, plans and executes the deletion of records.
func (s *Schemas) Purge(ctx context.Context, records []Record) (Outcome, error) {
	outcome, proceed, err := gate(ctx, s.Confirmer, len(records),
		fmt.Sprintf("Are you sure you want to delete all %d schemas?", len(records)))
	if err != nil || !proceed {
		return outcome, err
	}

	plan, err := s.Plan(ctx, records)
	if err != nil {
		return 0, err
	}
	if _, err := Execute(ctx, plan.Steps(), s, s.Reporter); err != nil {
		return 0, err
	}
	return Completed, nil
}

// KeyStore is the part of the api-key CLI a key purge needs.
type KeyStore interface {
	ListAPIKeys(ctx context.Context, f confluent.KeyFilter) ([]confluent.KeySummary, error)
	DeleteAPIKey(ctx context.Context, key string) (string, error)
}

// Keys purges every API key matching Filter.
type Keys struct {
	Store     KeyStore
	Confirmer prompt.Confirmer
	Reporter  Reporter
	Filter    confluent.KeyFilter
}

// Discover lists the keys to delete.
func (k *Keys) Discover(ctx context.Context) ([]confluent.KeySummary, error) {
	return k.Store.ListAPIKeys(ctx, k.Filter)
}

func (k *Keys) Delete(ctx context.Context, step Step) (string, error) {
	return k.Store.DeleteAPIKey(ctx, step.Subject)
}

// Purge confirms and deletes keys in listing order.
func (k *Keys) Purge(ctx context.Context, keys []confluent.KeySummary) (Outcome, error) {
	outcome, proceed, err := gate(ctx, k.Confirmer, len(keys),
		fmt.Sprintf("Found %d API keys are you sure you want to purge them?", len(keys)))
	if err != nil || !proceed {
		return outcome, err
	}

	steps := make([]Step, 0, len(keys))
	for _, key := range keys {
		steps = append(steps, Step{Stage: StageKey, Subject: key.Key})
	}
	if _, err := Execute(ctx, steps, k, k.Reporter); err != nil {
		return 0, err
	}
	return Completed, nil
}
