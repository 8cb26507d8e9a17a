package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"receipts/internal/config"
	"receipts/internal/ledger"
	"receipts/internal/pkg/airtable"
	"receipts/internal/pkg/github"
	"receipts/internal/receipt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Renderer produces a printable file for a receipt.
type Renderer interface {
	Render(ctx context.Context, r *receipt.Receipt, templateName string) (string, error)
}

// Printer hands a rendered file to the print spooler.
type Printer interface {
	Print(ctx context.Context, path string) error
}

// PollFetchError means the record list itself could not be fetched; the pass
// is abandoned without touching the ledger.
type PollFetchError struct {
	Namespace ledger.Namespace
	Err       error
}

func (e *PollFetchError) Error() string {
	return fmt.Sprintf("failed to fetch records of %s: %v", e.Namespace, e.Err)
}

func (e *PollFetchError) Unwrap() error {
	return e.Err
}

// PassResult counts what one pass did with the fetched records.
type PassResult struct {
	Fetched     int
	Printed     int
	AlreadySeen int
	Failed      int
}

// TaskProcessor holds dependencies for our task handlers
type TaskProcessor struct {
	config         *config.Config
	store          ledger.Store
	airtableClient *airtable.Client
	githubClient   *github.Client
	enricher       *receipt.Enricher
	renderer       Renderer
	printer        Printer
}

// NewTaskProcessor creates a new TaskProcessor
func NewTaskProcessor(store ledger.Store, cfg *config.Config, renderer Renderer, printer Printer) (*TaskProcessor, error) {
	questions := receipt.DefaultQuestions()
	if cfg.QuestionsFile != "" {
		var err error
		questions, err = receipt.LoadQuestions(cfg.QuestionsFile)
		if err != nil {
			return nil, err
		}
	}

	githubClient := github.New(cfg.GitHubToken)

	return &TaskProcessor{
		config:         cfg,
		store:          store,
		airtableClient: airtable.New(cfg.AirtableAPIKey),
		githubClient:   githubClient,
		enricher: receipt.NewEnricher(githubClient, receipt.Options{
			GrantType: cfg.GrantType,
			Location:  cfg.Location,
			Questions: questions,
		}),
		renderer: renderer,
		printer:  printer,
	}, nil
}

// DefaultNamespace is the table named by the configuration.
func (p *TaskProcessor) DefaultNamespace() ledger.Namespace {
	return ledger.Namespace{BaseID: p.config.BaseID, TableID: p.config.TableName}
}

func (p *TaskProcessor) HandlePollRecordsTask(ctx context.Context, t *asynq.Task) error {
	var payload PollRecordsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	ns := p.DefaultNamespace()
	if payload.BaseID != nil && *payload.BaseID != "" {
		ns.BaseID = *payload.BaseID
	}
	if payload.TableID != nil && *payload.TableID != "" {
		ns.TableID = *payload.TableID
	}

	if _, err := p.RunPass(ctx, ns); err != nil {
		// the next scheduled tick is the retry
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return nil
}

// RunPass reconciles the records of ns against the ledger: every record not
// yet in the ledger is enriched, rendered, printed and then marked. The ledger
// is saved after each printed record so a crash reprints at most one receipt.
// A record that fails anywhere before printing is logged and left unmarked so
// the next pass retries it. Cancelling ctx ends the pass early and leaves the
// record in flight unmarked.
func (p *TaskProcessor) RunPass(ctx context.Context, ns ledger.Namespace) (PassResult, error) {
	var result PassResult
	passID := uuid.NewString()[:8]

	log.Printf("[pass %s] Polling for new records in %s", passID, ns)

	l, err := ledger.Load(ctx, p.store)
	if err != nil {
		return result, err
	}

	records, err := p.airtableClient.ListRecords(ctx, ns.BaseID, ns.TableID)
	if err != nil {
		return result, &PollFetchError{Namespace: ns, Err: err}
	}
	result.Fetched = len(records)

	for _, record := range records {
		if record.ID == "" {
			log.Printf("[pass %s] skipping record without id", passID)
			result.Failed++
			continue
		}

		if l.Contains(ns, record.ID) {
			result.AlreadySeen++
			continue
		}

		log.Printf("[pass %s] New record found: %s. Printing", passID, record.ID)
		err := p.processRecord(ctx, record)
		if ctxErr := ctx.Err(); ctxErr != nil {
			// a print cut short by shutdown must stay unmarked
			log.Printf("[pass %s] stopped while processing %s: %v", passID, record.ID, ctxErr)
			result.Failed++
			return result, ctxErr
		}
		if err != nil {
			log.Printf("[pass %s] failed to process record %s: %v", passID, record.ID, err)
			result.Failed++
			continue
		}

		l.Mark(ns, record.ID)
		result.Printed++

		if err := l.Save(ctx); err != nil {
			log.Printf("[pass %s] failed to persist mark for %s: %v", passID, record.ID, err)
		}
	}

	if err := l.Save(ctx); err != nil {
		return result, err
	}

	log.Printf("[pass %s] Done: fetched %d, printed %d, already seen %d, failed %d",
		passID, result.Fetched, result.Printed, result.AlreadySeen, result.Failed)

	return result, nil
}

func (p *TaskProcessor) processRecord(ctx context.Context, record airtable.Record) error {
	r, err := p.enricher.Enrich(ctx, record)
	if err != nil {
		return err
	}

	path, err := p.renderer.Render(ctx, r, p.config.TemplateName)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := p.printer.Print(ctx, path); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}

func (p *TaskProcessor) GetAirtableClient() *airtable.Client {
	return p.airtableClient
}

func (p *TaskProcessor) GetGitHubClient() *github.Client {
	return p.githubClient
}
