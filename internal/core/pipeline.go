package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"pagecraft.ai/pagecraft/internal/store"
)

// GenerationCost is the fixed credit price of one pipeline run, whether it is
// an initial generation or a revision.
const GenerationCost = 5

const maxProjectNameLen = 50

type runKind int

const (
	runInitial runKind = iota
	runRevision
)

// PipelineService orchestrates a pipeline run: debit, transcript, the two
// generator calls, and a commit-or-refund settlement. Inner stages never
// touch the ledger; the refund for a debited run is issued exactly once, in
// runAndSettle.
type PipelineService struct {
	dbStore   *store.SQLiteStore
	generator Generator
	locks     *projectLocks
	timeout   time.Duration

	// spawn dispatches the background half of an initial generation.
	// Tests replace it to run inline.
	spawn func(func())
}

func NewPipelineService(db *store.SQLiteStore, generator Generator, timeout time.Duration) *PipelineService {
	return &PipelineService{
		dbStore:   db,
		generator: generator,
		locks:     newProjectLocks(),
		timeout:   timeout,
		spawn:     func(fn func()) { go fn() },
	}
}

func deriveProjectName(initialPrompt string) string {
	runes := []rune(initialPrompt)
	if len(runes) > maxProjectNameLen {
		return string(runes[:maxProjectNameLen]) + "..."
	}
	return initialPrompt
}

// CreateProject admits and records a new project, then kicks off the initial
// generation in the background. The caller gets the project id immediately
// and observes progress through the project's status field.
func (s *PipelineService) CreateProject(userID int64, initialPrompt string) (*store.Project, error) {
	prompt := strings.TrimSpace(initialPrompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	credits, err := s.dbStore.GetUserCredits(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check balance: %w", err)
	}
	if credits < GenerationCost {
		return nil, store.ErrInsufficientCredits
	}

	if err := s.dbStore.DebitCredits(userID, GenerationCost); err != nil {
		return nil, err
	}

	// Debited. Every failure below must refund before returning.
	project, err := s.dbStore.CreateProject(userID, deriveProjectName(prompt), prompt)
	if err != nil {
		s.refund(userID)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if err := s.dbStore.IncrementTotalCreations(userID); err != nil {
		// Vanity counter only, not worth failing the run.
		log.Printf("Failed to increment total creations for user %d: %v", userID, err)
	}

	if _, err := s.dbStore.AppendConversation(project.ID, "user", prompt); err != nil {
		s.refund(userID)
		s.markFailed(project.ID)
		return nil, fmt.Errorf("failed to record prompt: %w", err)
	}

	s.spawn(func() {
		s.runAndSettle(context.Background(), userID, project.ID, prompt, runInitial)
	})

	return project, nil
}

// MakeRevision runs the full pipeline synchronously for an existing project.
func (s *PipelineService) MakeRevision(ctx context.Context, userID int64, projectID, message string) error {
	request := strings.TrimSpace(message)
	if request == "" {
		return ErrEmptyPrompt
	}

	credits, err := s.dbStore.GetUserCredits(userID)
	if err != nil {
		return fmt.Errorf("failed to check balance: %w", err)
	}
	if credits < GenerationCost {
		return store.ErrInsufficientCredits
	}

	project, err := s.dbStore.GetProjectByID(projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return ErrProjectNotFound
	}

	if _, err := s.dbStore.AppendConversation(project.ID, "user", request); err != nil {
		return fmt.Errorf("failed to record revision request: %w", err)
	}

	if err := s.dbStore.DebitCredits(userID, GenerationCost); err != nil {
		return err
	}

	return s.runAndSettle(ctx, userID, project.ID, request, runRevision)
}

// runAndSettle is the single refund boundary. Whatever goes wrong inside the
// run, the debited amount is credited back here and nowhere else.
func (s *PipelineService) runAndSettle(ctx context.Context, userID int64, projectID, request string, kind runKind) error {
	err := s.run(ctx, userID, projectID, request, kind)
	if err != nil {
		log.Printf("Generation run failed for project %s: %v", projectID, err)
		s.refund(userID)
		s.markFailed(projectID)
	}
	return err
}

// run executes one generation attempt under the project's lock:
// enhancement call, progress transcript, code-generation call, sanitize,
// then a transactional commit that advances the current pointer.
func (s *PipelineService) run(ctx context.Context, userID int64, projectID, request string, kind runKind) error {
	unlock := s.locks.lock(projectID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.dbStore.SetProjectStatus(projectID, store.StatusGenerating); err != nil {
		return fmt.Errorf("failed to mark project generating: %w", err)
	}

	enhanceInstruction := initialEnhanceInstruction
	enhancePrompt := request
	if kind == runRevision {
		enhanceInstruction = revisionEnhanceInstruction
		enhancePrompt = "User's request: " + request
	}

	enhanced, err := s.generator.Complete(ctx, enhanceInstruction, enhancePrompt)
	if err != nil {
		return fmt.Errorf("prompt enhancement failed: %w", err)
	}

	if err := s.appendProgressEntries(projectID, kind, enhanced); err != nil {
		return err
	}

	codeInstruction := initialCodeInstruction
	codePrompt := enhanced
	description := "Initial version"
	if kind == runRevision {
		// The whole current document rides along as context for the change.
		project, perr := s.dbStore.GetProjectByID(projectID, userID)
		if perr != nil {
			return fmt.Errorf("failed to reload project: %w", perr)
		}
		if project == nil {
			return ErrProjectNotFound
		}
		currentCode := ""
		if project.CurrentCode != nil {
			currentCode = *project.CurrentCode
		}
		codeInstruction = revisionCodeInstruction
		codePrompt = fmt.Sprintf("Here is the current website code: %q\nMake the following changes based on this enhanced request: %q", currentCode, enhanced)
		description = "Changes made based on user request"
	}

	rawCode, err := s.generator.Complete(ctx, codeInstruction, codePrompt)
	if err != nil {
		return fmt.Errorf("code generation failed: %w", err)
	}

	code := sanitizeCode(rawCode)
	if code == "" {
		if _, aerr := s.dbStore.AppendConversation(projectID, "assistant", "Unable to generate code, please try again"); aerr != nil {
			log.Printf("Failed to record generation failure for project %s: %v", projectID, aerr)
		}
		return ErrGenerationEmpty
	}

	version, err := s.dbStore.CommitVersion(projectID, code, description)
	if err != nil {
		return fmt.Errorf("failed to commit version: %w", err)
	}

	completion := "I have created your website based on the enhanced prompt. This is the initial version of your website. You can view and edit the code in the project dashboard. If you want to make changes, just let me know!"
	if kind == runRevision {
		completion = "I have made the changes to the site, you can now preview it"
	}
	if _, err := s.dbStore.AppendConversation(projectID, "assistant", completion); err != nil {
		// Version is committed and the pointer advanced; a missing transcript
		// line is not worth a refund.
		log.Printf("Failed to record completion for project %s version %s: %v", projectID, version.ID, err)
	}

	return nil
}

// appendProgressEntries surfaces the enhanced prompt and a progress notice to
// the transcript. Cosmetic for the reader; state lives in the status field.
func (s *PipelineService) appendProgressEntries(projectID string, kind runKind, enhanced string) error {
	enhancedNotice := "I have enhanced your prompt to make it more detailed and comprehensive for better website creation. Here is the enhanced prompt:\n\n" + enhanced
	progressNotice := "Generating your website now... This may take a few minutes. You will be notified once it's ready."
	if kind == runRevision {
		enhancedNotice = "I have enhanced your request to make it more specific for the web developer: " + enhanced
		progressNotice = "Making the following changes to the website ..."
	}

	if _, err := s.dbStore.AppendConversation(projectID, "assistant", enhancedNotice); err != nil {
		return fmt.Errorf("failed to record enhanced prompt: %w", err)
	}
	if _, err := s.dbStore.AppendConversation(projectID, "assistant", progressNotice); err != nil {
		return fmt.Errorf("failed to record progress notice: %w", err)
	}
	return nil
}

func (s *PipelineService) refund(userID int64) {
	if err := s.dbStore.CreditCredits(userID, GenerationCost); err != nil {
		log.Printf("CRITICAL: failed to refund %d credits to user %d: %v", GenerationCost, userID, err)
	}
}

func (s *PipelineService) markFailed(projectID string) {
	if err := s.dbStore.SetProjectStatus(projectID, store.StatusFailed); err != nil {
		log.Printf("Failed to mark project %s failed: %v", projectID, err)
	}
}
