package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

const (
	testOrg  = "11111111-1111-1111-1111-111111111111"
	otherOrg = "22222222-2222-2222-2222-222222222222"
)

type recordingNotifier struct {
	events []CompletionEvent
}

func (n *recordingNotifier) AuditCompleted(event CompletionEvent) {
	n.events = append(n.events, event)
}

type testEnv struct {
	svc       *AuditService
	templates *repository.MemoryTemplatesRepo
	audits    *repository.MemoryAuditRepo
	residents *repository.MemoryResidentsRepo
	jobs      *repository.MemoryPDFJobsRepo
	notifier  *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		templates: repository.NewMemoryTemplatesRepo(),
		audits:    repository.NewMemoryAuditRepo(),
		residents: repository.NewMemoryResidentsRepo(),
		jobs:      repository.NewMemoryPDFJobsRepo(),
		notifier:  &recordingNotifier{},
	}
	env.svc = NewAuditService(
		env.templates, env.audits, env.audits, env.residents, env.jobs,
		env.notifier, true, zap.NewNop(),
	)
	return env
}

func (e *testEnv) createTemplate(t *testing.T, frequency string) string {
	t.Helper()
	id, err := e.templates.CreateTemplate(context.Background(), testOrg, &domain.AuditTemplate{
		Name:      "Fire Safety Audit",
		Frequency: frequency,
		Items: []domain.TemplateItem{
			{ItemID: "i1", Label: "Extinguishers serviced"},
			{ItemID: "i2", Label: "Exits clear"},
		},
	})
	require.NoError(t, err)
	return id
}

func TestGetOrCreateDraftIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	first, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)
	require.Equal(t, domain.ResponseDraft, first.Status)
	require.Len(t, first.Items, 2)
	require.Equal(t, "Extinguishers serviced", first.Items[0].ItemName)
	require.Equal(t, domain.ItemUnchecked, first.Items[0].Status)

	second, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)
	require.Equal(t, first.ResponseID, second.ResponseID)
}

func TestGetOrCreateDraftUnknownTemplate(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.GetOrCreateDraft(context.Background(), testOrg, "missing", "", "Jane")
	require.Error(t, err)
	require.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestGetOrCreateDraftWrongOrganization(t *testing.T) {
	env := newTestEnv(t)
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	// The template belongs to testOrg; another organization must not reach it.
	_, err := env.svc.GetOrCreateDraft(context.Background(), otherOrg, templateID, "", "Jane")
	require.Error(t, err)
}

func TestUpdateResponseAutosaveAndRejectAfterCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)

	items := []domain.ResponseItem{
		{ItemID: "i1", ItemName: "Extinguishers serviced", Status: domain.ItemCompliant},
		{ItemID: "i2", ItemName: "Exits clear", Status: domain.ItemNonCompliant, Notes: "boxes in corridor"},
	}
	err = env.svc.UpdateResponse(ctx, testOrg, draft.ResponseID, items, "", domain.ResponseInProgress)
	require.NoError(t, err)

	saved, err := env.svc.GetResponse(ctx, testOrg, draft.ResponseID)
	require.NoError(t, err)
	require.Equal(t, domain.ResponseInProgress, saved.Status)
	require.Equal(t, "boxes in corridor", saved.Items[1].Notes)

	_, err = env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, items, "done")
	require.NoError(t, err)

	err = env.svc.UpdateResponse(ctx, testOrg, draft.ResponseID, items, "", domain.ResponseInProgress)
	require.Error(t, err)
	require.Contains(t, err.Error(), "completed")
}

func TestCompleteAuditNextDuePerFrequency(t *testing.T) {
	intervals := map[string]time.Duration{
		domain.FrequencyMonthly:   30 * 24 * time.Hour,
		domain.FrequencyQuarterly: 90 * 24 * time.Hour,
		domain.Frequency3Months:   90 * 24 * time.Hour,
		domain.Frequency6Months:   180 * 24 * time.Hour,
		domain.FrequencyYearly:    365 * 24 * time.Hour,
	}

	for frequency, want := range intervals {
		t.Run(frequency, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			templateID := env.createTemplate(t, frequency)

			draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
			require.NoError(t, err)

			completed, err := env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
			require.NoError(t, err)
			require.NotNil(t, completed.CompletedAt)
			require.NotNil(t, completed.NextAuditDue)
			require.Equal(t, want, completed.NextAuditDue.Sub(*completed.CompletedAt))
		})
	}
}

func TestCompleteAuditSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)
	completed, err := env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
	require.NoError(t, err)

	job, err := env.jobs.GetJobByResponse(ctx, testOrg, completed.ResponseID)
	require.NoError(t, err)
	require.Equal(t, domain.PDFJobPending, job.Status)

	require.Len(t, env.notifier.events, 1)
	require.Equal(t, completed.ResponseID, env.notifier.events[0].ResponseID)
	require.Equal(t, "Fire Safety Audit", env.notifier.events[0].TemplateName)
}

func TestCompleteAuditTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)
	_, err = env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
	require.NoError(t, err)

	_, err = env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
	require.Error(t, err)
}

func TestCreateRevisionSupersedesOriginal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)
	original, err := env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "first pass")
	require.NoError(t, err)

	corrected := []domain.ResponseItem{
		{ItemID: "i1", ItemName: "Extinguishers serviced", Status: domain.ItemCompliant},
		{ItemID: "i2", ItemName: "Exits clear", Status: domain.ItemCompliant},
	}
	revision, err := env.svc.CreateRevision(ctx, testOrg, original.ResponseID, corrected, "corrected", "Tom")
	require.NoError(t, err)
	require.NotEqual(t, original.ResponseID, revision.ResponseID)
	require.Equal(t, original.ResponseID, revision.Supersedes)
	require.Equal(t, domain.ResponseCompleted, revision.Status)

	// Original row is retrievable and unchanged.
	kept, err := env.svc.GetResponse(ctx, testOrg, original.ResponseID)
	require.NoError(t, err)
	require.Equal(t, "first pass", kept.OverallNotes)

	// Latest sees only the revision.
	latest, err := env.svc.LatestCompletion(ctx, testOrg, templateID, "")
	require.NoError(t, err)
	require.Equal(t, revision.ResponseID, latest.ResponseID)

	// The superseded original appears only in the archived listing.
	archived, err := env.svc.ArchivedCompletions(ctx, testOrg, templateID, "")
	require.NoError(t, err)
	require.Len(t, archived, 1)
	require.Equal(t, original.ResponseID, archived[0].ResponseID)

	history, err := env.svc.CompletionHistory(ctx, testOrg, templateID, "", 10)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestCreateRevisionRequiresCompletedOriginal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)

	_, err = env.svc.CreateRevision(ctx, testOrg, draft.ResponseID, draft.Items, "", "Tom")
	require.Error(t, err)
}

func TestLatestAndHistorySelection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	// Three completions, each through a fresh draft cycle.
	var ids []string
	for i := 0; i < 3; i++ {
		draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
		require.NoError(t, err)
		completed, err := env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
		require.NoError(t, err)
		ids = append(ids, completed.ResponseID)
		time.Sleep(time.Millisecond)
	}

	latest, err := env.svc.LatestCompletion(ctx, testOrg, templateID, "")
	require.NoError(t, err)
	require.Equal(t, ids[2], latest.ResponseID)

	history, err := env.svc.CompletionHistory(ctx, testOrg, templateID, "", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, ids[1], history[0].ResponseID)
	require.Equal(t, ids[0], history[1].ResponseID)

	capped, err := env.svc.CompletionHistory(ctx, testOrg, templateID, "", 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	require.Equal(t, ids[1], capped[0].ResponseID)
}

func TestAllLatestCompletionsFirstSeenWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	templateA := env.createTemplate(t, domain.FrequencyMonthly)
	templateB := env.createTemplate(t, domain.FrequencyYearly)

	for _, templateID := range []string{templateA, templateB} {
		for i := 0; i < 2; i++ {
			draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
			require.NoError(t, err)
			_, err = env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
			require.NoError(t, err)
			time.Sleep(time.Millisecond)
		}
	}

	latest, err := env.svc.AllLatestCompletions(ctx, testOrg)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	seen := map[string]bool{}
	for _, row := range latest {
		require.False(t, seen[row.TemplateID])
		seen[row.TemplateID] = true
	}
}

func TestDeleteResponseCascadesActionPlans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)
	completed, err := env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
	require.NoError(t, err)

	plan, err := env.svc.CreateActionPlan(ctx, testOrg, &domain.ActionPlan{
		ResponseID:  completed.ResponseID,
		Description: "service extinguishers",
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteResponse(ctx, testOrg, completed.ResponseID))

	_, err = env.audits.GetPlan(ctx, testOrg, plan.PlanID)
	require.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestTemplateDeleteRetainsCompletions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)
	completed, err := env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
	require.NoError(t, err)

	require.NoError(t, env.templates.DeleteTemplate(ctx, testOrg, templateID))

	kept, err := env.svc.GetResponse(ctx, testOrg, completed.ResponseID)
	require.NoError(t, err)
	require.Equal(t, completed.ResponseID, kept.ResponseID)
}

func TestActionPlanDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)

	plan, err := env.svc.CreateActionPlan(ctx, testOrg, &domain.ActionPlan{
		ResponseID:  draft.ResponseID,
		Description: "follow up",
	})
	require.NoError(t, err)
	require.Equal(t, domain.PriorityMedium, plan.Priority)
	require.Equal(t, domain.PlanPending, plan.Status)

	_, err = env.svc.CreateActionPlan(ctx, testOrg, &domain.ActionPlan{
		ResponseID:  draft.ResponseID,
		Description: "bad priority",
		Priority:    "urgent",
	})
	require.Error(t, err)

	updated, err := env.svc.UpdateActionPlan(ctx, testOrg, plan.PlanID, &domain.ActionPlan{
		Status:        domain.PlanCompleted,
		LatestComment: "done",
	})
	require.NoError(t, err)
	require.Equal(t, domain.PlanCompleted, updated.Status)
	require.Equal(t, "follow up", updated.Description)
}

func TestActionPlanWrongOrganizationRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)

	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)

	_, err = env.svc.CreateActionPlan(ctx, otherOrg, &domain.ActionPlan{
		ResponseID:  draft.ResponseID,
		Description: "cross-org",
	})
	require.Error(t, err)
}

func TestOwnershipCheckSemantics(t *testing.T) {
	env := newTestEnv(t)

	// Same org and unset record org both pass.
	require.NoError(t, env.svc.checkOwnership(testOrg, testOrg))
	require.NoError(t, env.svc.checkOwnership(testOrg, ""))

	// A record loaded outside the caller's scope yields the mismatch
	// sentinel, not a not-found.
	err := env.svc.checkOwnership(testOrg, otherOrg)
	require.True(t, errors.Is(err, repository.ErrOrganizationMismatch))
	require.False(t, errors.Is(err, repository.ErrNotFound))

	// Scoped repository lookups never produce the mismatch: a cross-org id
	// reads as missing.
	_, err = env.audits.GetResponse(context.Background(), otherOrg, "some-id")
	require.True(t, errors.Is(err, repository.ErrNotFound))
}
