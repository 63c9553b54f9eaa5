package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/store"
)

type stubRenderer struct {
	out []byte
	err error
}

func (r *stubRenderer) Render(_ context.Context, _ string) ([]byte, error) {
	return r.out, r.err
}

func (r *stubRenderer) Close() error { return nil }

func newWorkerEnv(t *testing.T, renderer *stubRenderer) (*PDFWorker, *testEnv, store.FileStore) {
	t.Helper()
	env := newTestEnv(t)
	files, err := store.NewDiskFileStore(t.TempDir(), "/files/pdfs")
	require.NoError(t, err)
	worker := NewPDFWorker(env.jobs, env.audits, env.templates, renderer, files, zap.NewNop())
	return worker, env, files
}

func completeOneAudit(t *testing.T, env *testEnv) *domain.AuditResponse {
	t.Helper()
	ctx := context.Background()
	templateID := env.createTemplate(t, domain.FrequencyMonthly)
	draft, err := env.svc.GetOrCreateDraft(ctx, testOrg, templateID, "", "Jane")
	require.NoError(t, err)
	completed, err := env.svc.CompleteAudit(ctx, testOrg, draft.ResponseID, draft.Items, "")
	require.NoError(t, err)
	return completed
}

func TestPDFWorkerPatchesResponseOnSuccess(t *testing.T) {
	worker, env, files := newWorkerEnv(t, &stubRenderer{out: []byte("%PDF-1.4 fake")})
	ctx := context.Background()

	completed := completeOneAudit(t, env)
	worker.ProcessPending(ctx)

	job, err := env.jobs.GetJobByResponse(ctx, testOrg, completed.ResponseID)
	require.NoError(t, err)
	require.Equal(t, domain.PDFJobSucceeded, job.Status)
	require.Equal(t, 1, job.Attempts)

	patched, err := env.audits.GetResponse(ctx, testOrg, completed.ResponseID)
	require.NoError(t, err)
	require.NotEmpty(t, patched.PDFFileID)
	require.NotEmpty(t, patched.PDFURL)
	require.NotNil(t, patched.PDFGeneratedAt)

	data, err := files.Open(patched.PDFFileID)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4 fake"), data)
}

func TestPDFWorkerMarksFailedAndLeavesResponseUntouched(t *testing.T) {
	worker, env, _ := newWorkerEnv(t, &stubRenderer{err: errors.New("browser launch failed")})
	ctx := context.Background()

	completed := completeOneAudit(t, env)
	worker.ProcessPending(ctx)

	job, err := env.jobs.GetJobByResponse(ctx, testOrg, completed.ResponseID)
	require.NoError(t, err)
	require.Equal(t, domain.PDFJobFailed, job.Status)
	require.Contains(t, job.LastError, "browser launch failed")

	// The completion itself is never rolled back and carries no artifacts.
	untouched, err := env.audits.GetResponse(ctx, testOrg, completed.ResponseID)
	require.NoError(t, err)
	require.Equal(t, domain.ResponseCompleted, untouched.Status)
	require.Empty(t, untouched.PDFFileID)
	require.Nil(t, untouched.PDFGeneratedAt)
}

func TestPDFWorkerNoRetryAfterFailure(t *testing.T) {
	worker, env, _ := newWorkerEnv(t, &stubRenderer{err: errors.New("render error")})
	ctx := context.Background()

	completed := completeOneAudit(t, env)
	worker.ProcessPending(ctx)
	worker.ProcessPending(ctx)

	job, err := env.jobs.GetJobByResponse(ctx, testOrg, completed.ResponseID)
	require.NoError(t, err)
	require.Equal(t, domain.PDFJobFailed, job.Status)
	require.Equal(t, 1, job.Attempts)
}
