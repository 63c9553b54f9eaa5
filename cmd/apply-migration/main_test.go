package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

func TestMigrationStatementsStripLeadingComments(t *testing.T) {
	sql := `-- header comment
-- second line
CREATE TABLE a (id INT);

-- standalone comment block;

-- comment before statement
CREATE INDEX idx_a ON a (id);
`
	statements := migrationStatements(sql)
	require.Len(t, statements, 2)
	require.True(t, strings.HasPrefix(statements[0], "CREATE TABLE a"))
	require.True(t, strings.HasPrefix(statements[1], "CREATE INDEX idx_a"))
}

// The initial schema leads several statements with comment lines; none of
// them may be dropped by the splitter or the Postgres path loses tables and
// the one-open-draft unique index.
func TestMigrationStatementsCoverInitSchema(t *testing.T) {
	raw, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)

	statements := migrationStatements(string(raw))
	require.NotEmpty(t, statements)
	for _, stmt := range statements {
		require.False(t, strings.HasPrefix(stmt, "--"), "comment chunk leaked: %q", stmt)
	}

	joined := strings.Join(statements, "\n")
	require.Contains(t, joined, "CREATE EXTENSION IF NOT EXISTS pgcrypto")
	require.Contains(t, joined, "CREATE TABLE IF NOT EXISTS audit_responses")
	require.Contains(t, joined, "CREATE UNIQUE INDEX IF NOT EXISTS idx_audit_responses_open_draft")
	require.Contains(t, joined, "CREATE TABLE IF NOT EXISTS action_plans")
	require.Contains(t, joined, "CREATE TABLE IF NOT EXISTS pdf_jobs")

	// Column defaults must round-trip through the domain's validators.
	require.Contains(t, joined, "DEFAULT '"+domain.PriorityMedium+"'")
	require.Contains(t, joined, "DEFAULT '"+domain.PlanPending+"'")
	require.Contains(t, joined, "DEFAULT '"+domain.SeverityLow+"'")
}
