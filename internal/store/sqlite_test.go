package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	s, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDebitFailsClosed(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("alice", "hash", 3)
	require.NoError(t, err)

	err = s.DebitCredits(user.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	credits, err := s.GetUserCredits(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, credits)
}

func TestLedgerConservation(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("bob", "hash", 20)
	require.NoError(t, err)

	require.NoError(t, s.DebitCredits(user.ID, 5))
	require.NoError(t, s.DebitCredits(user.ID, 5))
	require.NoError(t, s.DebitCredits(user.ID, 5))
	require.NoError(t, s.CreditCredits(user.ID, 5)) // one refunded attempt

	credits, err := s.GetUserCredits(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20-3*5+5, credits)
}

// Two browser tabs debiting the same balance must not both pass a stale
// read: the guard lives inside the UPDATE.
func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_busy_timeout=5000"
	s, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer s.Close()

	user, err := s.CreateUser("carol", "hash", 20)
	require.NoError(t, err)

	const attempts = 10
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.DebitCredits(user.ID, 5)
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrInsufficientCredits):
			insufficient++
		}
	}
	assert.Equal(t, 4, ok)
	assert.Equal(t, attempts-4, insufficient)

	credits, err := s.GetUserCredits(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, credits)
}

func TestConversationSeqMonotonic(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("dave", "hash", 20)
	require.NoError(t, err)
	project, err := s.CreateProject(user.ID, "shop", "a shop")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := s.AppendConversation(project.ID, "assistant", fmt.Sprintf("entry %d", i))
		require.NoError(t, err)
	}

	entries, err := s.GetConversationByProjectID(project.ID)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, entry := range entries {
		assert.Equal(t, int64(i+1), entry.Seq)
		assert.Equal(t, fmt.Sprintf("entry %d", i), entry.Content)
	}
}

func TestConversationSeqIsPerProject(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("erin", "hash", 20)
	require.NoError(t, err)
	projectA, err := s.CreateProject(user.ID, "a", "site a")
	require.NoError(t, err)
	projectB, err := s.CreateProject(user.ID, "b", "site b")
	require.NoError(t, err)

	a1, err := s.AppendConversation(projectA.ID, "user", "site a")
	require.NoError(t, err)
	b1, err := s.AppendConversation(projectB.ID, "user", "site b")
	require.NoError(t, err)

	assert.Equal(t, int64(1), a1.Seq)
	assert.Equal(t, int64(1), b1.Seq)
}

func TestCommitVersionAdvancesPointerAtomically(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("frank", "hash", 20)
	require.NoError(t, err)
	project, err := s.CreateProject(user.ID, "shop", "a shop")
	require.NoError(t, err)

	v1, err := s.CommitVersion(project.ID, "<html>v1</html>", "Initial version")
	require.NoError(t, err)
	v2, err := s.CommitVersion(project.ID, "<html>v2</html>", "Changes made based on user request")
	require.NoError(t, err)

	assert.Equal(t, int64(1), v1.Seq)
	assert.Equal(t, int64(2), v2.Seq)

	got, err := s.GetProjectByID(project.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, got.CurrentVersionIndex)
	require.NotNil(t, got.CurrentCode)
	assert.Equal(t, "<html>v2</html>", *got.CurrentCode)
	assert.Equal(t, StatusReady, got.Status)

	versions, err := s.GetVersionsByProjectID(project.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, v1.ID, versions[0].ID)
	assert.Equal(t, v2.ID, versions[1].ID)
}

func TestCommitVersionUnknownProject(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CommitVersion("no-such-project", "<html></html>", "Initial version")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetVersionScopedToProject(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("grace", "hash", 20)
	require.NoError(t, err)
	projectA, err := s.CreateProject(user.ID, "a", "site a")
	require.NoError(t, err)
	projectB, err := s.CreateProject(user.ID, "b", "site b")
	require.NoError(t, err)

	va, err := s.CommitVersion(projectA.ID, "<html>a</html>", "Initial version")
	require.NoError(t, err)

	found, err := s.GetVersion(projectA.ID, va.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, va.ID, found.ID)

	// Same version id through the wrong project: invisible.
	missing, err := s.GetVersion(projectB.ID, va.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetProjectByIDScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	owner, err := s.CreateUser("heidi", "hash", 20)
	require.NoError(t, err)
	other, err := s.CreateUser("ivan", "hash", 20)
	require.NoError(t, err)
	project, err := s.CreateProject(owner.ID, "shop", "a shop")
	require.NoError(t, err)

	got, err := s.GetProjectByID(project.ID, other.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
