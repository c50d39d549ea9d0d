package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pagecraft.ai/pagecraft/internal/store"
)

func TestRollbackRepointsWithoutForking(t *testing.T) {
	db := newTestStore(t)
	user := createTestUser(t, db, "alice", 20)
	project, err := db.CreateProject(user.ID, "blog", "a blog")
	require.NoError(t, err)

	v1, err := db.CommitVersion(project.ID, "<html>v1</html>", "Initial version")
	require.NoError(t, err)
	v2, err := db.CommitVersion(project.ID, "<html>v2</html>", "Changes made based on user request")
	require.NoError(t, err)

	svc := NewProjectService(db)
	require.NoError(t, svc.Rollback(project.ID, user.ID, v1.ID))

	got, err := db.GetProjectByID(project.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, got.CurrentVersionIndex)
	require.NotNil(t, got.CurrentCode)
	assert.Equal(t, v1.Code, *got.CurrentCode)

	// History untouched, still in append order.
	versions, err := db.GetVersionsByProjectID(project.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, v1.ID, versions[0].ID)
	assert.Equal(t, v2.ID, versions[1].ID)

	entries, err := db.GetConversationByProjectID(project.ID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "Rolled back to selected version", entries[len(entries)-1].Content)
	assert.Equal(t, "assistant", entries[len(entries)-1].Role)
}

func TestRollbackToCurrentVersionIsNoOp(t *testing.T) {
	db := newTestStore(t)
	user := createTestUser(t, db, "bob", 20)
	project, err := db.CreateProject(user.ID, "blog", "a blog")
	require.NoError(t, err)
	v1, err := db.CommitVersion(project.ID, "<html>v1</html>", "Initial version")
	require.NoError(t, err)

	svc := NewProjectService(db)
	require.NoError(t, svc.Rollback(project.ID, user.ID, v1.ID))

	got, err := db.GetProjectByID(project.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, got.CurrentVersionIndex)
	assert.Equal(t, v1.Code, *got.CurrentCode)
}

func TestRollbackVersionFromAnotherProject(t *testing.T) {
	db := newTestStore(t)
	user := createTestUser(t, db, "carol", 20)
	projectA, err := db.CreateProject(user.ID, "a", "site a")
	require.NoError(t, err)
	projectB, err := db.CreateProject(user.ID, "b", "site b")
	require.NoError(t, err)

	va, err := db.CommitVersion(projectA.ID, "<html>a</html>", "Initial version")
	require.NoError(t, err)
	vb, err := db.CommitVersion(projectB.ID, "<html>b</html>", "Initial version")
	require.NoError(t, err)

	svc := NewProjectService(db)
	err = svc.Rollback(projectA.ID, user.ID, vb.ID)
	assert.ErrorIs(t, err, ErrVersionNotFound)

	got, err := db.GetProjectByID(projectA.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, va.ID, got.CurrentVersionIndex)
	assert.Equal(t, va.Code, *got.CurrentCode)
}

func TestRollbackOwnershipIsolation(t *testing.T) {
	db := newTestStore(t)
	owner := createTestUser(t, db, "dave", 20)
	intruder := createTestUser(t, db, "erin", 20)
	project, err := db.CreateProject(owner.ID, "shop", "a shop")
	require.NoError(t, err)
	v1, err := db.CommitVersion(project.ID, "<html>v1</html>", "Initial version")
	require.NoError(t, err)

	svc := NewProjectService(db)
	err = svc.Rollback(project.ID, intruder.ID, v1.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSaveCodeDetachesVersionPointer(t *testing.T) {
	db := newTestStore(t)
	user := createTestUser(t, db, "frank", 20)
	project, err := db.CreateProject(user.ID, "shop", "a shop")
	require.NoError(t, err)
	_, err = db.CommitVersion(project.ID, "<html>v1</html>", "Initial version")
	require.NoError(t, err)

	svc := NewProjectService(db)
	require.NoError(t, svc.SaveCode(project.ID, user.ID, "<html>hand-edited</html>"))

	got, err := db.GetProjectByID(project.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentCode)
	assert.Equal(t, "<html>hand-edited</html>", *got.CurrentCode)
	assert.Equal(t, "", got.CurrentVersionIndex)

	// The saved code itself is not versioned.
	versions, err := db.GetVersionsByProjectID(project.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestSaveCodeOwnershipIsolation(t *testing.T) {
	db := newTestStore(t)
	owner := createTestUser(t, db, "grace", 20)
	intruder := createTestUser(t, db, "heidi", 20)
	project, err := db.CreateProject(owner.ID, "shop", "a shop")
	require.NoError(t, err)

	svc := NewProjectService(db)
	err = svc.SaveCode(project.ID, intruder.ID, "<html>defaced</html>")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteProjectCascades(t *testing.T) {
	db := newTestStore(t)
	user := createTestUser(t, db, "ivan", 20)
	project, err := db.CreateProject(user.ID, "shop", "a shop")
	require.NoError(t, err)
	_, err = db.CommitVersion(project.ID, "<html>v1</html>", "Initial version")
	require.NoError(t, err)
	_, err = db.AppendConversation(project.ID, "user", "a shop")
	require.NoError(t, err)

	svc := NewProjectService(db)
	require.NoError(t, svc.DeleteProject(project.ID, user.ID))

	got, err := db.GetProjectByID(project.ID, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	versions, err := db.GetVersionsByProjectID(project.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	entries, err := db.GetConversationByProjectID(project.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteProjectOwnershipIsolation(t *testing.T) {
	db := newTestStore(t)
	owner := createTestUser(t, db, "judy", 20)
	intruder := createTestUser(t, db, "kevin", 20)
	project, err := db.CreateProject(owner.ID, "shop", "a shop")
	require.NoError(t, err)

	svc := NewProjectService(db)
	err = svc.DeleteProject(project.ID, intruder.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := db.GetProjectByID(project.ID, owner.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestPublishedProjectCodeVisibility(t *testing.T) {
	db := newTestStore(t)
	user := createTestUser(t, db, "mallory", 20)
	project, err := db.CreateProject(user.ID, "shop", "a shop")
	require.NoError(t, err)

	svc := NewProjectService(db)

	// Unpublished: invisible.
	_, err = svc.GetPublishedProjectCode(project.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Published but no generated code yet: still invisible.
	require.NoError(t, svc.TogglePublish(project.ID, user.ID))
	_, err = svc.GetPublishedProjectCode(project.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = db.CommitVersion(project.ID, "<html>live</html>", "Initial version")
	require.NoError(t, err)

	code, err := svc.GetPublishedProjectCode(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "<html>live</html>", code)

	// Toggled back off: invisible again.
	require.NoError(t, svc.TogglePublish(project.ID, user.ID))
	_, err = svc.GetPublishedProjectCode(project.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
