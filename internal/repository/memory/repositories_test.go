package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/domain"
)

type fixture struct {
	users    *UserRepository
	docs     *DocumentRepository
	versions *VersionRepository
	shares   *ShareRepository
	quotas   *StorageQuotaRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := New(1000)
	require.NoError(t, err)

	return &fixture{
		users:    NewUserRepository(db),
		docs:     NewDocumentRepository(db),
		versions: NewVersionRepository(db),
		shares:   NewShareRepository(db),
		quotas:   NewStorageQuotaRepository(db),
	}
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()

	u := &domain.User{Email: email, FirstName: "Test", LastName: "User"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) document(t *testing.T, owner int64, slug string, size int64, public bool) *domain.Document {
	t.Helper()

	doc := &domain.Document{
		Slug:     slug,
		Title:    slug,
		FileKey:  slug + "/v1",
		FileSize: size,
		IsPublic: public,
		OwnerID:  owner,
	}
	first := &domain.Version{FileKey: doc.FileKey, FileSize: size, CreatedByID: &owner}
	require.NoError(t, f.docs.Create(context.Background(), doc, first))
	return doc
}

func TestUserRepository_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, " John@Example.com ")
	assert.Equal(t, "john@example.com", u.Email)
	assert.NotZero(t, u.ID)

	err := f.users.Create(ctx, &domain.User{Email: "JOHN@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := f.users.GetByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = f.users.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentRepository_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")

	doc := f.document(t, owner.ID, "report", 100, false)
	assert.Equal(t, 1, doc.CurrentVersion)
	assert.Equal(t, 1, doc.VersionCount)
	assert.Equal(t, []string{}, doc.Tags)

	exists, err := f.docs.SlugExists(ctx, "report")
	require.NoError(t, err)
	assert.True(t, exists)

	err = f.docs.Create(ctx, &domain.Document{Slug: "report", OwnerID: owner.ID}, &domain.Version{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, err := f.docs.GetBySlug(ctx, "report")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, stored.Owner.ID)
	assert.Equal(t, "owner@example.com", stored.Owner.Email)
}

func TestVersionRepository_Add(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	doc := f.document(t, owner.ID, "report", 100, false)

	v2 := &domain.Version{DocumentID: doc.ID, FileKey: "report/v2", FileSize: 250, Comment: "second"}
	require.NoError(t, f.versions.Add(ctx, v2, "application/pdf"))
	assert.Equal(t, 2, v2.VersionNumber)

	stored, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentVersion)
	assert.Equal(t, 2, stored.VersionCount)
	assert.Equal(t, int64(250), stored.FileSize)
	assert.Equal(t, "application/pdf", stored.FileType)

	versions, err := f.versions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)

	err = f.versions.Add(ctx, &domain.Version{DocumentID: 999}, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShareRepository_Upsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	peer := f.user(t, "peer@example.com")
	doc := f.document(t, owner.ID, "report", 100, false)

	first := &domain.Share{DocumentID: doc.ID, SharedWithID: peer.ID, Permission: domain.PermissionView}
	require.NoError(t, f.shares.Upsert(ctx, first))

	second := &domain.Share{DocumentID: doc.ID, SharedWithID: peer.ID, Permission: domain.PermissionEdit}
	require.NoError(t, f.shares.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	share, err := f.shares.GetForUser(ctx, doc.ID, peer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionEdit, share.Permission)
	assert.Equal(t, "peer@example.com", share.SharedWith.Email)

	stored, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ShareCount)

	require.NoError(t, f.shares.Delete(ctx, share.ID))
	_, err = f.shares.GetByID(ctx, share.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentRepository_Lists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	peer := f.user(t, "peer@example.com")

	private := f.document(t, owner.ID, "private", 10, false)
	shared := f.document(t, owner.ID, "shared", 20, false)
	public := f.document(t, owner.ID, "public", 30, true)

	require.NoError(t, f.shares.Upsert(ctx, &domain.Share{
		DocumentID: shared.ID, SharedWithID: peer.ID, Permission: domain.PermissionView,
	}))
	require.NoError(t, f.docs.SetStarred(ctx, peer.ID, public.ID, true))

	slugs := func(docs []domain.Document) []string {
		out := make([]string, 0, len(docs))
		for _, d := range docs {
			out = append(out, d.Slug)
		}
		return out
	}
	byTitle := domain.ListOptions{Ordering: "title"}

	visible, err := f.docs.ListVisible(ctx, peer.ID, byTitle)
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "shared"}, slugs(visible))

	owned, err := f.docs.ListOwned(ctx, owner.ID, byTitle)
	require.NoError(t, err)
	assert.Equal(t, []string{"private", "public", "shared"}, slugs(owned))

	sharedWith, err := f.docs.ListSharedWith(ctx, peer.ID, byTitle)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, slugs(sharedWith))

	starred, err := f.docs.ListStarred(ctx, peer.ID, byTitle)
	require.NoError(t, err)
	assert.Equal(t, []string{"public"}, slugs(starred))

	bySize, err := f.docs.ListOwned(ctx, owner.ID, domain.ListOptions{Ordering: "-file_size"})
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "shared", "private"}, slugs(bySize))

	found, err := f.docs.ListVisible(ctx, owner.ID, domain.ListOptions{Search: "PRIV"})
	require.NoError(t, err)
	assert.Equal(t, []string{private.Slug}, slugs(found))
}

func TestDocumentRepository_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	doc := f.document(t, owner.ID, "report", 100, false)

	require.NoError(t, f.versions.Add(ctx, &domain.Version{DocumentID: doc.ID, FileKey: "report/v2"}, ""))
	require.NoError(t, f.docs.SetStarred(ctx, owner.ID, doc.ID, true))

	keys, err := f.docs.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"report/v1", "report/v2"}, keys)

	versions, err := f.versions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	starred, err := f.docs.StarredIDs(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, starred)

	_, err = f.docs.Delete(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorageQuotaRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	other := f.user(t, "other@example.com")

	quota, err := f.quotas.GetQuota(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), quota.TotalBytesLimit)
	assert.Zero(t, quota.UsedBytes)

	f.document(t, owner.ID, "a", 100, false)
	f.document(t, owner.ID, "b", 250, false)
	f.document(t, other.ID, "c", 500, false)

	used, err := f.quotas.CalculateAndUpdateUsedSpace(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(350), used)

	quota, err = f.quotas.GetQuota(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(350), quota.UsedBytes)
}
