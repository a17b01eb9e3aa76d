package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/domain"
	"dochub/internal/service"
)

func TestDocumentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("derives slug type and size", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		owner := env.register(t, "owner@example.com")

		doc := env.upload(t, owner.ID, "Meeting Notes", false, "hello world")
		assert.Equal(t, "meeting-notes", doc.Slug)
		assert.Equal(t, "txt", doc.FileType)
		assert.Equal(t, int64(11), doc.FileSize)
		assert.Equal(t, 1, doc.CurrentVersion)
		assert.Equal(t, 1, doc.VersionCount)
		assert.Equal(t, owner.ID, doc.Owner.ID)
		assert.Equal(t, []string{"work"}, doc.Tags)
		assert.Equal(t, "http://localhost:8000/api/documents/meeting-notes/download/", doc.File)
		assert.Equal(t, 1, env.storage.Len())
	})

	t.Run("slug collision gets suffix", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		owner := env.register(t, "owner@example.com")

		first := env.upload(t, owner.ID, "Report", false, "a")
		second := env.upload(t, owner.ID, "Report", false, "b")
		assert.Equal(t, "report", first.Slug)
		assert.True(t, strings.HasPrefix(second.Slug, "report-"))
		assert.Len(t, second.Slug, len("report-")+8)
	})

	t.Run("file is required", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		owner := env.register(t, "owner@example.com")

		_, err := env.documents.Create(ctx, owner.ID, domain.DocumentUpload{Title: "Empty"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = env.documents.Create(ctx, owner.ID, domain.DocumentUpload{FileName: "a.txt", Data: []byte("x")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		env := newTestEnv(t, 10)
		owner := env.register(t, "owner@example.com")

		_, err := env.documents.Create(ctx, owner.ID, domain.DocumentUpload{
			Title:    "Too big",
			FileName: "big.bin",
			Data:     []byte("more than ten bytes"),
		})
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
		assert.Equal(t, 0, env.storage.Len())
	})
}

func TestDocumentService_Visibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 1<<20)

	owner := env.register(t, "owner@example.com")
	viewer := env.register(t, "viewer@example.com")
	stranger := env.register(t, "stranger@example.com")

	private := env.upload(t, owner.ID, "Private Plan", false, "secret")
	public := env.upload(t, owner.ID, "Public Memo", true, "memo")

	_, err := env.documents.Share(ctx, owner.ID, private.Slug, service.ShareRequest{
		SharedWith: viewer.ID,
		Permission: domain.PermissionView,
	})
	require.NoError(t, err)

	t.Run("list visible", func(t *testing.T) {
		docs, err := env.documents.List(ctx, viewer.ID, domain.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		docs, err = env.documents.List(ctx, stranger.ID, domain.ListOptions{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, public.ID, docs[0].ID)
	})

	t.Run("collections", func(t *testing.T) {
		owned, err := env.documents.MyDocuments(ctx, owner.ID, domain.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, owned, 2)

		shared, err := env.documents.SharedWithMe(ctx, viewer.ID, domain.ListOptions{})
		require.NoError(t, err)
		require.Len(t, shared, 1)
		assert.Equal(t, private.ID, shared[0].ID)
	})

	t.Run("search and ordering", func(t *testing.T) {
		docs, err := env.documents.List(ctx, owner.ID, domain.ListOptions{Search: "memo"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, public.ID, docs[0].ID)

		docs, err = env.documents.List(ctx, owner.ID, domain.ListOptions{Ordering: "title"})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Private Plan", docs[0].Title)
		assert.Equal(t, "Public Memo", docs[1].Title)
	})

	t.Run("private document is hidden", func(t *testing.T) {
		_, err := env.documents.GetBySlug(ctx, stranger.ID, private.Slug)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.EqualError(t, err, "No Document matches the given query.")

		_, err = env.documents.GetByID(ctx, stranger.ID, private.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("shares visible to owner only", func(t *testing.T) {
		detail, err := env.documents.GetBySlug(ctx, owner.ID, private.Slug)
		require.NoError(t, err)
		assert.Len(t, detail.Shares, 1)
		assert.Equal(t, 1, detail.ShareCount)

		detail, err = env.documents.GetBySlug(ctx, viewer.ID, private.Slug)
		require.NoError(t, err)
		assert.Empty(t, detail.Shares)

		_, err = env.documents.ListShares(ctx, viewer.ID, private.Slug)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("view share cannot comment or edit", func(t *testing.T) {
		_, err := env.documents.AddComment(ctx, viewer.ID, service.CommentRequest{DocumentID: private.ID, Content: "hi"})
		assert.ErrorIs(t, err, domain.ErrForbidden)

		title := "Renamed"
		_, err = env.documents.Update(ctx, viewer.ID, private.Slug, domain.DocumentUpdate{Title: &title})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("public document accepts comments", func(t *testing.T) {
		comment, err := env.documents.AddComment(ctx, stranger.ID, service.CommentRequest{DocumentID: public.ID, Content: "nice"})
		require.NoError(t, err)
		assert.Equal(t, stranger.ID, comment.Author.ID)

		title := "Hijacked"
		_, err = env.documents.Update(ctx, stranger.ID, public.Slug, domain.DocumentUpdate{Title: &title})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDocumentService_Versions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 1<<20)

	owner := env.register(t, "owner@example.com")
	editor := env.register(t, "editor@example.com")
	doc := env.upload(t, owner.ID, "Handbook", false, "v1")

	_, err := env.documents.Share(ctx, owner.ID, doc.Slug, service.ShareRequest{
		SharedWith: editor.ID,
		Permission: domain.PermissionEdit,
	})
	require.NoError(t, err)

	version, err := env.documents.AddVersion(ctx, editor.ID, doc.Slug, domain.VersionUpload{
		FileName: "handbook.md",
		Data:     []byte("version two"),
		Comment:  "second draft",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, version.VersionNumber)
	assert.Equal(t, editor.ID, version.CreatedBy.ID)

	updated, err := env.documents.GetBySlug(ctx, owner.ID, doc.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentVersion)
	assert.Equal(t, 2, updated.VersionCount)
	assert.Equal(t, "md", updated.FileType)
	assert.Equal(t, int64(len("version two")), updated.FileSize)
	require.Len(t, updated.Versions, 2)
	assert.Equal(t, 2, updated.Versions[0].VersionNumber)

	file, err := env.documents.Download(ctx, owner.ID, doc.Slug, 0)
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	file.Close()
	assert.Equal(t, "version two", string(data))
	assert.Equal(t, "handbook.md", file.FileName)

	old, err := env.documents.Download(ctx, owner.ID, doc.Slug, 1)
	require.NoError(t, err)
	data, err = io.ReadAll(old)
	require.NoError(t, err)
	old.Close()
	assert.Equal(t, "v1", string(data))

	info, err := env.quota.GetQuotaInfo(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len("version two")), info.UsedSpace)

	// редактор не может удалить документ
	err = env.documents.Delete(ctx, editor.ID, doc.Slug)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDocumentService_Sharing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 1<<20)

	owner := env.register(t, "owner@example.com")
	other := env.register(t, "other@example.com")
	doc := env.upload(t, owner.ID, "Shared", false, "data")

	first, err := env.documents.Share(ctx, owner.ID, doc.Slug, service.ShareRequest{SharedWith: other.ID, Permission: domain.PermissionView})
	require.NoError(t, err)
	assert.Equal(t, other.ID, first.SharedWith.ID)

	second, err := env.documents.Share(ctx, owner.ID, doc.Slug, service.ShareRequest{SharedWith: other.ID, Permission: domain.PermissionComment})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.PermissionComment, second.Permission)

	shares, err := env.documents.ListShares(ctx, owner.ID, doc.Slug)
	require.NoError(t, err)
	assert.Len(t, shares, 1)

	t.Run("invalid requests", func(t *testing.T) {
		_, err := env.documents.Share(ctx, owner.ID, doc.Slug, service.ShareRequest{SharedWith: owner.ID, Permission: domain.PermissionView})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = env.documents.Share(ctx, owner.ID, doc.Slug, service.ShareRequest{SharedWith: 999, Permission: domain.PermissionView})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = env.documents.Share(ctx, owner.ID, doc.Slug, service.ShareRequest{SharedWith: other.ID, Permission: "admin"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = env.documents.Share(ctx, other.ID, doc.Slug, service.ShareRequest{SharedWith: owner.ID, Permission: domain.PermissionView})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("update and remove", func(t *testing.T) {
		_, err := env.documents.UpdateShare(ctx, other.ID, second.ID, domain.PermissionEdit)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		updated, err := env.documents.UpdateShare(ctx, owner.ID, second.ID, domain.PermissionEdit)
		require.NoError(t, err)
		assert.Equal(t, domain.PermissionEdit, updated.Permission)

		require.NoError(t, env.documents.RemoveShare(ctx, owner.ID, second.ID))

		_, err = env.documents.GetBySlug(ctx, other.ID, doc.Slug)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDocumentService_Comments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 1<<20)

	owner := env.register(t, "owner@example.com")
	author := env.register(t, "author@example.com")
	doc := env.upload(t, owner.ID, "Discussed", true, "data")

	first, err := env.documents.AddComment(ctx, author.ID, service.CommentRequest{DocumentID: doc.ID, Content: "first"})
	require.NoError(t, err)
	second, err := env.documents.AddComment(ctx, owner.ID, service.CommentRequest{DocumentID: doc.ID, Content: "second"})
	require.NoError(t, err)

	comments, err := env.documents.ListComments(ctx, owner.ID, doc.Slug)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)

	_, err = env.documents.AddComment(ctx, author.ID, service.CommentRequest{DocumentID: doc.ID, Content: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.documents.UpdateComment(ctx, owner.ID, first.ID, "edited by owner")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	edited, err := env.documents.UpdateComment(ctx, author.ID, first.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	err = env.documents.DeleteComment(ctx, author.ID, second.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// владелец документа может удалить чужой комментарий
	require.NoError(t, env.documents.DeleteComment(ctx, owner.ID, first.ID))
	require.NoError(t, env.documents.DeleteComment(ctx, owner.ID, second.ID))

	comments, err = env.documents.ListComments(ctx, owner.ID, doc.Slug)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestDocumentService_StarAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 1<<20)

	owner := env.register(t, "owner@example.com")
	reader := env.register(t, "reader@example.com")
	doc := env.upload(t, owner.ID, "Favourite", true, "data")

	starred, err := env.documents.ToggleStar(ctx, reader.ID, doc.Slug)
	require.NoError(t, err)
	assert.True(t, starred.IsStarred)

	docs, err := env.documents.Starred(ctx, reader.ID, domain.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].IsStarred)

	// звезда принадлежит пользователю, владелец ее не видит
	ownerView, err := env.documents.GetBySlug(ctx, owner.ID, doc.Slug)
	require.NoError(t, err)
	assert.False(t, ownerView.IsStarred)

	unstarred, err := env.documents.ToggleStar(ctx, reader.ID, doc.Slug)
	require.NoError(t, err)
	assert.False(t, unstarred.IsStarred)

	_, err = env.documents.AddVersion(ctx, owner.ID, doc.Slug, domain.VersionUpload{FileName: "v2.txt", Data: []byte("v2")})
	require.NoError(t, err)
	assert.Equal(t, 2, env.storage.Len())

	err = env.documents.Delete(ctx, reader.ID, doc.Slug)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, env.documents.Delete(ctx, owner.ID, doc.Slug))
	assert.Equal(t, 0, env.storage.Len())

	_, err = env.documents.GetBySlug(ctx, owner.ID, doc.Slug)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	info, err := env.quota.GetQuotaInfo(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, info.UsedSpace)
}
