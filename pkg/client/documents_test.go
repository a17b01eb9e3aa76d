package client

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestDocumentStoreCreate(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	titles := []string{"Budget 2025 (Draft)", "  Team -- Offsite!! ", "Résumé.pdf"}
	for _, title := range titles {
		doc, err := f.documents.Create(ctx, Upload{
			Title:    title,
			FileName: "file.txt",
			Data:     []byte("content"),
		})
		require.NoError(t, err, title)
		assert.Regexp(t, slugPattern, doc.Slug, title)
		assert.Equal(t, 1, doc.VersionCount)
		assert.Equal(t, "txt", doc.FileType)

		owned := f.documents.Owned()
		assert.Equal(t, doc.ID, owned[0].ID, "new document is first in owned")
	}

	t.Run("file is required", func(t *testing.T) {
		_, err := f.documents.Create(ctx, Upload{Title: "Empty"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, f.documents.LastError(), ErrValidation)
		assert.Equal(t, LevelError, f.notes[len(f.notes)-1].Level)
	})
}

func TestDocumentStoreAddVersion(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	before, err := f.documents.FetchBySlug(ctx, "meeting-notes")
	require.NoError(t, err)

	version, err := f.documents.AddVersion(ctx, "meeting-notes", VersionUpload{
		FileName: "meeting-notes.pdf",
		Data:     []byte("third revision"),
		Comment:  "Final",
	})
	require.NoError(t, err)

	maxNumber := 0
	for _, v := range before.Versions {
		maxNumber = max(maxNumber, v.VersionNumber)
	}
	assert.Equal(t, maxNumber+1, version.VersionNumber)

	current := f.documents.Current()
	require.NotNil(t, current)
	assert.Equal(t, before.VersionCount+1, current.VersionCount)
	assert.Equal(t, version.VersionNumber, current.CurrentVersion)
	assert.Equal(t, int64(len("third revision")), current.FileSize)
	require.NotEmpty(t, current.Versions)
	assert.Equal(t, version.ID, current.Versions[0].ID)

	owned, ok := findByTitle(f.documents.Owned(), "Meeting Notes")
	require.True(t, ok)
	assert.Equal(t, current.VersionCount, owned.VersionCount, "collections are reconciled")
}

func TestDocumentStoreDelete(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	_, err := f.documents.FetchBySlug(ctx, "project-proposal")
	require.NoError(t, err)

	require.NoError(t, f.documents.Delete(ctx, "project-proposal"))

	for name, docs := range map[string][]Document{
		"all":     f.documents.All(),
		"owned":   f.documents.Owned(),
		"shared":  f.documents.Shared(),
		"starred": f.documents.Starred(),
	} {
		_, found := findByTitle(docs, "Project Proposal")
		assert.False(t, found, name)
	}
	assert.Nil(t, f.documents.Current())

	t.Run("only the owner may delete", func(t *testing.T) {
		err := f.documents.Delete(ctx, "design-guidelines")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestDocumentStoreToggleStar(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	original, ok := findByTitle(f.documents.All(), "Meeting Notes")
	require.True(t, ok)

	first, err := f.documents.ToggleStar(ctx, original.Slug)
	require.NoError(t, err)
	assert.Equal(t, !original.IsStarred, first.IsStarred)
	_, inStarred := findByTitle(f.documents.Starred(), "Meeting Notes")
	assert.Equal(t, first.IsStarred, inStarred)

	second, err := f.documents.ToggleStar(ctx, original.Slug)
	require.NoError(t, err)
	assert.Equal(t, original.IsStarred, second.IsStarred)
	_, inStarred = findByTitle(f.documents.Starred(), "Meeting Notes")
	assert.Equal(t, second.IsStarred, inStarred)

	t.Run("unknown document", func(t *testing.T) {
		_, err := f.documents.ToggleStar(ctx, "not-loaded")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentStoreSearch(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	allBefore := f.documents.All()

	result := f.documents.Search("notes")
	require.Len(t, result, 1)
	assert.Equal(t, "Meeting Notes", result[0].Title)

	byTag := f.documents.Search("PLANNING")
	require.Len(t, byTag, 1)
	assert.Equal(t, "Project Proposal", byTag[0].Title)

	assert.Len(t, f.documents.Search(""), 3, "documents are deduplicated by id")
	assert.Equal(t, allBefore, f.documents.All(), "search does not touch collections")
}

func TestDocumentStoreSharesFromLists(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	guidelines, ok := findByTitle(f.documents.All(), "Design Guidelines")
	require.True(t, ok)
	jane := guidelines.Owner

	shareCounts := func() (canonical, owned, starred int) {
		t.Helper()
		detail, err := f.backend.GetDocument(ctx, "project-proposal")
		require.NoError(t, err)
		o, ok := findByTitle(f.documents.Owned(), "Project Proposal")
		require.True(t, ok)
		st, ok := findByTitle(f.documents.Starred(), "Project Proposal")
		require.True(t, ok)
		return detail.ShareCount, o.ShareCount, st.ShareCount
	}

	share, err := f.documents.Share(ctx, "project-proposal", jane.ID, PermissionView)
	require.NoError(t, err)
	assert.Nil(t, f.documents.Current())

	canonical, owned, starred := shareCounts()
	assert.Equal(t, 1, canonical)
	assert.Equal(t, canonical, owned)
	assert.Equal(t, canonical, starred)

	all, ok := findByTitle(f.documents.All(), "Project Proposal")
	require.True(t, ok)
	assert.Equal(t, canonical, all.ShareCount)

	require.NoError(t, f.documents.RemoveShare(ctx, share.ID))

	canonical, owned, starred = shareCounts()
	assert.Equal(t, 0, canonical)
	assert.Equal(t, canonical, owned)
	assert.Equal(t, canonical, starred)
}

func TestDocumentStoreShares(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	detail, err := f.documents.FetchBySlug(ctx, "meeting-notes")
	require.NoError(t, err)
	require.Len(t, detail.Shares, 1)
	jane := detail.Shares[0].SharedWith

	t.Run("sharing again updates the permission", func(t *testing.T) {
		share, err := f.documents.Share(ctx, "meeting-notes", jane.ID, PermissionEdit)
		require.NoError(t, err)
		assert.Equal(t, detail.Shares[0].ID, share.ID)

		current := f.documents.Current()
		require.Len(t, current.Shares, 1)
		assert.Equal(t, PermissionEdit, current.Shares[0].Permission)
		assert.Equal(t, 1, current.ShareCount)
	})

	t.Run("remove share", func(t *testing.T) {
		before := f.documents.Current()

		require.NoError(t, f.documents.RemoveShare(ctx, before.Shares[0].ID))

		current := f.documents.Current()
		assert.Equal(t, before.ShareCount-1, current.ShareCount)
		for _, sh := range current.Shares {
			assert.NotEqual(t, jane.ID, sh.SharedWith.ID)
		}

		owned, ok := findByTitle(f.documents.Owned(), "Meeting Notes")
		require.True(t, ok)
		assert.Equal(t, current.ShareCount, owned.ShareCount)
	})

	t.Run("cannot share with yourself", func(t *testing.T) {
		me := f.session.User()
		_, err := f.documents.Share(ctx, "meeting-notes", me.ID, PermissionView)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDocumentStoreComments(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	detail, err := f.documents.FetchBySlug(ctx, "design-guidelines")
	require.NoError(t, err)

	comment, err := f.documents.AddComment(ctx, detail.ID, "Looks great")
	require.NoError(t, err)

	current := f.documents.Current()
	require.Len(t, current.Comments, len(detail.Comments)+1)
	assert.Equal(t, "Looks great", current.Comments[len(current.Comments)-1].Content)

	require.NoError(t, f.documents.DeleteComment(ctx, comment.ID))
	assert.Len(t, f.documents.Current().Comments, len(detail.Comments))

	t.Run("accessors return copies", func(t *testing.T) {
		snapshot := f.documents.Current()
		snapshot.Comments = append(snapshot.Comments, Comment{ID: 999})
		snapshot.Title = "changed"

		assert.NotEqual(t, "changed", f.documents.Current().Title)
		assert.Len(t, f.documents.Current().Comments, len(detail.Comments))
	})
}
