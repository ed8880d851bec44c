package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "blogly_test.db")))
	t.Cleanup(func() { DB.Close() })
}

func TestUserCRUD(t *testing.T) {
	setupDB(t)

	id, err := CreateUser("David", "Sommers", "https://example.com/a.png")
	require.NoError(t, err)

	user, err := GetUser(id)
	require.NoError(t, err)
	assert.Equal(t, "David", user.FirstName)
	assert.Equal(t, "Sommers", user.LastName)
	assert.Equal(t, "https://example.com/a.png", user.ImageURL)
	assert.Equal(t, "David Sommers", user.FullName())

	require.NoError(t, UpdateUser(id, "David", "Truman", "https://example.com/b.png"))
	user, err = GetUser(id)
	require.NoError(t, err)
	assert.Equal(t, "Truman", user.LastName)

	id2, err := CreateUser("Bob", "Johnson", "https://example.com/c.png")
	require.NoError(t, err)
	users, err := GetUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, id, users[0].ID)
	assert.Equal(t, id2, users[1].ID)

	require.NoError(t, DeleteUser(id))
	_, err = GetUser(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserNotFound(t *testing.T) {
	setupDB(t)

	_, err := GetUser(123)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, UpdateUser(123, "A", "B", "c"), ErrNotFound)
	assert.ErrorIs(t, DeleteUser(123), ErrNotFound)
}

func TestPostCRUD(t *testing.T) {
	setupDB(t)

	userID, err := CreateUser("David", "Sommers", "img")
	require.NoError(t, err)

	postID, err := CreatePost(userID, "Test Post", "Content for tester post :)", nil)
	require.NoError(t, err)

	post, err := GetPost(postID)
	require.NoError(t, err)
	assert.Equal(t, "Test Post", post.Title)
	assert.Equal(t, "Content for tester post :)", post.Content)
	assert.Equal(t, userID, post.UserID)
	assert.NotEmpty(t, post.CreatedAt)
	assert.Empty(t, post.Tags)

	require.NoError(t, UpdatePost(postID, "Renamed", "New content", nil))
	post, err = GetPost(postID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", post.Title)
	assert.Equal(t, "New content", post.Content)

	posts, err := GetPostsByUser(userID)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	require.NoError(t, DeletePost(postID))
	_, err = GetPost(postID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, DeletePost(postID), ErrNotFound)
	assert.ErrorIs(t, UpdatePost(postID, "x", "y", nil), ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	setupDB(t)

	userID, err := CreateUser("David", "Sommers", "img")
	require.NoError(t, err)
	tagID, err := CreateTag("golang")
	require.NoError(t, err)
	postID, err := CreatePost(userID, "Test Post", "Content", []int64{tagID})
	require.NoError(t, err)

	require.NoError(t, DeleteUser(userID))

	_, err = GetPost(postID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Join rows go with the post; the tag itself stays.
	posts, err := GetTagPosts(tagID)
	require.NoError(t, err)
	assert.Empty(t, posts)
	_, err = GetTag(tagID)
	assert.NoError(t, err)
}

func TestTagNameUnique(t *testing.T) {
	setupDB(t)

	id, err := CreateTag("golang")
	require.NoError(t, err)

	_, err = CreateTag("golang")
	assert.ErrorIs(t, err, ErrDuplicate)

	tags, err := GetTags()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, id, tags[0].ID)
	assert.Equal(t, "golang", tags[0].Name)

	// Renaming onto an existing name conflicts the same way.
	id2, err := CreateTag("web")
	require.NoError(t, err)
	assert.ErrorIs(t, UpdateTag(id2, "golang"), ErrDuplicate)
	tag, err := GetTag(id2)
	require.NoError(t, err)
	assert.Equal(t, "web", tag.Name)
}

func TestPostTagAssociationIdempotent(t *testing.T) {
	setupDB(t)

	userID, err := CreateUser("David", "Sommers", "img")
	require.NoError(t, err)
	tagID, err := CreateTag("golang")
	require.NoError(t, err)

	// Same id submitted twice on create yields a single join row.
	postID, err := CreatePost(userID, "Test Post", "Content", []int64{tagID, tagID})
	require.NoError(t, err)
	tags, err := GetPostTags(postID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	// Re-submitting the same checkbox on edit does not duplicate either.
	require.NoError(t, UpdatePost(postID, "Test Post", "Content", []int64{tagID, tagID}))
	tags, err = GetPostTags(postID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	// Unchecking removes the association.
	require.NoError(t, UpdatePost(postID, "Test Post", "Content", nil))
	tags, err = GetPostTags(postID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestUnknownTagRollsBackPost(t *testing.T) {
	setupDB(t)

	userID, err := CreateUser("David", "Sommers", "img")
	require.NoError(t, err)

	_, err = CreatePost(userID, "Test Post", "Content", []int64{999})
	assert.ErrorIs(t, err, ErrUnknownTag)

	// The failed association aborts the whole transaction.
	posts, err := GetPostsByUser(userID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestDeleteTagRemovesAssociations(t *testing.T) {
	setupDB(t)

	userID, err := CreateUser("David", "Sommers", "img")
	require.NoError(t, err)
	tagID, err := CreateTag("golang")
	require.NoError(t, err)
	postID, err := CreatePost(userID, "Test Post", "Content", []int64{tagID})
	require.NoError(t, err)

	require.NoError(t, DeleteTag(tagID))

	post, err := GetPost(postID)
	require.NoError(t, err)
	assert.Empty(t, post.Tags)

	assert.ErrorIs(t, DeleteTag(tagID), ErrNotFound)
	assert.ErrorIs(t, UpdateTag(tagID, "x"), ErrNotFound)
}
