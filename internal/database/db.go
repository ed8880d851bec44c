package database

import (
	"database/sql"
	"errors"

	"blogly/internal/models"

	"github.com/mattn/go-sqlite3"
)

var DB *sql.DB

var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a unique constraint was violated (tag names).
	ErrDuplicate = errors.New("already exists")
	// ErrUnknownTag means a submitted tag id matches no tag row.
	ErrUnknownTag = errors.New("unknown tag")
)

func InitDB(filepath string) error {
	var err error
	// Foreign keys are off by default in sqlite; the cascades in the
	// schema depend on this pragma.
	DB, err = sql.Open("sqlite3", filepath+"?_foreign_keys=on")
	if err != nil {
		return err
	}

	if err = DB.Ping(); err != nil {
		return err
	}

	return createSchema()
}

func createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL CHECK(length(first_name) <= 30),
		last_name TEXT NOT NULL CHECK(length(last_name) <= 30),
		image_url TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL CHECK(length(title) <= 50),
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		user_id INTEGER NOT NULL,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL CHECK(length(name) <= 30)
	);

	CREATE TABLE IF NOT EXISTS post_tags (
		post_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		PRIMARY KEY (post_id, tag_id),
		FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE,
		FOREIGN KEY(tag_id) REFERENCES tags(id) ON DELETE CASCADE
	);
	`
	_, err := DB.Exec(schema)
	return err
}

// Users

func CreateUser(firstName, lastName, imageURL string) (int64, error) {
	result, err := DB.Exec(
		"INSERT INTO users (first_name, last_name, image_url) VALUES (?, ?, ?)",
		firstName, lastName, imageURL,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func GetUsers() ([]models.User, error) {
	rows, err := DB.Query("SELECT id, first_name, last_name, image_url FROM users ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.ImageURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func GetUser(id int64) (models.User, error) {
	var u models.User
	err := DB.QueryRow(
		"SELECT id, first_name, last_name, image_url FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func UpdateUser(id int64, firstName, lastName, imageURL string) error {
	result, err := DB.Exec(
		"UPDATE users SET first_name = ?, last_name = ?, image_url = ? WHERE id = ?",
		firstName, lastName, imageURL, id,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteUser removes the user; posts and their tag associations go with it
// through the cascading foreign keys.
func DeleteUser(id int64) error {
	result, err := DB.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Posts

func CreatePost(userID int64, title, content string, tagIDs []int64) (int64, error) {
	tx, err := DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO posts (title, content, user_id) VALUES (?, ?, ?)",
		title, content, userID,
	)
	if err != nil {
		return 0, err
	}
	postID, _ := result.LastInsertId()

	if err = insertPostTags(tx, postID, tagIDs); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return postID, nil
}

func GetPost(id int64) (models.Post, error) {
	var p models.Post
	err := DB.QueryRow(
		"SELECT id, title, content, created_at, user_id FROM posts WHERE id = ?", id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrNotFound
	}
	if err != nil {
		return models.Post{}, err
	}

	p.Tags, err = GetPostTags(id)
	return p, err
}

func GetPostsByUser(userID int64) ([]models.Post, error) {
	rows, err := DB.Query(
		"SELECT id, title, content, created_at, user_id FROM posts WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func UpdatePost(id int64, title, content string, tagIDs []int64) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec("UPDATE posts SET title = ?, content = ? WHERE id = ?", title, content, id)
	if err != nil {
		return err
	}
	if err = checkAffected(result); err != nil {
		return err
	}

	// Replace associations wholesale; unchecked boxes mean removal.
	if _, err = tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id); err != nil {
		return err
	}
	if err = insertPostTags(tx, id, tagIDs); err != nil {
		return err
	}

	return tx.Commit()
}

func DeletePost(id int64) error {
	result, err := DB.Exec("DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// insertPostTags associates each tag with the post. INSERT OR IGNORE keeps
// the composite primary key invariant even when the same id is submitted
// twice; a foreign key failure means the tag id matches no tag row.
func insertPostTags(tx *sql.Tx, postID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		_, err := tx.Exec("INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)", postID, tagID)
		if err != nil {
			var serr sqlite3.Error
			if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
				return ErrUnknownTag
			}
			return err
		}
	}
	return nil
}

func GetPostTags(postID int64) ([]models.Tag, error) {
	rows, err := DB.Query(`
		SELECT t.id, t.name
		FROM tags t
		JOIN post_tags pt ON t.id = pt.tag_id
		WHERE pt.post_id = ?
		ORDER BY t.name ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// Tags

func CreateTag(name string) (int64, error) {
	result, err := DB.Exec("INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return result.LastInsertId()
}

func GetTags() ([]models.Tag, error) {
	rows, err := DB.Query("SELECT id, name FROM tags ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func GetTag(id int64) (models.Tag, error) {
	var t models.Tag
	err := DB.QueryRow("SELECT id, name FROM tags WHERE id = ?", id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tag{}, ErrNotFound
	}
	return t, err
}

func GetTagPosts(tagID int64) ([]models.Post, error) {
	rows, err := DB.Query(`
		SELECT p.id, p.title, p.content, p.created_at, p.user_id
		FROM posts p
		JOIN post_tags pt ON p.id = pt.post_id
		WHERE pt.tag_id = ?
		ORDER BY p.created_at DESC, p.id DESC`, tagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func UpdateTag(id int64, name string) error {
	result, err := DB.Exec("UPDATE tags SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return mapConstraint(err)
	}
	return checkAffected(result)
}

func DeleteTag(id int64) error {
	result, err := DB.Exec("DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Helpers

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UserID); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanTags(rows *sql.Rows) ([]models.Tag, error) {
	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func checkAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapConstraint(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return err
}
