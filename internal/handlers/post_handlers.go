package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"blogly/internal/database"
	"blogly/internal/models"
)

type postForm struct {
	Title   string `form:"title" validate:"required,max=50"`
	Content string `form:"content" validate:"required"`
	TagIDs  []int64
}

// tagChoice pairs a tag with its checkbox state for the post forms.
type tagChoice struct {
	Tag     models.Tag
	Checked bool
}

func parsePostForm(r *http.Request) (postForm, error) {
	if err := r.ParseForm(); err != nil {
		return postForm{}, err
	}
	form := postForm{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: strings.TrimSpace(r.FormValue("content")),
	}
	// Checkboxes submit tag ids as a multi-value "tags" field. A value
	// that is not an id of any tag is a referential error, same as an
	// id that parses but matches no row.
	for _, v := range r.Form["tags"] {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return postForm{}, database.ErrUnknownTag
		}
		form.TagIDs = append(form.TagIDs, id)
	}
	return form, nil
}

func tagChoices(checked []int64) ([]tagChoice, error) {
	tags, err := database.GetTags()
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(checked))
	for _, id := range checked {
		set[id] = true
	}
	choices := make([]tagChoice, 0, len(tags))
	for _, t := range tags {
		choices = append(choices, tagChoice{Tag: t, Checked: set[t.ID]})
	}
	return choices, nil
}

func NewPostHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := paramID(r)
	if err != nil {
		renderNotFound(w, "User")
		return
	}

	user, err := database.GetUser(userID)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "User")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if r.Method == http.MethodPost {
		form, err := parsePostForm(r)
		if err != nil {
			badPostForm(w, "post_new.html", user, models.Post{}, postForm{}, "unknown tag selected")
			return
		}
		if err := validate.Struct(form); err != nil {
			badPostForm(w, "post_new.html", user, models.Post{}, form, validationMessage(err))
			return
		}

		if _, err := database.CreatePost(userID, form.Title, form.Content, form.TagIDs); err != nil {
			if errors.Is(err, database.ErrUnknownTag) {
				badPostForm(w, "post_new.html", user, models.Post{}, form, "unknown tag selected")
				return
			}
			internalError(w, err)
			return
		}
		http.Redirect(w, r, userPath(userID), http.StatusFound)
		return
	}

	choices, err := tagChoices(nil)
	if err != nil {
		internalError(w, err)
		return
	}
	RenderTemplate(w, "post_new.html", map[string]interface{}{
		"User": user,
		"Form": postForm{},
		"Tags": choices,
	})
}

func PostDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "Post")
		return
	}

	post, err := database.GetPost(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "Post")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	user, err := database.GetUser(post.UserID)
	if err != nil {
		internalError(w, err)
		return
	}

	RenderTemplate(w, "post_detail.html", map[string]interface{}{
		"Post": post,
		"User": user,
	})
}

func EditPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "Post")
		return
	}

	post, err := database.GetPost(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "Post")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if r.Method == http.MethodPost {
		form, err := parsePostForm(r)
		if err != nil {
			badPostForm(w, "post_edit.html", models.User{}, post, postForm{}, "unknown tag selected")
			return
		}
		if err := validate.Struct(form); err != nil {
			badPostForm(w, "post_edit.html", models.User{}, post, form, validationMessage(err))
			return
		}

		if err := database.UpdatePost(id, form.Title, form.Content, form.TagIDs); err != nil {
			if errors.Is(err, database.ErrUnknownTag) {
				badPostForm(w, "post_edit.html", models.User{}, post, form, "unknown tag selected")
				return
			}
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/posts/"+strconv.FormatInt(id, 10), http.StatusFound)
		return
	}

	checked := make([]int64, 0, len(post.Tags))
	for _, t := range post.Tags {
		checked = append(checked, t.ID)
	}
	choices, err := tagChoices(checked)
	if err != nil {
		internalError(w, err)
		return
	}
	RenderTemplate(w, "post_edit.html", map[string]interface{}{
		"Post": post,
		"Form": postForm{Title: post.Title, Content: post.Content},
		"Tags": choices,
	})
}

func DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "Post")
		return
	}

	// Fetch first: the redirect target is the owning user's page.
	post, err := database.GetPost(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "Post")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if err := database.DeletePost(id); err != nil {
		internalError(w, err)
		return
	}

	logger.Infow("post deleted", "id", id, "user_id", post.UserID)
	http.Redirect(w, r, userPath(post.UserID), http.StatusFound)
}

// badPostForm re-renders a post form with an inline error, keeping the
// submitted values and checkbox state.
func badPostForm(w http.ResponseWriter, tmpl string, user models.User, post models.Post, form postForm, msg string) {
	choices, err := tagChoices(form.TagIDs)
	if err != nil {
		internalError(w, err)
		return
	}
	renderStatus(w, http.StatusBadRequest, tmpl, map[string]interface{}{
		"Error": msg,
		"User":  user,
		"Post":  post,
		"Form":  form,
		"Tags":  choices,
	})
}
