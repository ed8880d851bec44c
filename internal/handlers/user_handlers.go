package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"blogly/internal/database"
)

type userForm struct {
	FirstName string `form:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" validate:"required,max=30"`
	ImageURL  string `form:"image_url"`
}

func parseUserForm(r *http.Request) userForm {
	return userForm{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		ImageURL:  strings.TrimSpace(r.FormValue("image_url")),
	}
}

func UserListHandler(w http.ResponseWriter, r *http.Request) {
	users, err := database.GetUsers()
	if err != nil {
		internalError(w, err)
		return
	}
	RenderTemplate(w, "users.html", map[string]interface{}{
		"Users": users,
	})
}

func NewUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		form := parseUserForm(r)
		if err := validate.Struct(form); err != nil {
			renderStatus(w, http.StatusBadRequest, "user_new.html", map[string]interface{}{
				"Error": validationMessage(err),
				"Form":  form,
			})
			return
		}

		// Blank image URL falls back to the configured placeholder.
		if form.ImageURL == "" {
			form.ImageURL = cfg.DefaultImageURL
		}

		if _, err := database.CreateUser(form.FirstName, form.LastName, form.ImageURL); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/users", http.StatusFound)
		return
	}

	RenderTemplate(w, "user_new.html", map[string]interface{}{
		"Form": userForm{},
	})
}

func UserDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "User")
		return
	}

	user, err := database.GetUser(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "User")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	posts, err := database.GetPostsByUser(id)
	if err != nil {
		internalError(w, err)
		return
	}

	RenderTemplate(w, "user_detail.html", map[string]interface{}{
		"User":  user,
		"Posts": posts,
	})
}

func EditUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "User")
		return
	}

	user, err := database.GetUser(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "User")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if r.Method == http.MethodPost {
		form := parseUserForm(r)
		if err := validate.Struct(form); err != nil {
			renderStatus(w, http.StatusBadRequest, "user_edit.html", map[string]interface{}{
				"Error": validationMessage(err),
				"User":  user,
				"Form":  form,
			})
			return
		}

		if form.ImageURL == "" {
			form.ImageURL = cfg.DefaultImageURL
		}

		if err := database.UpdateUser(id, form.FirstName, form.LastName, form.ImageURL); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/users", http.StatusFound)
		return
	}

	RenderTemplate(w, "user_edit.html", map[string]interface{}{
		"User": user,
		"Form": userForm{FirstName: user.FirstName, LastName: user.LastName, ImageURL: user.ImageURL},
	})
}

func DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "User")
		return
	}

	err = database.DeleteUser(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "User")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	logger.Infow("user deleted", "id", id)
	http.Redirect(w, r, "/users", http.StatusFound)
}

func userPath(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}
