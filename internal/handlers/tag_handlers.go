package handlers

import (
	"errors"
	"net/http"
	"strings"

	"blogly/internal/database"
	"blogly/internal/models"
)

type tagForm struct {
	Name string `form:"name" validate:"required,max=30"`
}

func parseTagForm(r *http.Request) tagForm {
	return tagForm{Name: strings.TrimSpace(r.FormValue("name"))}
}

func TagListHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := database.GetTags()
	if err != nil {
		internalError(w, err)
		return
	}
	RenderTemplate(w, "tags.html", map[string]interface{}{
		"Tags": tags,
	})
}

func TagDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "Tag")
		return
	}

	tag, err := database.GetTag(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "Tag")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	posts, err := database.GetTagPosts(id)
	if err != nil {
		internalError(w, err)
		return
	}

	RenderTemplate(w, "tag_detail.html", map[string]interface{}{
		"Tag":   tag,
		"Posts": posts,
	})
}

func NewTagHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		form := parseTagForm(r)
		if err := validate.Struct(form); err != nil {
			renderStatus(w, http.StatusBadRequest, "tag_new.html", map[string]interface{}{
				"Error": validationMessage(err),
				"Form":  form,
			})
			return
		}

		_, err := database.CreateTag(form.Name)
		if errors.Is(err, database.ErrDuplicate) {
			renderStatus(w, http.StatusBadRequest, "tag_new.html", map[string]interface{}{
				"Error": "a tag named " + form.Name + " already exists",
				"Form":  form,
			})
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/tags", http.StatusFound)
		return
	}

	RenderTemplate(w, "tag_new.html", map[string]interface{}{
		"Form": tagForm{},
	})
}

func EditTagHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "Tag")
		return
	}

	tag, err := database.GetTag(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "Tag")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if r.Method == http.MethodPost {
		form := parseTagForm(r)
		if err := validate.Struct(form); err != nil {
			renderBadTagEdit(w, tag, form, validationMessage(err))
			return
		}

		err := database.UpdateTag(id, form.Name)
		if errors.Is(err, database.ErrDuplicate) {
			renderBadTagEdit(w, tag, form, "a tag named "+form.Name+" already exists")
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/tags", http.StatusFound)
		return
	}

	RenderTemplate(w, "tag_edit.html", map[string]interface{}{
		"Tag":  tag,
		"Form": tagForm{Name: tag.Name},
	})
}

func DeleteTagHandler(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r)
	if err != nil {
		renderNotFound(w, "Tag")
		return
	}

	err = database.DeleteTag(id)
	if errors.Is(err, database.ErrNotFound) {
		renderNotFound(w, "Tag")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	logger.Infow("tag deleted", "id", id)
	http.Redirect(w, r, "/tags", http.StatusFound)
}

func renderBadTagEdit(w http.ResponseWriter, tag models.Tag, form tagForm, msg string) {
	renderStatus(w, http.StatusBadRequest, "tag_edit.html", map[string]interface{}{
		"Error": msg,
		"Tag":   tag,
		"Form":  form,
	})
}
