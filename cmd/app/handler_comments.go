package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/bloghub/internal/commentservice"
	"github.com/sushihentaime/bloghub/internal/common"
)

type createCommentRequest struct {
	Content         string `json:"content"`
	ParentCommentID string `json:"parentCommentId"`
}

func (app *application) commentErrorResponse(w http.ResponseWriter, r *http.Request, err error, notFound http.HandlerFunc) {
	var validationErr common.ValidationError
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		notFound(w, r)
	case errors.Is(err, common.ErrNotOwner):
		app.notOwnerErrorResponse(w, r)
	case errors.Is(err, commentservice.ErrContentRequired):
		app.contentRequiredResponse(w, r)
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	blogID, err := app.readIDParam(r, "id")
	if err != nil {
		app.blogNotFoundResponse(w, r)
		return
	}

	var input createCommentRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	comment, err := app.commentService.CreateComment(r.Context(), &commentservice.CreateCommentRequest{
		BlogID:          blogID,
		UserID:          user.ID,
		Content:         input.Content,
		ParentCommentID: input.ParentCommentID,
	})
	if err != nil {
		app.commentErrorResponse(w, r, err, app.blogNotFoundResponse)
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, envelope{"comment": comment})
}

func (app *application) getCommentsHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := app.readIDParam(r, "id")
	if err != nil {
		app.blogNotFoundResponse(w, r)
		return
	}

	threads, err := app.commentService.GetCommentTree(r.Context(), blogID)
	if err != nil {
		app.commentErrorResponse(w, r, err, app.blogNotFoundResponse)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"count": len(threads), "comments": threads})
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.commentNotFoundResponse(w, r)
		return
	}

	err = app.commentService.DeleteComment(r.Context(), id, user.ID)
	if err != nil {
		app.commentErrorResponse(w, r, err, app.commentNotFoundResponse)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"message": "Comment removed"})
}
