package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/imagestore"
)

type registerUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ProfileImage string `json:"profileImage"`
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input registerUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	token, user, err := app.userService.CreateUser(r.Context(), input.Email, input.Password, input.ProfileImage)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, common.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, envelope{"token": token, "user": user})
}

type loginUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input loginUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	token, user, err := app.userService.LoginUser(r.Context(), input.Email, input.Password)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"token": token, "user": user})
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	caller := app.getUserContext(r)

	user, err := app.userService.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			app.invalidAuthenticationTokenResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"user": user})
}

// blogErrorResponse maps blog service errors onto responses.
func (app *application) blogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		app.blogNotFoundResponse(w, r)
	case errors.Is(err, common.ErrNotOwner):
		app.notOwnerErrorResponse(w, r)
	case errors.Is(err, blogservice.ErrImageRequired):
		app.imageRequiredResponse(w, r)
	case errors.Is(err, imagestore.ErrUnsupportedImage):
		app.unsupportedImageResponse(w, r)
	case errors.Is(err, imagestore.ErrImageTooLarge):
		app.imageTooLargeResponse(w, r)
	case errors.Is(err, blogservice.ErrUserForeignKey):
		app.invalidAuthenticationTokenResponse(w, r)
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	form, err := app.parseBlogForm(w, r)
	if err != nil {
		switch {
		case errors.Is(err, imagestore.ErrImageTooLarge):
			app.imageTooLargeResponse(w, r)
		default:
			app.badRequestErrorResponse(w, r, err)
		}
		return
	}

	blog, err := app.blogService.CreateBlog(r.Context(), &blogservice.CreateBlogRequest{
		Title:       form.Title,
		Description: form.Description,
		UserID:      user.ID,
		Image:       form.Image,
	})
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, envelope{"blog": blog})
}

// getBlogHandler also serves GET /api/blogs/all, which shares the :id segment in the router.
func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	if httprouter.ParamsFromContext(r.Context()).ByName("id") == "all" {
		app.getAllBlogsHandler(w, r)
		return
	}

	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.blogNotFoundResponse(w, r)
		return
	}

	blog, err := app.blogService.GetBlogByID(r.Context(), id)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"blog": blog})
}

func (app *application) getAllBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.GetBlogs(r.Context(), limit, offset)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"count": len(blogs), "blogs": blogs})
}

func (app *application) getMyBlogsHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	blogs, err := app.blogService.GetBlogsByUserID(r.Context(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"count": len(blogs), "blogs": blogs})
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.blogNotFoundResponse(w, r)
		return
	}

	form, formErr := app.parseBlogUpdate(w, r)

	blog, err := app.blogService.UpdateBlog(r.Context(), &blogservice.UpdateBlogRequest{
		ID:          id,
		UserID:      user.ID,
		Title:       form.Title,
		Description: form.Description,
		Image:       form.Image,
		PayloadErr:  formErr,
	})
	if err != nil {
		if formErr != nil && err == formErr && !errors.Is(err, imagestore.ErrImageTooLarge) {
			app.badRequestErrorResponse(w, r, err)
			return
		}
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"blog": blog})
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.blogNotFoundResponse(w, r)
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), id, user.ID)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, envelope{"message": "Blog removed"})
}
