package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/api/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/api/auth/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/auth/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/auth/me", app.requireAuthUser(app.currentUserHandler))

	// blog service; GET /api/blogs/all is dispatched by getBlogHandler
	router.HandlerFunc(http.MethodPost, "/api/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/api/blogs", app.requireAuthUser(app.getMyBlogsHandler))
	router.HandlerFunc(http.MethodGet, "/api/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/api/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/api/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))

	// comment service; :id is the blog id for POST and GET, the comment id for DELETE
	router.HandlerFunc(http.MethodPost, "/api/comments/:id", app.requireAuthUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodGet, "/api/comments/:id", app.getCommentsHandler)
	router.HandlerFunc(http.MethodDelete, "/api/comments/:id", app.requireAuthUser(app.deleteCommentHandler))

	if app.uploadDir != "" {
		router.ServeFiles("/uploads/*filepath", http.Dir(app.uploadDir))
	}

	return app.recoverPanic(app.logRequest(app.enableCORS(app.rateLimit(router))))
}
