// Package response provides composable HTTP response builders for use with
// the handler.Response pattern.
//
// Responses are values describing what to write, constructed in handlers and
// rendered later by the router. This keeps handlers free of http.ResponseWriter
// plumbing and lets middleware decorate responses before they render:
//
//	func show(ctx *router.Context) handler.Response {
//		post, err := repo.Find(ctx, ctx.Param("slug"))
//		if err != nil {
//			return response.Error(response.ErrNotFound.WithError(err))
//		}
//		return response.JSON(post)
//	}
//
// HTTPError carries a status code, machine-readable code, and optional
// details; ErrorHandler and JSONErrorHandler convert arbitrary errors into
// consistent client-facing responses.
package response
