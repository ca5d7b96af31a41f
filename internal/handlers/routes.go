package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// BearerScheme is the OpenAPI security scheme name for access tokens.
const BearerScheme = "bearer"

var bearerSecurity = []map[string][]string{{BearerScheme: {}}}

// RegisterRoutes registers the account and URL routes.
func RegisterRoutes(api huma.API, authHandler *AuthHandler, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "signup",
		Method:      http.MethodPost,
		Path:        "/api/auth/signup",
		Summary:     "Create account",
		Tags:        []string{"Auth"},
		Errors:      []int{http.StatusBadRequest},
	}, authHandler.Signup)

	huma.Register(api, huma.Operation{
		OperationID: "signin",
		Method:      http.MethodPost,
		Path:        "/api/auth/signin",
		Summary:     "Sign in",
		Tags:        []string{"Auth"},
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, authHandler.Signin)

	huma.Register(api, huma.Operation{
		OperationID: "current-user",
		Method:      http.MethodGet,
		Path:        "/api/auth/me",
		Summary:     "Current account",
		Tags:        []string{"Auth"},
		Security:    bearerSecurity,
		Errors:      []int{http.StatusUnauthorized},
	}, authHandler.Me)

	huma.Register(api, huma.Operation{
		OperationID: "deactivate-account",
		Method:      http.MethodDelete,
		Path:        "/api/auth/me",
		Summary:     "Deactivate account",
		Tags:        []string{"Auth"},
		Security:    bearerSecurity,
		Errors:      []int{http.StatusUnauthorized},
	}, authHandler.DeactivateMe)

	huma.Register(api, huma.Operation{
		OperationID: "list-urls",
		Method:      http.MethodGet,
		Path:        "/api/urls",
		Summary:     "List own short URLs",
		Tags:        []string{"URLs"},
		Security:    bearerSecurity,
		Errors:      []int{http.StatusUnauthorized},
	}, urlHandler.ListURLs)

	huma.Register(api, huma.Operation{
		OperationID: "create-url",
		Method:      http.MethodPost,
		Path:        "/url",
		Summary:     "Create short URL",
		Description: "Creates a short URL. With a bearer token the URL is owned by that account, otherwise it is a guest URL.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "get-admin-info",
		Method:      http.MethodGet,
		Path:        "/admin/{secret_key}",
		Summary:     "Inspect short URL",
		Tags:        []string{"Admin"},
		Errors:      []int{http.StatusNotFound},
	}, urlHandler.GetAdminInfo)

	huma.Register(api, huma.Operation{
		OperationID: "list-visitors",
		Method:      http.MethodGet,
		Path:        "/admin/{secret_key}/visitors",
		Summary:     "List visitors of short URL",
		Tags:        []string{"Admin"},
		Errors:      []int{http.StatusNotFound},
	}, urlHandler.ListVisitors)

	huma.Register(api, huma.Operation{
		OperationID: "delete-url",
		Method:      http.MethodDelete,
		Path:        "/admin/{secret_key}",
		Summary:     "Deactivate short URL",
		Tags:        []string{"Admin"},
		Errors:      []int{http.StatusNotFound},
	}, urlHandler.DeleteURL)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{key}",
		Summary:       "Redirect to target URL",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusTemporaryRedirect,
		Errors:        []int{http.StatusNotFound},
	}, urlHandler.RedirectToURL)
}
