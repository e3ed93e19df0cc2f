package swaggerui

import (
	"net/http"

	swgui "github.com/swaggest/swgui/v5"
)

// Handler serves Swagger UI for the document at specPath, mounted under
// basePath. Assets are embedded.
func Handler(specPath, basePath string) http.Handler {
	return swgui.New("Topic Atlas API", specPath, basePath)
}
