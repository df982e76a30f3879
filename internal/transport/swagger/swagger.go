// Package swagger serves the API document and its UI.
package swagger

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.yml
var document []byte

// Document returns the raw OpenAPI document.
func Document() []byte {
	return document
}

// Validate parses the embedded document and checks it against the OpenAPI 3
// rules. The server refuses to start on an invalid document.
func Validate(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

func DocumentHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(document)
}

func Handler() http.Handler {
	// The UI loads the document served at /openapi.yml
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}
