//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// Minimal OpenAPI document served at /swagger/doc.json. Kept by hand; the
// annotated types in pkg/types carry the field-level documentation.
const swaggerDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "promptd API",
    "description": "HTTP API for streaming local LLM text generation.",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/generate": {
      "post": {
        "summary": "Stream a generation as NDJSON",
        "consumes": ["application/json"],
        "produces": ["application/x-ndjson"],
        "responses": {
          "200": {"description": "NDJSON delta stream"},
          "400": {"description": "invalid body or unknown template family"},
          "429": {"description": "queue full"},
          "503": {"description": "engine unavailable"}
        }
      }
    },
    "/session": {"get": {"summary": "Session memory turns", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/status": {"get": {"summary": "Pipeline status", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "OK"}}}},
    "/readyz": {"get": {"summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
  }
}`

type swaggerProvider struct{}

func (swaggerProvider) ReadDoc() string { return swaggerDoc }

func init() {
	swag.Register(swag.Name, swaggerProvider{})
}

// MountSwagger serves the swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler())
}
