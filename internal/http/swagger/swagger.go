package swagger

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const specPath = "/swagger/openapi.yml"

// Swagger UI грузится с unpkg; сервис отдаёт только страницу и описание API.
const uiHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
  <meta charset="UTF-8">
  <title>Fair Draw Service API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: '` + specPath + `', dom_id: '#ui', deepLinking: true });
  </script>
</body>
</html>`

// RegisterRoutes подключает Swagger UI и отдаёт OpenAPI-описание.
// Без описания /swagger/openapi.yml отвечает 204.
func RegisterRoutes(mux chi.Router, spec []byte) {
	mux.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(uiHTML))
	})
	mux.Get("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger", http.StatusMovedPermanently)
	})
	mux.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if len(spec) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec)
	})
}
