package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"go.yaml.in/yaml/v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.Len(), convey.ShouldBeGreaterThan, 0)
			})

			convey.Convey("And it should handle /api-docs route", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")
			})

			convey.Convey("And it should refuse other methods", func() {
				req := httptest.NewRequest("POST", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded OpenAPI document", t, func() {
		var doc struct {
			OpenAPI string                    `yaml:"openapi"`
			Paths   map[string]map[string]any `yaml:"paths"`
		}
		convey.So(yaml.Unmarshal(OpenAPI, &doc), convey.ShouldBeNil)

		convey.Convey("Then it documents every served route", func() {
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			routes := []struct{ method, path string }{
				{"get", "/healthz"},
				{"get", "/stats"},
				{"get", "/metrics"},
				{"get", "/api/players"},
				{"post", "/api/players"},
				{"get", "/api/players/{id}"},
				{"get", "/api/players/{id}/stats"},
				{"get", "/api/teams"},
				{"post", "/api/teams"},
				{"get", "/api/teams/{id}"},
				{"put", "/api/teams/{id}"},
				{"get", "/api/matches"},
				{"post", "/api/matches"},
				{"get", "/api/matches/{id}"},
				{"put", "/api/matches/{id}"},
				{"delete", "/api/matches/{id}"},
				{"get", "/api/matches/{id}/events"},
				{"post", "/api/matches/{id}/events"},
				{"delete", "/api/matches/{id}/events/last"},
				{"get", "/api/matches/{id}/scorecard"},
				{"get", "/api/matches/{id}/overs"},
				{"get", "/api/matches/{id}/runrate"},
				{"get", "/api/matches/{id}/worm"},
				{"get", "/api/matches/{id}/live"},
				{"get", "/api/leaderboard"},
				{"get", "/api/leaderboard/{playerID}"},
			}
			for _, r := range routes {
				ops, ok := doc.Paths[r.path]
				convey.So(ok, convey.ShouldBeTrue)
				_, ok = ops[r.method]
				convey.So(ok, convey.ShouldBeTrue)
			}
		})
	})
}

func TestSwaggerHandlerWithNilMux(t *testing.T) {
	convey.Convey("Given a nil mux", t, func() {
		ctx := context.Background()

		convey.Convey("When registering the swagger handler", func() {
			convey.Convey("Then it should panic", func() {
				convey.So(func() {
					Register(ctx, nil)
				}, convey.ShouldPanic)
			})
		})
	})
}
