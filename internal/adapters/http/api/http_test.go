package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/ballbyball/internal/adapters/http/api"
	service "github.com/okian/ballbyball/internal/app"
	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const (
	keyOne = "key-one"
	keyTwo = "key-two"
)

type client struct {
	base string
	key  string
}

func (c client) do(method, path string, body any, header ...string) (int, []byte) {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		So(err, ShouldBeNil)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	So(err, ShouldBeNil)
	if c.key != "" {
		req.Header.Set(api.APIKeyHeader, c.key)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	So(err, ShouldBeNil)
	return resp.StatusCode, out
}

func decodeInto[T any](raw []byte) T {
	var v T
	So(json.Unmarshal(raw, &v), ShouldBeNil)
	return v
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newTestServer(ctx context.Context) (*httptest.Server, *service.Service) {
	svc := service.New(
		service.WithWorkerCount(2),
		service.WithQueueSize(100),
		service.WithDedupeSize(100),
		service.WithOvers(2, 20),
	)
	So(svc.Start(ctx), ShouldBeNil)

	server := api.NewServer(svc, svc,
		api.WithAPIKeys(map[string]string{keyOne: "user-1", keyTwo: "user-2"}),
		api.WithMaxLeaderboardLimit(50),
	)
	mux := http.NewServeMux()
	server.Register(ctx, mux)
	return httptest.NewServer(api.CORS([]string{"https://score.example"}, mux)), svc
}

func TestServer_Public(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ctx := context.Background()
		ts, svc := newTestServer(ctx)
		defer ts.Close()
		defer svc.Stop()
		anon := client{base: ts.URL}

		Convey("Health reports ok without a key", func() {
			status, body := anon.do(http.MethodGet, "/healthz", nil)
			So(status, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Stats and metrics are public", func() {
			status, body := anon.do(http.MethodGet, "/stats", nil)
			So(status, ShouldEqual, http.StatusOK)
			So(decodeInto[map[string]any](body)["started"], ShouldEqual, true)

			status, _ = anon.do(http.MethodGet, "/metrics", nil)
			So(status, ShouldEqual, http.StatusOK)
		})

		Convey("Unknown routes are not found", func() {
			status, _ := anon.do(http.MethodGet, "/nope", nil)
			So(status, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_Auth(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ctx := context.Background()
		ts, svc := newTestServer(ctx)
		defer ts.Close()
		defer svc.Stop()

		Convey("Requests without a key are unauthorized", func() {
			status, body := client{base: ts.URL}.do(http.MethodGet, "/api/players", nil)
			So(status, ShouldEqual, http.StatusUnauthorized)
			So(decodeInto[apiError](body).Code, ShouldEqual, "unauthorized")
		})

		Convey("Requests with an unknown key are unauthorized", func() {
			status, _ := client{base: ts.URL, key: "guess"}.do(http.MethodGet, "/api/players", nil)
			So(status, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("The key may be passed as a query parameter", func() {
			status, body := client{base: ts.URL}.do(http.MethodGet, "/api/players?api_key="+keyOne, nil)
			So(status, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "[]")
		})
	})
}

func TestServer_CORS(t *testing.T) {
	Convey("Given a running API server with one allowed origin", t, func() {
		ctx := context.Background()
		ts, svc := newTestServer(ctx)
		defer ts.Close()
		defer svc.Stop()

		preflight := func(origin string) *http.Response {
			req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/matches", nil)
			So(err, ShouldBeNil)
			req.Header.Set("Origin", origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", api.APIKeyHeader)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()
			return resp
		}

		Convey("A preflight from the allowed origin is accepted", func() {
			resp := preflight("https://score.example")
			So(resp.Header.Get("Access-Control-Allow-Origin"), ShouldEqual, "https://score.example")
		})

		Convey("A preflight from another origin gets no allow header", func() {
			resp := preflight("https://evil.example")
			So(resp.Header.Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})
}

func TestServer_Scoring(t *testing.T) {
	Convey("Given a scorer with two teams and a match", t, func() {
		ctx := context.Background()
		ts, svc := newTestServer(ctx)
		defer ts.Close()
		defer svc.Stop()
		c := client{base: ts.URL, key: keyOne}

		player := func(name string) model.Player {
			status, body := c.do(http.MethodPost, "/api/players", map[string]string{"name": name})
			So(status, ShouldEqual, http.StatusCreated)
			return decodeInto[model.Player](body)
		}
		a, b, bowler, d := player("Ava"), player("Ben"), player("Cal"), player("Dee")

		team := func(name string, ids ...string) model.Team {
			status, body := c.do(http.MethodPost, "/api/teams", map[string]any{"name": name, "playerIds": ids})
			So(status, ShouldEqual, http.StatusCreated)
			return decodeInto[model.Team](body)
		}
		home, away := team("Home", a.ID, b.ID), team("Away", bowler.ID, d.ID)

		status, body := c.do(http.MethodPost, "/api/matches", map[string]any{
			"name":    "Friendly",
			"teamIds": []string{home.ID, away.ID},
			"curPlayers": []map[string]string{
				{"id": a.ID, "type": "batsman"},
				{"id": b.ID, "type": "batsman"},
				{"id": bowler.ID, "type": "bowler"},
			},
		})
		So(status, ShouldEqual, http.StatusCreated)
		match := decodeInto[model.Match](body)
		So(match.Overs, ShouldEqual, 2)
		So(match.OnStrike, ShouldEqual, a.ID)
		events := "/api/matches/" + match.ID + "/events"

		Convey("Listing returns only the caller's resources", func() {
			status, body := c.do(http.MethodGet, "/api/players", nil)
			So(status, ShouldEqual, http.StatusOK)
			So(decodeInto[[]model.Player](body), ShouldHaveLength, 4)

			other := client{base: ts.URL, key: keyTwo}
			status, _ = other.do(http.MethodGet, "/api/matches/"+match.ID, nil)
			So(status, ShouldEqual, http.StatusNotFound)
			status, body = other.do(http.MethodGet, "/api/teams", nil)
			So(status, ShouldEqual, http.StatusOK)
			So(decodeInto[[]model.Team](body), ShouldBeEmpty)
		})

		Convey("Malformed bodies are rejected", func() {
			status, body := c.do(http.MethodPost, "/api/players", `{"name":"Eve","age":3}`)
			So(status, ShouldEqual, http.StatusBadRequest)
			So(decodeInto[apiError](body).Code, ShouldEqual, "bad_request")

			status, _ = c.do(http.MethodPost, "/api/players", map[string]string{})
			So(status, ShouldEqual, http.StatusBadRequest)

			status, _ = c.do(http.MethodPost, "/api/matches", map[string]any{
				"name": "Solo", "teamIds": []string{home.ID, home.ID},
			})
			So(status, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Teams can be renamed", func() {
			status, body := c.do(http.MethodPut, "/api/teams/"+home.ID, map[string]string{"name": "Hosts"})
			So(status, ShouldEqual, http.StatusOK)
			So(decodeInto[model.Team](body).Name, ShouldEqual, "Hosts")
		})

		Convey("When balls are appended", func() {
			status, body := c.do(http.MethodPost, events, []map[string]string{{"type": "1"}, {"type": "4"}})
			So(status, ShouldEqual, http.StatusCreated)
			res := decodeInto[service.AppendResult](body)
			So(res.Events, ShouldHaveLength, 2)
			So(res.Events[0].BatsmanID, ShouldEqual, a.ID)
			So(res.Events[1].BatsmanID, ShouldEqual, b.ID)
			So(res.Match.OnStrike, ShouldEqual, b.ID)

			Convey("Then the scorecard totals them", func() {
				status, body := c.do(http.MethodGet, "/api/matches/"+match.ID+"/scorecard", nil)
				So(status, ShouldEqual, http.StatusOK)
				sc := decodeInto[map[string]any](body)
				first := sc["innings"].([]any)[0].(map[string]any)
				So(first["runs"], ShouldEqual, 5)
				So(first["overs"], ShouldEqual, "0.2")
				So(sc["thisOver"], ShouldResemble, []any{"1", "4"})
			})

			Convey("And an idempotent resubmission is reported once", func() {
				status, _ := c.do(http.MethodPost, events, map[string]string{"type": "6"},
					api.IdempotencyKeyHeader, "ball-3")
				So(status, ShouldEqual, http.StatusCreated)

				status, body := c.do(http.MethodPost, events, map[string]string{"type": "6"},
					api.IdempotencyKeyHeader, "ball-3")
				So(status, ShouldEqual, http.StatusOK)
				So(decodeInto[service.AppendResult](body).Duplicate, ShouldBeTrue)

				status, body = c.do(http.MethodGet, events, nil)
				So(status, ShouldEqual, http.StatusOK)
				So(decodeInto[[]model.BallEvent](body), ShouldHaveLength, 3)
			})

			Convey("And an idempotency key is scoped to its match", func() {
				status, body := c.do(http.MethodPost, "/api/matches", map[string]any{
					"name":    "Rematch",
					"teamIds": []string{home.ID, away.ID},
					"curPlayers": []map[string]string{
						{"id": a.ID, "type": "batsman"},
						{"id": d.ID, "type": "bowler"},
					},
				})
				So(status, ShouldEqual, http.StatusCreated)
				rematch := "/api/matches/" + decodeInto[model.Match](body).ID + "/events"

				for _, path := range []string{events, rematch} {
					status, body := c.do(http.MethodPost, path, map[string]string{"type": "2"},
						api.IdempotencyKeyHeader, "ball-9")
					So(status, ShouldEqual, http.StatusCreated)
					So(decodeInto[service.AppendResult](body).Duplicate, ShouldBeFalse)
				}
				status, body = c.do(http.MethodGet, rematch, nil)
				So(status, ShouldEqual, http.StatusOK)
				So(decodeInto[[]model.BallEvent](body), ShouldHaveLength, 1)
			})

			Convey("And a run out names the batsman who is out", func() {
				status, body := c.do(http.MethodPost, events, map[string]string{"type": "-10", "dismissedId": a.ID})
				So(status, ShouldEqual, http.StatusCreated)
				So(decodeInto[service.AppendResult](body).Events[0].DismissedID, ShouldEqual, a.ID)

				status, _ = c.do(http.MethodPost, events, map[string]string{"type": "1", "dismissedId": a.ID})
				So(status, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And an unknown code is rejected", func() {
				status, body := c.do(http.MethodPost, events, map[string]string{"type": "-z"})
				So(status, ShouldEqual, http.StatusBadRequest)
				So(decodeInto[apiError](body).Code, ShouldEqual, "invalid_event_kind")
			})

			Convey("And an empty batch is rejected", func() {
				status, _ := c.do(http.MethodPost, events, `[]`)
				So(status, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And undo removes the last ball", func() {
				status, body := c.do(http.MethodDelete, events+"/last", nil)
				So(status, ShouldEqual, http.StatusOK)
				undone := decodeInto[struct {
					Event model.BallEvent `json:"event"`
					Match model.Match     `json:"match"`
				}](body)
				So(undone.Event.Type, ShouldEqual, "4")
				So(undone.Match.OnStrike, ShouldEqual, b.ID)

				status, body = c.do(http.MethodGet, events, nil)
				So(status, ShouldEqual, http.StatusOK)
				So(decodeInto[[]model.BallEvent](body), ShouldHaveLength, 1)
			})

			Convey("And the per-over views follow the innings query", func() {
				status, body := c.do(http.MethodGet, "/api/matches/"+match.ID+"/overs", nil)
				So(status, ShouldEqual, http.StatusOK)
				overs := decodeInto[[]map[string]any](body)
				So(overs, ShouldHaveLength, 1)
				So(overs[0]["runs"], ShouldEqual, 5)

				status, body = c.do(http.MethodGet, "/api/matches/"+match.ID+"/overs?innings=1", nil)
				So(status, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, "[]")

				status, _ = c.do(http.MethodGet, "/api/matches/"+match.ID+"/runrate?innings=two", nil)
				So(status, ShouldEqual, http.StatusBadRequest)
				status, _ = c.do(http.MethodGet, "/api/matches/"+match.ID+"/runrate?innings=2", nil)
				So(status, ShouldEqual, http.StatusBadRequest)

				status, body = c.do(http.MethodGet, "/api/matches/"+match.ID+"/worm", nil)
				So(status, ShouldEqual, http.StatusOK)
				worm := decodeInto[[2][]map[string]int](body)
				So(worm[0][len(worm[0])-1], ShouldResemble, map[string]int{"ball": 2, "runs": 5})
			})

			Convey("And the leaderboard ranks the batsmen", func() {
				deadline := time.Now().Add(3 * time.Second)
				var entries []api.Entry
				for time.Now().Before(deadline) {
					status, body := c.do(http.MethodGet, "/api/leaderboard?limit=2", nil)
					So(status, ShouldEqual, http.StatusOK)
					entries = decodeInto[[]api.Entry](body)
					if len(entries) > 0 && entries[0].PlayerID == b.ID && entries[0].Runs == 4 {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(entries, ShouldHaveLength, 2)
				So(entries[0].PlayerID, ShouldEqual, b.ID)
				So(entries[0].Rank, ShouldEqual, 1)

				status, body := c.do(http.MethodGet, "/api/leaderboard/"+b.ID, nil)
				So(status, ShouldEqual, http.StatusOK)
				So(decodeInto[api.Entry](body).Runs, ShouldEqual, 4)

				status, body = c.do(http.MethodGet, "/api/players/"+b.ID+"/stats", nil)
				So(status, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, `"highestScore":4`)
			})
		})

		Convey("Leaderboard limits are checked", func() {
			status, _ := c.do(http.MethodGet, "/api/leaderboard?limit=0", nil)
			So(status, ShouldEqual, http.StatusBadRequest)
			status, body := c.do(http.MethodGet, "/api/leaderboard?limit=51", nil)
			So(status, ShouldEqual, http.StatusBadRequest)
			So(decodeInto[apiError](body).Code, ShouldEqual, "limit_exceeded")
			status, _ = c.do(http.MethodGet, "/api/leaderboard/nobody", nil)
			So(status, ShouldEqual, http.StatusNotFound)
		})

		Convey("Undo on an empty match is not found", func() {
			status, _ := c.do(http.MethodDelete, events+"/last", nil)
			So(status, ShouldEqual, http.StatusNotFound)
		})

		Convey("Scoring without a bowler conflicts", func() {
			status, _ := c.do(http.MethodPut, "/api/matches/"+match.ID, map[string]any{
				"curPlayers": []map[string]string{{"id": a.ID, "type": "batsman"}, {"id": b.ID, "type": "batsman"}},
			})
			So(status, ShouldEqual, http.StatusOK)
			status, body := c.do(http.MethodPost, events, map[string]string{"type": "1"})
			So(status, ShouldEqual, http.StatusConflict)
			So(decodeInto[apiError](body).Code, ShouldEqual, "players_not_selected")
		})

		Convey("An ended match accepts no balls", func() {
			status, _ := c.do(http.MethodPut, "/api/matches/"+match.ID, map[string]bool{"hasEnded": true})
			So(status, ShouldEqual, http.StatusOK)
			status, body := c.do(http.MethodPost, events, map[string]string{"type": "1"})
			So(status, ShouldEqual, http.StatusConflict)
			So(decodeInto[apiError](body).Code, ShouldEqual, "match_ended")
		})

		Convey("A deleted match is gone", func() {
			status, _ := c.do(http.MethodDelete, "/api/matches/"+match.ID, nil)
			So(status, ShouldEqual, http.StatusNoContent)
			status, _ = c.do(http.MethodGet, "/api/matches/"+match.ID, nil)
			So(status, ShouldEqual, http.StatusNotFound)
			status, _ = c.do(http.MethodGet, "/api/matches/"+match.ID+"/scorecard", nil)
			So(status, ShouldEqual, http.StatusNotFound)
		})
	})
}

// brokenDeps fails the calls it overrides; the rest are never reached.
type brokenDeps struct {
	api.Dependencies
}

func (brokenDeps) Ping(context.Context) error { return errors.New("store down") }

func (brokenDeps) ListPlayers(context.Context, string, []string) ([]model.Player, error) {
	return nil, errors.New("connection reset by peer")
}

type staticStats map[string]interface{}

func (s staticStats) GetStats() map[string]interface{} { return s }

func TestServer_Failures(t *testing.T) {
	Convey("Given a server whose dependencies fail", t, func() {
		ctx := context.Background()
		server := api.NewServer(brokenDeps{}, staticStats{"started": false},
			api.WithAPIKeys(map[string]string{keyOne: "user-1"}))
		mux := http.NewServeMux()
		server.Register(ctx, mux)

		Convey("Health reports unavailable", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "store down")
		})

		Convey("Internal errors hide their cause", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/players", nil)
			req.Header.Set(api.APIKeyHeader, keyOne)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldNotContainSubstring, "connection reset")
			So(w.Body.String(), ShouldContainSubstring, "internal_error")
		})

		Convey("The live route is absent without a hub", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/matches/m/live", nil)
			req.Header.Set(api.APIKeyHeader, keyOne)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
