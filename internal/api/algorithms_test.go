package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/pkg/schema"
)

func TestSort(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	w := env.do(t, http.MethodPost, "/api/algorithm/sort", map[string]any{
		"algorithm": "quick",
		"array":     []int{5, 2, 9, 1},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Algorithm  string           `json:"algorithm"`
		Steps      []map[string]any `json:"steps"`
		FinalArray []int            `json:"finalArray"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []int{1, 2, 5, 9}, res.FinalArray)
	assert.NotEmpty(t, res.Steps)
}

func TestSort_UnknownAlgorithm(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	w := env.do(t, http.MethodPost, "/api/algorithm/sort", map[string]any{
		"algorithm": "bogo",
		"array":     []int{2, 1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSort_EmptyBody(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	w := env.do(t, http.MethodPost, "/api/algorithm/sort", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, schema.ErrCodeValidation, errorCode(t, w))
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	w := env.do(t, http.MethodPost, "/api/algorithm/search", map[string]any{
		"algorithm": "binary",
		"array":     []int{1, 3, 5, 7, 9},
		"target":    7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, float64(3), body["index"])
}

func TestSearch_MissingTarget(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	w := env.do(t, http.MethodPost, "/api/algorithm/search", map[string]any{
		"algorithm": "linear",
		"array":     []int{1, 2},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaps(t *testing.T) {
	env := newTestEnv(t, envConfig{})

	w := env.do(t, http.MethodGet, "/api/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["maps"], "gauteng")

	w = env.do(t, http.MethodGet, "/api/map/gauteng", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "gauteng", body["name"])
	assert.NotEmpty(t, body["nodes"])

	w = env.do(t, http.MethodGet, "/api/map/atlantis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShortestPath(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	for _, algo := range []string{"dijkstra", "astar", "bfs"} {
		t.Run(algo, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/map/shortest-path", map[string]any{
				"algorithm": algo,
				"province":  "gauteng",
				"start":     "johannesburg",
				"end":       "pretoria",
			})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var res struct {
				Path     []string `json:"path"`
				Distance float64  `json:"distance"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			require.NotEmpty(t, res.Path)
			assert.Equal(t, "johannesburg", res.Path[0])
			assert.Equal(t, "pretoria", res.Path[len(res.Path)-1])
			assert.Greater(t, res.Distance, 0.0)
		})
	}
}

func TestShortestPath_NeedsGraphSource(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	w := env.do(t, http.MethodPost, "/api/map/shortest-path", map[string]any{
		"algorithm": "dijkstra",
		"start":     "a",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTraverse_Graph(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	w := env.do(t, http.MethodPost, "/api/algorithm/traverse", map[string]any{
		"algorithm": "bfs",
		"structure": "graph",
		"graph": map[string]any{
			"nodes": []map[string]any{{"id": "a"}, {"id": "b"}, {"id": "c"}},
			"edges": []map[string]any{
				{"source": "a", "target": "b", "weight": 1},
				{"source": "b", "target": "c", "weight": 1},
			},
		},
		"start": "a",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRandomGraph(t *testing.T) {
	env := newTestEnv(t, envConfig{})

	w := env.do(t, http.MethodGet, "/api/graph/random?nodes=6&edges=8&seed=42", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := w.Body.String()

	w = env.do(t, http.MethodGet, "/api/graph/random?nodes=6&edges=8&seed=42", nil)
	assert.Equal(t, first, w.Body.String(), "same seed, same graph")

	w = env.do(t, http.MethodGet, "/api/graph/random?nodes=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateGraph(t *testing.T) {
	env := newTestEnv(t, envConfig{})

	w := env.do(t, http.MethodPost, "/api/graph/create", map[string]any{
		"nodes": []map[string]any{{"id": "a"}, {"id": "b"}},
		"edges": []map[string]any{{"source": "a", "target": "b", "weight": 2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/graph/create", map[string]any{
		"nodes": []map[string]any{{"id": "a"}},
		"edges": []map[string]any{{"source": "a", "target": "ghost", "weight": 2}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
