package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/pkg/schema"
)

func TestJobs_Disabled(t *testing.T) {
	env := newTestEnv(t, envConfig{})
	w := env.do(t, http.MethodGet, "/api/scheduler", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobs_Lifecycle(t *testing.T) {
	env := newTestEnv(t, envConfig{scheduler: true})
	env.do(t, http.MethodPost, "/api/stack/push?filename=a.txt", nil)

	w := env.do(t, http.MethodPost, "/api/scheduler", map[string]any{
		"name":       "nightly",
		"cron":       "0 3 * * *",
		"structures": []string{"stack"},
		"enabled":    true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decode(t, w)
	id := job["id"].(string)
	require.NotEmpty(t, id)
	assert.NotNil(t, job["next_run_at"])

	w = env.do(t, http.MethodGet, "/api/scheduler", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["jobs"], 1)

	w = env.do(t, http.MethodPost, "/api/scheduler/"+id+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st, err := env.svc.State(schema.StructureStack)
	require.NoError(t, err)
	assert.True(t, st.IsEmpty)

	w = env.do(t, http.MethodPut, "/api/scheduler/"+id, map[string]any{"enabled": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.sched.Jobs()[0].Enabled)

	w = env.do(t, http.MethodDelete, "/api/scheduler/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.sched.Jobs())

	w = env.do(t, http.MethodDelete, "/api/scheduler/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobs_Validation(t *testing.T) {
	env := newTestEnv(t, envConfig{scheduler: true})

	w := env.do(t, http.MethodPost, "/api/scheduler", map[string]any{"cron": "not a cron"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/scheduler", map[string]any{
		"cron":       "@hourly",
		"structures": []string{"heap"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/scheduler/missing", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
