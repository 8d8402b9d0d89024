package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/leadforge/leadforge/pkg/ai/llm"
	"github.com/leadforge/leadforge/pkg/database"
	"github.com/leadforge/leadforge/pkg/models"
)

// testEnv wires an in-memory database and a bare echo instance for
// exercising handlers directly.
type testEnv struct {
	t  *testing.T
	db *gorm.DB
	e  *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenTest()
	require.NoError(t, err)
	return &testEnv{t: t, db: db, e: echo.New()}
}

// call invokes a handler with an optional JSON body and path parameters,
// returning the recorded response.
func (env *testEnv) call(method, target string, body interface{}, handler echo.HandlerFunc, params map[string]string) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	require.NoError(env.t, handler(c))
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder, out interface{}) {
	env.t.Helper()
	require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), out))
}

func (env *testEnv) seedLead(lead *models.Lead) *models.Lead {
	env.t.Helper()
	require.NoError(env.t, env.db.Create(lead).Error)
	return lead
}

func strptr(s string) *string { return &s }

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

// stubWriter is an EmailWriter whose output is fully scripted.
type stubWriter struct {
	err   error
	calls int
}

func (w *stubWriter) WriteEmail(_ context.Context, pc llm.PromptContext) (*llm.Email, error) {
	w.calls++
	if w.err != nil {
		return nil, w.err
	}
	return &llm.Email{
		Subject: fmt.Sprintf("About %s", pc.Lead.Name),
		Body:    fmt.Sprintf("Hi %s team", pc.Lead.Name),
	}, nil
}
