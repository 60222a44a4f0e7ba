package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", repositories.ErrKeyNotFound
	}
	return v, nil
}

func newTestModel(t *testing.T, shape loginform.Shape, handler http.HandlerFunc) (Model, *memStore, *atomic.Int32) {
	t.Helper()

	calls := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store := &memStore{data: map[string]string{}}
	router := NewRouter()
	form := loginform.New(loginform.Config{Endpoint: srv.URL, Shape: shape}, srv.Client(), store, router)
	return New(context.Background(), form, router, store, ""), store, calls
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

// drain runs cmd and every command it batches, feeding results back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		if _, ok := msg.(submitDoneMsg); !ok {
			if _, ok := msg.(sessionMsg); !ok {
				continue
			}
		}
		next, more := m.Update(msg)
		m = drain(t, next.(Model), more)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func fillCredentials(m Model, email, password string) Model {
	m = typeText(m, email)
	m, _ = press(m, tea.KeyTab)
	return typeText(m, password)
}

func TestModel_LoginStoresTokenAndShowsDashboard(t *testing.T) {
	m, store, calls := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc123"}`))
	})

	m = fillCredentials(m, "a@b.c", "pw")
	m, cmd := press(m, tea.KeyEnter)

	require.NotNil(t, cmd)
	assert.True(t, m.submitting())
	assert.Contains(t, m.View(), "Signing in...")

	m = drain(t, m, cmd)

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, m.submitting())
	assert.True(t, m.LoggedIn())
	assert.Equal(t, "abc123", store.data[loginform.KeyToken])
	assert.Contains(t, m.View(), "Inventory Dashboard")
	assert.Contains(t, m.View(), "abc123")
	assert.Empty(t, m.password.Value())
}

func TestModel_LoginStoresUser(t *testing.T) {
	m, store, _ := newTestModel(t, loginform.ShapeUser, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"user_id":"6f1c2a10-0000-4000-8000-000000000001","username":"maria","email":"a@b.c","role":"admin"}}`))
	})

	m = fillCredentials(m, "a@b.c", "pw")
	m, cmd := press(m, tea.KeyEnter)
	m = drain(t, m, cmd)

	require.True(t, m.LoggedIn())
	assert.Contains(t, store.data[loginform.KeyUser], `"username":"maria"`)
	require.NotNil(t, m.user)
	assert.Equal(t, "maria", m.user.Username)
	assert.Contains(t, m.View(), "Welcome, maria")
}

func TestModel_RejectedShowsMessage(t *testing.T) {
	m, store, _ := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad credentials"}`))
	})

	m = fillCredentials(m, "a@b.c", "wrong")
	m, cmd := press(m, tea.KeyEnter)
	m = drain(t, m, cmd)

	assert.False(t, m.LoggedIn())
	assert.Equal(t, "bad credentials", m.Err())
	assert.Empty(t, store.data)
	assert.Contains(t, m.View(), "bad credentials")
}

func TestModel_MissingPasswordDoesNotSubmit(t *testing.T) {
	m, _, calls := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc123"}`))
	})

	m = typeText(m, "a@b.c")
	m, _ = press(m, tea.KeyTab)
	m, cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, msgMissingCredentials, m.Err())
	assert.Equal(t, focusPassword, m.focus)
}

func TestModel_EnterOnEmailMovesFocus(t *testing.T) {
	m, _, calls := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {})

	m = typeText(m, "a@b.c")
	m, cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Equal(t, focusPassword, m.focus)
	assert.Equal(t, int32(0), calls.Load())
}

func TestModel_InputIgnoredWhileSubmitting(t *testing.T) {
	m, _, _ := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc123"}`))
	})

	m = fillCredentials(m, "a@b.c", "pw")
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)

	m = typeText(m, "extra")
	m, second := press(m, tea.KeyEnter)

	assert.Nil(t, second)
	assert.Equal(t, "pw", m.password.Value())
}

func TestModel_ErrorClearedOnResubmit(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusUnauthorized)
	m, _, _ := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		w.Write([]byte(`{"message":"bad credentials","token":"abc123"}`))
	})

	m = fillCredentials(m, "a@b.c", "pw")
	m, cmd := press(m, tea.KeyEnter)
	m = drain(t, m, cmd)
	require.Equal(t, "bad credentials", m.Err())

	status.Store(http.StatusOK)
	m, cmd = press(m, tea.KeyEnter)
	assert.Empty(t, m.Err())
	m = drain(t, m, cmd)
	assert.True(t, m.LoggedIn())
}

func TestModel_FocusCycles(t *testing.T) {
	m, _, _ := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {})

	assert.Equal(t, focusEmail, m.focus)
	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, focusPassword, m.focus)
	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, focusButton, m.focus)
	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, focusEmail, m.focus)
	m, _ = press(m, tea.KeyShiftTab)
	assert.Equal(t, focusButton, m.focus)
}

func TestModel_ViewContent(t *testing.T) {
	m, _, _ := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {})

	view := m.View()
	assert.Contains(t, view, "Flor de Grace School, Inc")
	assert.Contains(t, view, "INVENTORY MANAGEMENT SYSTEM")
	assert.Contains(t, view, "Login")
	assert.Contains(t, view, "Forgot Password?")

	m = fillCredentials(m, "a@b.c", "secret")
	assert.NotContains(t, m.View(), "secret")
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t, loginform.ShapeToken, func(w http.ResponseWriter, r *http.Request) {})

	m, cmd := press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestRouter(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, RouteLogin, r.Current())
	require.NoError(t, r.Navigate(context.Background(), "/dashboard"))
	assert.Equal(t, "/dashboard", r.Current())
}
