package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fixedProber struct {
	online  bool
	players int
}

func (p fixedProber) Probe() (bool, int) {
	return p.online, p.players
}

func TestRefresh(t *testing.T) {
	m := NewStatusModule(fixedProber{online: true, players: 42})

	s := m.Current()
	assert.True(t, s.Online)
	assert.Equal(t, 42, s.Players)
	assert.False(t, s.CheckedAt.IsZero())
}

func TestRefresh_Offline(t *testing.T) {
	m := NewStatusModule(fixedProber{online: false})

	s := m.Current()
	assert.False(t, s.Online)
	assert.Equal(t, 0, s.Players)
}

func TestStatusAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("test-session", store))

	m := NewStatusModule(fixedProber{online: true, players: 7})
	m.RegisterRoutes(router)

	req, _ := http.NewRequest("GET", "/api/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var s Status
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.True(t, s.Online)
	assert.Equal(t, 7, s.Players)
}

func TestDefaultProber(t *testing.T) {
	m := NewStatusModule(nil)

	s := m.Current()
	if s.Online {
		assert.GreaterOrEqual(t, s.Players, 0)
		assert.Less(t, s.Players, 100)
	} else {
		assert.Equal(t, 0, s.Players)
	}
}
