package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubarena/matchup/internal/database/testutil"
	"github.com/clubarena/matchup/internal/middleware"
	"github.com/clubarena/matchup/internal/models"
	"github.com/clubarena/matchup/internal/permissions"
	"github.com/clubarena/matchup/internal/services"
)

type challengeAPI struct {
	router *gin.Engine
	db     *gorm.DB

	sport       models.Sport
	home, away  models.Team
	homeCaptain models.User
	awayCaptain models.User
}

// newChallengeAPI wires the challenge endpoints behind a header-based
// identity shim standing in for the JWT middleware.
func newChallengeAPI(t *testing.T) *challengeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	a := &challengeAPI{db: db}
	a.sport = models.Sport{Name: "football"}
	require.NoError(t, db.Create(&a.sport).Error)
	a.home = models.Team{Name: "Riverside FC", SportID: a.sport.ID}
	require.NoError(t, db.Create(&a.home).Error)
	a.away = models.Team{Name: "Harbor United", SportID: a.sport.ID}
	require.NoError(t, db.Create(&a.away).Error)

	a.homeCaptain = models.User{Username: "home-captain", Email: "home@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&a.homeCaptain).Error)
	a.awayCaptain = models.User{Username: "away-captain", Email: "away@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&a.awayCaptain).Error)

	require.NoError(t, db.Create(&models.TeamMember{TeamID: a.home.ID, UserID: a.homeCaptain.ID, Role: models.TeamRoleCaptain}).Error)
	require.NoError(t, db.Create(&models.TeamMember{TeamID: a.away.ID, UserID: a.awayCaptain.ID, Role: models.TeamRoleCaptain}).Error)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)
	service, err := services.NewChallengeService(db, checker, nil, nil, 7)
	require.NoError(t, err)
	queries, err := services.NewChallengeQueryService(db, checker, 20, 2)
	require.NoError(t, err)
	handler, err := NewChallengeHandler(service, queries)
	require.NoError(t, err)

	router := gin.New()
	identity := func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(middleware.CtxUserIDKey, user)
		}
	}

	api := router.Group("/api", identity)
	api.POST("/challenges", handler.Create)
	api.GET("/challenges/:id", handler.Get)
	api.POST("/challenges/:id/accept", handler.Accept)
	api.POST("/challenges/:id/reject", handler.Reject)
	api.POST("/challenges/:id/counter", handler.Counter)
	api.POST("/challenges/:id/accept-counter", handler.AcceptCounter)
	api.POST("/challenges/:id/counter-again", handler.CounterAgain)
	api.POST("/challenges/:id/cancel", handler.Cancel)
	api.GET("/teams/:teamId/challenges/sent", handler.ListSent)
	api.GET("/teams/:teamId/challenges/received", handler.ListReceived)

	a.router = router
	return a
}

func (a *challengeAPI) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(data)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *challengeAPI) createChallenge(t *testing.T) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/challenges", a.homeCaptain.ID, gin.H{
		"challenger_team_id": a.home.ID,
		"challenged_team_id": a.away.ID,
		"proposed_location":  "Riverside Stadium",
		"proposed_time":      "14:00",
		"duration_minutes":   90,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.ID)
	return envelope.Data.ID
}

func TestChallengeEndpointsLifecycle(t *testing.T) {
	a := newChallengeAPI(t)

	id := a.createChallenge(t)

	w := a.do(t, http.MethodPost, "/api/challenges/"+id+"/counter", a.awayCaptain.ID, gin.H{
		"location":         "Harbor Arena",
		"duration_minutes": 60,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"scheduling"`)
	assert.Contains(t, w.Body.String(), `"has_counter_proposal":true`)

	w = a.do(t, http.MethodPost, "/api/challenges/"+id+"/accept-counter", a.homeCaptain.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"scheduled"`)
}

func TestChallengeEndpointsValidationErrors(t *testing.T) {
	a := newChallengeAPI(t)

	w := a.do(t, http.MethodPost, "/api/challenges", a.homeCaptain.ID, gin.H{
		"challenger_team_id": a.home.ID,
		"challenged_team_id": a.away.ID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error.Fields, "location")
}

func TestChallengeEndpointsTerminalConflict(t *testing.T) {
	a := newChallengeAPI(t)

	id := a.createChallenge(t)

	w := a.do(t, http.MethodPost, "/api/challenges/"+id+"/cancel", a.homeCaptain.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/challenges/"+id+"/accept", a.awayCaptain.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestChallengeEndpointsRequireIdentity(t *testing.T) {
	a := newChallengeAPI(t)

	w := a.do(t, http.MethodPost, "/api/challenges", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChallengeEndpointsListSent(t *testing.T) {
	a := newChallengeAPI(t)

	id := a.createChallenge(t)

	w := a.do(t, http.MethodGet, "/api/teams/"+a.home.ID+"/challenges/sent", a.homeCaptain.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var envelope struct {
		Data []struct {
			ID             string `json:"id"`
			DaysRemaining  int    `json:"days_remaining"`
			IsExpiringSoon bool   `json:"is_expiring_soon"`
		} `json:"data"`
		Meta struct {
			PageSize int `json:"page_size"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, id, envelope.Data[0].ID)
	assert.Equal(t, 7, envelope.Data[0].DaysRemaining)
	assert.False(t, envelope.Data[0].IsExpiringSoon)
	assert.Equal(t, 1, envelope.Meta.PageSize)

	// The opponent's outbox does not contain it.
	w = a.do(t, http.MethodGet, "/api/teams/"+a.away.ID+"/challenges/sent", a.awayCaptain.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var other struct {
		Data []any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &other))
	assert.Empty(t, other.Data)
}
