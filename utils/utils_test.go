package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotForm struct {
	Slot string `json:"slot" binding:"required,timeslot"`
	Day  string `json:"day" binding:"omitempty,weekday"`
}

func TestRegisterValidators(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var f slotForm
		if err := c.ShouldBindJSON(&f); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	cases := map[string]int{
		`{"slot":"manha"}`:             http.StatusOK,
		`{"slot":"noite","day":"sab"}`: http.StatusOK,
		`{"slot":"madrugada"}`:         http.StatusBadRequest,
		`{"slot":"tarde","day":"sun"}`: http.StatusBadRequest,
	}
	for body, want := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		assert.Equal(t, want, w.Code, body)
	}
}

func TestLoggerAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(Logger(logger), ErrorHandler(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "/ok", hook.LastEntry().Data["path"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var levels []logrus.Level
	for _, e := range hook.AllEntries() {
		levels = append(levels, e.Level)
	}
	assert.Contains(t, levels, logrus.ErrorLevel)
}
