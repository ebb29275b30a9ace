package utils

import (
	game_constants "PlayFinder/constants/game"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Logger logs information about each request
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start time
		startTime := time.Now()

		// Process request
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(startTime),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Warn("request failed")
			return
		}
		entry.Info("request")
	}
}

// ErrorHandler turns panics into a 500 with the usual error body
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithField("panic", recovered).Error("handler panicked")
		c.AbortWithStatusJSON(500, gin.H{"error": "internal", "message": "internal server error"})
	})
}

func isTimeSlot(fl validator.FieldLevel) bool {
	_, ok := game_constants.TimeSlots[fl.Field().String()]
	return ok
}

func isWeekday(fl validator.FieldLevel) bool {
	day := fl.Field().String()
	for _, d := range game_constants.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// RegisterValidators adds the "timeslot" and "weekday" binding rules to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator is not go-playground/validator")
	}
	if err := v.RegisterValidation("timeslot", isTimeSlot); err != nil {
		return err
	}
	return v.RegisterValidation("weekday", isWeekday)
}
