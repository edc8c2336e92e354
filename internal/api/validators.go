package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/meetscribe/meetscribe/internal/meeting"
	"github.com/meetscribe/meetscribe/internal/user"
)

// Custom binding tags for domain enums.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("meetingstatus", func(fl validator.FieldLevel) bool {
		return meeting.ValidStatus(fl.Field().String())
	})
	_ = v.RegisterValidation("usageservice", func(fl validator.FieldLevel) bool {
		return user.ValidService(fl.Field().String())
	})
}
