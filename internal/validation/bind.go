package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate binds the JSON body into out and runs validation. On
// failure it writes failStatus with the error details and returns the error
// for the handler to short-circuit.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate, failStatus int) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(failStatus, gin.H{
			"status": "error",
			"error":  "invalid_request_body",
			"msg":    err.Error(),
		})
		return err
	}
	return check(c, out, v, failStatus)
}

// BindQueryAndValidate is BindAndValidate for query parameters.
func BindQueryAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate, failStatus int) error {
	if err := c.ShouldBindQuery(out); err != nil {
		c.JSON(failStatus, gin.H{"status": "error", "error": "invalid_query", "msg": err.Error()})
		return err
	}
	return check(c, out, v, failStatus)
}

// BindURIAndValidate binds path parameters; failures are answered with 400.
func BindURIAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindUri(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid_path", "msg": err.Error()})
		return err
	}
	return check(c, out, v, http.StatusBadRequest)
}

func check(c *gin.Context, out interface{}, v *validatorv10.Validate, failStatus int) error {
	if err := v.Struct(out); err != nil {
		c.JSON(failStatus, gin.H{
			"status": "error",
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.Namespace()] = fe.Error()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
