package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yigit/campusprint/internal/app/models/dto"
)

// maxJSONBody caps JSON request bodies
const maxJSONBody = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// BindJSON decodes the body into obj rejecting unknown fields, then runs the
// binding tags through gin's validator
func BindJSON(c *gin.Context, obj interface{}) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxJSONBody))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(obj); err != nil {
		return err
	}

	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

// AbortWithBindError writes the 400 response for a failed bind
func AbortWithBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
