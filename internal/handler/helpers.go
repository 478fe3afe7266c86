package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/api"
	"storefront/clientcore/internal/store"
	"storefront/clientcore/pkg/response"
)

var errInvalidID = errors.New("invalid id")

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// writeError maps a store or API failure onto the envelope.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	if errors.Is(err, store.ErrEmptyCart) {
		response.BadRequest(c, err.Error())
		return
	}
	if errors.Is(err, store.ErrSessionEnded) {
		response.Unauthorized(c, err.Error())
		return
	}
	apiErr, ok := api.AsError(err)
	if !ok {
		response.InternalError(c, err.Error())
		return
	}
	switch apiErr.Kind {
	case api.KindValidation:
		response.Invalid(c, apiErr.Message, apiErr.Fields)
	case api.KindConflict:
		c.JSON(http.StatusConflict, response.APIResponse{Code: 409, Message: apiErr.Message, Errors: apiErr.Fields})
	case api.KindSession:
		response.Unauthorized(c, apiErr.Message)
	case api.KindNetwork:
		response.BadGateway(c, apiErr.Message)
	default:
		if apiErr.Status == http.StatusNotFound {
			response.NotFound(c, apiErr.Message)
			return
		}
		response.InternalError(c, apiErr.Message)
	}
}
