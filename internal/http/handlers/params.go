package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/typecast-backend/internal/http/response"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/ctxutil"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
)

func dbcFrom(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// uuidParam parses the named path parameter, writing a 400 when it is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("%s must be a uuid", name))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// requireIdentity returns the verified caller identity. Routes behind
// RequireAuth always have one; the check guards misconfigured routing.
func requireIdentity(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.Identity == "" {
		response.RespondError(c, http.StatusUnauthorized, string(apierr.CodeUnauthorized), fmt.Errorf("sign in required"))
		return nil, false
	}
	return rd, true
}
