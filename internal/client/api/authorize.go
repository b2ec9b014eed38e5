package api

import (
	"net/http"

	"simuorg/internal/common"
)

// authorize is the single place authentication proof is attached to an
// outbound request: with a token it sets the bearer Authorization header,
// without one it leaves the request untouched. It mutates nothing but the
// given request, so it can be tested in isolation.
func authorize(req *http.Request, token string) *http.Request {
	if token == "" {
		return req
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return req
}
