package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validationf("missing field")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Conflictf("duplicate")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthenticatedf("no token")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbiddenf("not yours")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundf("gone")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("db exploded")))
}

func TestHTTPStatus_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFoundf("post not found"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, NotFound, KindOf(err))
}

func TestClientMessage_MasksInternal(t *testing.T) {
	err := Wrap(errors.New("pq: connection refused"), "failed to load post")
	assert.Equal(t, "server error", ClientMessage(err))
	assert.Contains(t, err.Error(), "connection refused")

	assert.Equal(t, "server error", ClientMessage(errors.New("raw failure")))
	assert.Equal(t, "post not found", ClientMessage(NotFoundf("post not found")))
}
