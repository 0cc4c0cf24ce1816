package util

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPsuUUID(t *testing.T) {
	first, err := PsuUUID()
	assert.NoError(t, err)
	assert.Len(t, first, 36)

	second, err := PsuUUID()
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestBasicLogContext_SessionIDStable(t *testing.T) {
	context := &BasicLogContext{}
	assert.Equal(t, context.SessionID(), context.SessionID())
	assert.Equal(t, "bloomwatch-broker", context.AppName())
}

func TestError_PrefersSimpleMessage(t *testing.T) {
	err := Error{LogMsg: "long operator detail", SimpleMsg: "Something went wrong."}
	assert.Equal(t, "Something went wrong.", err.Error())

	bare := Error{LogMsg: "only the log message"}
	assert.Equal(t, "only the log message", bare.Error())
}

func TestHTTPErr(t *testing.T) {
	err := HTTPErr{Status: 404, Message: "404 Not Found"}
	assert.Equal(t, "404 Not Found", err.Error())
}

func TestHTTPError_WritesStatusAndBody(t *testing.T) {
	request := httptest.NewRequest("GET", "/tile", nil)
	response := httptest.NewRecorder()

	HTTPError(request, response, &BasicLogContext{}, "No HLS items found near that point/date. Try adjusting date.", 404)

	assert.Equal(t, 404, response.Code)
	assert.Contains(t, response.Body.String(), "No HLS items found")
}

func TestLogSimpleErr_ReturnsDisplayableError(t *testing.T) {
	err := LogSimpleErr(&BasicLogContext{}, "Catalog backend error.", assert.AnError)
	assert.EqualError(t, err, "Catalog backend error.")
}
