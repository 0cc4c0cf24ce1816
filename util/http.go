package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UserAgent identifies this application to remote services
const UserAgent = "bloomwatch/1.0"

const defaultHTTPTimeout = 30 * time.Second

var sharedClient = &http.Client{Timeout: defaultHTTPTimeout}

// HTTPClient returns the shared HTTP client used for remote catalog and
// asset requests
func HTTPClient() *http.Client {
	return sharedClient
}

// HTTPClientWithTimeout returns a client with a nonstandard timeout, for
// calls that need shorter or longer deadlines than the default
func HTTPClientWithTimeout(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// ReqByObjJSON performs an HTTP request with an optional JSON input object,
// unmarshaling the response body into the output object. It returns the
// HTTP status code along with any error.
func ReqByObjJSON(method, inputURL, auth string, input, output interface{}) (int, error) {
	var body io.Reader
	if input != nil {
		requestBody, err := json.Marshal(input)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request object: %v", err)
		}
		body = bytes.NewReader(requestBody)
	}

	request, err := http.NewRequest(method, inputURL, body)
	if err != nil {
		return 0, err
	}
	request.Header.Set("User-Agent", UserAgent)
	request.Header.Set("Accept", "application/json")
	if input != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		request.Header.Set("Authorization", auth)
	}

	response, err := sharedClient.Do(request)
	if err != nil {
		return 0, err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, err
	}
	if response.StatusCode >= 400 {
		return response.StatusCode, HTTPErr{Status: response.StatusCode, Message: response.Status}
	}
	if output != nil {
		if err = json.Unmarshal(responseBody, output); err != nil {
			return response.StatusCode, Error{
				LogMsg:     "Failed to unmarshal JSON response: " + err.Error(),
				SimpleMsg:  "Remote service returned an unexpected response.",
				Response:   string(responseBody),
				URL:        inputURL,
				HTTPStatus: response.StatusCode,
			}
		}
	}
	return response.StatusCode, nil
}
