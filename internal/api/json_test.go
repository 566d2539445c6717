package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/kramify/internal/apperr"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("%w: %q", apperr.ErrUnknownGenerator, "hugo"), http.StatusBadRequest, `unknown generator: "hugo"`},
		{fmt.Errorf("ledger: get a.md: %w", apperr.ErrNotFound), http.StatusNotFound, "not found"},
		{apperr.ErrBusy, http.StatusConflict, "run already in progress"},
		{apperr.ErrNotConfigured, http.StatusServiceUnavailable, "ledger disabled"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		writeServiceError(w, "test", tc.err)
		if w.Code != tc.code {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.code)
		}
		var body errResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != tc.msg {
			t.Errorf("%v: error = %q, want %q", tc.err, body.Error, tc.msg)
		}
	}
}
