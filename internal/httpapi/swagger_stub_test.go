//go:build !swagger

package httpapi

import (
	"net/http"
	"testing"
)

func TestSwaggerRoutesAbsentWithoutTag(t *testing.T) {
	w := do(t, NewMux(&mockService{}), http.MethodGet, "/swagger/index.html", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without the swagger build tag, got %d", w.Code)
	}
}
