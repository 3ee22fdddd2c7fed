package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets content-type and status", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := map[string]string{"key": "value"}
		WriteJSON(w, http.StatusOK, body)

		if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json; charset=utf-8", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("encodes body as JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := map[string]float64{"temperature_c": 28.85}
		WriteJSON(w, http.StatusCreated, body)

		var got map[string]float64
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["temperature_c"] != 28.85 {
			t.Errorf("body[temperature_c] = %v; want 28.85", got["temperature_c"])
		}
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	status := http.StatusBadRequest
	msg := "invalid 'window'"
	WriteError(w, status, msg)

	if w.Code != status {
		t.Errorf("Code = %d; want %d", w.Code, status)
	}

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if got["error"] != http.StatusText(status) {
		t.Errorf("error = %q; want %q", got["error"], http.StatusText(status))
	}
	if got["message"] != msg {
		t.Errorf("message = %q; want %q", got["message"], msg)
	}
}

func TestWriteRendered(t *testing.T) {
	t.Run("writes body and content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := WriteRendered(w, "text/csv; charset=utf-8", func(out io.Writer) error {
			_, err := io.WriteString(out, "ts,temperature_c,humidity_pct\n")
			return err
		})
		if err != nil {
			t.Fatalf("WriteRendered() = %v; want nil", err)
		}
		if got := w.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := w.Body.String(); got != "ts,temperature_c,humidity_pct\n" {
			t.Errorf("body = %q", got)
		}
	})

	t.Run("writes nothing when render fails", func(t *testing.T) {
		w := httptest.NewRecorder()
		boom := errors.New("boom")
		err := WriteRendered(w, "text/html; charset=utf-8", func(out io.Writer) error {
			_, _ = io.WriteString(out, "<p>partial")
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("WriteRendered() = %v; want %v", err, boom)
		}
		if w.Body.Len() != 0 {
			t.Errorf("body = %q; want empty", w.Body.String())
		}
		if got := w.Header().Get("Content-Type"); got != "" {
			t.Errorf("Content-Type = %q; want unset", got)
		}
	})
}
