package response

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestEnvelopeOmitsEmptyFields(t *testing.T) {
	tests := []struct {
		name string
		in   Resp
		want string
	}{
		{"ok with data", OK(map[string]int{"n": 1}, ""), `{"success":true,"data":{"n":1}}`},
		{"ok message only", OK(nil, "done"), `{"success":true,"message":"done"}`},
		{"error default text", Error(http.StatusConflict, "", "email already registered"), `{"success":false,"error":"conflict","message":"email already registered"}`},
		{"error custom text", Error(http.StatusBadRequest, "invalid id", ""), `{"success":false,"error":"invalid id"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}
}

func TestTextFallsBackToStatusText(t *testing.T) {
	if got := Text(http.StatusTeapot); got != http.StatusText(http.StatusTeapot) {
		t.Errorf("got %q", got)
	}
}
