package rest

import "net/http"

const healthMessage = "Backend Running"

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "pong")
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, healthMessage)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
