package httpapi

import (
	"net/http"
)

func NewMux(source StatusSource) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, source)
	return mux
}
