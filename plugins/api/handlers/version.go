package handlers

import (
	"net/http"

	"github.com/picassol/pixeld/version"
)

// VersionReqHandler handles requests to the server version endpoint
func VersionReqHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(version.Version))
}
