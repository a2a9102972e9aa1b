package api

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	hnd "github.com/picassol/pixeld/plugins/api/handlers"
)

func (s *server) bindRoutes() *server {
	r := s.router

	// version routes
	r.HandleFunc("/version", s.handleVersionReq()).
		Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).
		Methods("GET")

	// action routes
	r.HandleFunc("/actions.json", s.handleActionsRulesReq()).
		Methods("GET", "OPTIONS")
	r.HandleFunc(hnd.PixelActionPath, s.handlePixelDescriptorReq()).
		Methods("GET")
	r.HandleFunc(hnd.PixelActionPath, s.handlePixelActionReq()).
		Methods("POST")
	r.HandleFunc(hnd.PixelActionPath, s.handleActionOptionsReq()).
		Methods("OPTIONS")

	return s
}
