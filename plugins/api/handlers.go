package api

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/pkg/errors"

	hnd "github.com/picassol/pixeld/plugins/api/handlers"
	"github.com/picassol/pixeld/plugins/pixel"
)

// middleware (limits, headers, etc)

func (s *server) limitReqSize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// reject suspiciously large posts
		if r.ContentLength > s.maxPostSize {
			hnd.WriteError(w, pixel.ErrMalformedBody(fmt.Sprintf("request body exceeds %d bytes", s.maxPostSize)))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxPostSize)
		next(w, r)
	}
}

// recoverPanics turns a panicking handler into an UnexpectedError response.
func (s *server) recoverPanics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stackTrace := fmt.Sprintf("recovered: %v\nstack:\n%v", rec, string(debug.Stack()))
				s.logger.Error(stackTrace)
				hnd.WriteError(w, pixel.ErrUnexpected(errors.Errorf("%v", rec), "request handler panicked"))
			}
		}()
		next(w, r)
	}
}

// withActionHeaders sets the headers action clients require on every
// response, errors included.
func (s *server) withActionHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Content-Encoding, Accept-Encoding, X-Accept-Action-Version, X-Accept-Blockchain-Ids")
		h.Set("Access-Control-Expose-Headers", "X-Action-Version, X-Blockchain-Ids")
		h.Set("Content-Type", "application/json")
		h.Set("X-Action-Version", actionVersion)
		h.Set("X-Blockchain-Ids", s.blockchainID)
		next(w, r)
	}
}

// -----

func (s *server) handleVersionReq() http.HandlerFunc {
	return hnd.VersionReqHandler
}

func (s *server) handleActionsRulesReq() http.HandlerFunc {
	return s.withActionHeaders(hnd.ActionsRulesReqHandler)
}

func (s *server) handlePixelDescriptorReq() http.HandlerFunc {
	return s.withActionHeaders(hnd.ActionDescriptorReqHandler(s.descriptor))
}

func (s *server) handleActionOptionsReq() http.HandlerFunc {
	return s.withActionHeaders(hnd.ActionOptionsReqHandler)
}

func (s *server) handlePixelActionReq() http.HandlerFunc {
	deps := hnd.PixelActionDeps{
		Resolver: s.resolver,
		Builder:  s.txBuilder,
		Rand:     s.rnd,
		Width:    s.width,
		Logger:   s.logger,
	}
	if s.publication != nil {
		deps.Queue = s.publication
	}
	return s.withActionHeaders(s.recoverPanics(s.limitReqSize(hnd.PixelActionReqHandler(deps))))
}
