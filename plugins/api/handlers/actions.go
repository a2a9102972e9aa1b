package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tidwall/gjson"

	"github.com/picassol/pixeld/app/pub"
	"github.com/picassol/pixeld/plugins/pixel"
)

const (
	PixelActionPath = "/api/actions/pixel"

	responseType = "application/json"
)

type actionParameter struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required,omitempty"`
}

type linkedAction struct {
	Label      string            `json:"label"`
	Href       string            `json:"href"`
	Parameters []actionParameter `json:"parameters,omitempty"`
}

// ActionDescriptor is the body of a GET on an action endpoint.
type ActionDescriptor struct {
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Label       string `json:"label"`
	Links       struct {
		Actions []linkedAction `json:"actions"`
	} `json:"links"`
}

// ActionPostResponse is the body of a successful POST on an action endpoint.
type ActionPostResponse struct {
	Type        string `json:"type"`
	Transaction string `json:"transaction"`
	Message     string `json:"message"`
}

type actionError struct {
	Message string `json:"message"`
}

// NewPixelDescriptor describes the random and custom color pixel actions.
// Links are relative unless baseURL is set.
func NewPixelDescriptor(baseURL, icon string) ActionDescriptor {
	d := ActionDescriptor{
		Title:       "Color a Random Pixel",
		Icon:        icon,
		Description: "Color a random pixel on the Picassol canvas",
		Label:       "Color Pixel",
	}
	href := baseURL + PixelActionPath
	d.Links.Actions = []linkedAction{
		{Label: "Color Random Pixel", Href: href},
		{
			Label: "Color With RGB",
			Href:  href + "?r={r}&g={g}&b={b}",
			Parameters: []actionParameter{
				{Name: "r", Label: "Red (0-255)"},
				{Name: "g", Label: "Green (0-255)"},
				{Name: "b", Label: "Blue (0-255)"},
			},
		},
	}
	return d
}

// ActionDescriptorReqHandler serves the same descriptor on every call.
func ActionDescriptorReqHandler(descriptor ActionDescriptor) http.HandlerFunc {
	body, err := json.Marshal(descriptor)
	if err != nil {
		panic(err)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", responseType)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

// ActionOptionsReqHandler answers preflight requests. Headers are set by
// the router middleware.
func ActionOptionsReqHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ActionsRulesReqHandler serves actions.json, mapping website paths to the
// action api.
func ActionsRulesReqHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", responseType)
	w.Write([]byte(`{"rules":[{"pathPattern":"/pixel","apiPath":"` + PixelActionPath + `"},` +
		`{"pathPattern":"/api/actions/**","apiPath":"/api/actions/**"}]}`))
}

type OperationResolver interface {
	Resolve(ctx context.Context, requester pixel.Identity, pos pixel.Position, color pixel.Color) (pixel.Operation, error)
}

type TransactionBuilder interface {
	Build(ctx context.Context, op pixel.Operation) (*solana.Transaction, error)
}

type ActionQueue interface {
	Enqueue(msg pub.IssuedAction) bool
}

// PixelActionDeps are the collaborators of the pixel POST handler. Queue
// may be nil.
type PixelActionDeps struct {
	Resolver OperationResolver
	Builder  TransactionBuilder
	Rand     pixel.RandomSource
	Width    int
	Queue    ActionQueue
	Logger   log.Logger
}

// WriteError answers with the {message} body and the status of err's code.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", responseType)
	w.WriteHeader(pixel.CodeOf(err).HTTPStatus())
	json.NewEncoder(w).Encode(actionError{Message: err.Error()})
}

// PixelActionReqHandler validates the request, resolves create or update
// against the ledger and returns the unsigned transaction.
func PixelActionReqHandler(deps PixelActionDeps) http.HandlerFunc {
	throw := func(w http.ResponseWriter, err error) {
		if code := pixel.CodeOf(err); code.HTTPStatus() >= http.StatusInternalServerError {
			deps.Logger.Error("pixel action failed", "code", code, "err", err)
		}
		WriteError(w, err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			throw(w, pixel.ErrMalformedBody("request body is too large or unreadable"))
			return
		}
		if !gjson.ValidBytes(body) {
			throw(w, pixel.ErrMalformedBody("request body must be a json object carrying an account"))
			return
		}
		account := gjson.GetBytes(body, "account")
		if account.Type != gjson.String {
			throw(w, pixel.ErrInvalidAccount("account must be a string"))
			return
		}
		requester, err := pixel.ParseRequester(account.Str)
		if err != nil {
			throw(w, err)
			return
		}

		query := r.URL.Query()
		pos, err := pixel.ParsePosition(query.Get("x"), query.Get("y"), deps.Width, deps.Rand)
		if err != nil {
			throw(w, err)
			return
		}
		color, err := pixel.ParseColor(query.Get("r"), query.Get("g"), query.Get("b"), deps.Rand)
		if err != nil {
			throw(w, err)
			return
		}

		op, err := deps.Resolver.Resolve(r.Context(), requester, pos, color)
		if err != nil {
			throw(w, err)
			return
		}
		tx, err := deps.Builder.Build(r.Context(), op)
		if err != nil {
			throw(w, err)
			return
		}
		encoded, err := pixel.EncodeTransaction(tx)
		if err != nil {
			throw(w, pixel.ErrUnexpected(err, "failed to encode transaction"))
			return
		}

		if deps.Queue != nil {
			deps.Queue.Enqueue(pub.NewIssuedAction(op, pos, time.Now()))
		}

		w.Header().Set("Content-Type", responseType)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ActionPostResponse{
			Type:        "transaction",
			Transaction: encoded,
			Message:     Message(op, pos, color),
		})
	}
}

// Message is the human readable summary returned with a transaction. An
// update names the position its address was derived from.
func Message(op pixel.Operation, pos pixel.Position, color pixel.Color) string {
	if op.Kind() == pixel.KindUpdate {
		return fmt.Sprintf("Recolor the pixel at %s with %s", pos, color)
	}
	return fmt.Sprintf("Color a pixel at %s with %s", pos, color)
}
