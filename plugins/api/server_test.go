package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/picassol/pixeld/app/config"
	"github.com/picassol/pixeld/app/pub"
	"github.com/picassol/pixeld/common/testutils"
	hnd "github.com/picassol/pixeld/plugins/api/handlers"
	"github.com/picassol/pixeld/plugins/pixel"
)

const testAccount = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

func setupServer(t *testing.T, ledger *testutils.FakeLedger, publication *pub.Publication, values ...int) *server {
	cfg := config.DefaultPixeldConfig()
	s, err := newServer(cfg, ledger, publication, testutils.NewSequenceRand(values...), nil, log.NewNopLogger())
	require.NoError(t, err)
	return s.bindRoutes()
}

func do(s *server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func requireActionHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	h := rec.Header()
	require.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET,POST,PUT,OPTIONS", h.Get("Access-Control-Allow-Methods"))
	require.Contains(t, h.Get("Access-Control-Allow-Headers"), "X-Accept-Action-Version")
	require.Equal(t, "X-Action-Version, X-Blockchain-Ids", h.Get("Access-Control-Expose-Headers"))
	require.Equal(t, "application/json", h.Get("Content-Type"))
	require.Equal(t, "2.2.1", h.Get("X-Action-Version"))
	require.Equal(t, "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1", h.Get("X-Blockchain-Ids"))
}

func decodeTx(t *testing.T, rec *httptest.ResponseRecorder) (hnd.ActionPostResponse, *solana.Transaction) {
	var resp hnd.ActionPostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "transaction", resp.Type)
	bz, err := base64.StdEncoding.DecodeString(resp.Transaction)
	require.NoError(t, err)
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(bz))
	require.NoError(t, err)
	return resp, tx
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Message)
	return body.Message
}

func TestGetDescriptor(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	s := setupServer(t, ledger, nil, 0)

	first := do(s, "GET", hnd.PixelActionPath, "")
	require.Equal(t, http.StatusOK, first.Code)
	requireActionHeaders(t, first)

	var descriptor hnd.ActionDescriptor
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &descriptor))
	require.Equal(t, "Color a Random Pixel", descriptor.Title)
	require.NotEmpty(t, descriptor.Icon)
	require.Len(t, descriptor.Links.Actions, 2)
	require.Equal(t, hnd.PixelActionPath+"?r={r}&g={g}&b={b}", descriptor.Links.Actions[1].Href)
	require.Len(t, descriptor.Links.Actions[1].Parameters, 3)

	second := do(s, "GET", hnd.PixelActionPath, "")
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Zero(t, ledger.Calls())
}

func TestOptions(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	s := setupServer(t, ledger, nil, 0)

	rec := do(s, "OPTIONS", hnd.PixelActionPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.Bytes())
	requireActionHeaders(t, rec)

	rec = do(s, "OPTIONS", "/actions.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	requireActionHeaders(t, rec)
	require.Zero(t, ledger.Calls())
}

func TestActionsRules(t *testing.T) {
	s := setupServer(t, testutils.NewFakeLedger(), nil, 0)

	rec := do(s, "GET", "/actions.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rules struct {
		Rules []struct {
			PathPattern string `json:"pathPattern"`
			APIPath     string `json:"apiPath"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.NotEmpty(t, rules.Rules)
	require.Equal(t, hnd.PixelActionPath, rules.Rules[0].APIPath)
}

func TestVersion(t *testing.T) {
	s := setupServer(t, testutils.NewFakeLedger(), nil, 0)
	rec := do(s, "GET", "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pixeld Release")
}

func TestPostCreate(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	// x, y, r, g, b
	s := setupServer(t, ledger, nil, 5, 6, 7, 8, 9)

	rec := do(s, "POST", hnd.PixelActionPath, `{"account":"`+testAccount+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	requireActionHeaders(t, rec)

	resp, tx := decodeTx(t, rec)
	require.Equal(t, "Color a pixel at (5, 6) with RGB(7, 8, 9)", resp.Message)
	require.Equal(t, solana.MustPublicKeyFromBase58(testAccount), tx.Message.AccountKeys[0])
	require.Equal(t, ledger.Blockhash(), tx.Message.RecentBlockhash)
	require.Len(t, tx.Signatures, 1)
	require.Equal(t, solana.Signature{}, tx.Signatures[0])

	d := pixel.Discriminator(pixel.InstructionCreatePixel)
	require.Equal(t, append(d[:], 5, 6, 7, 8, 9), []byte(tx.Message.Instructions[0].Data))

	require.Equal(t, 1, ledger.ExistsCalls)
	require.Equal(t, 1, ledger.BlockhashCalls)
}

func TestPostUpdate(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	s := setupServer(t, ledger, nil, 5, 6, 7, 8, 9)

	addr, err := pixel.DeriveAddress(s.resolver.ProgramID(), pixel.Position{X: 5, Y: 6})
	require.NoError(t, err)
	ledger.Allocate(addr)

	rec := do(s, "POST", hnd.PixelActionPath, `{"account":"`+testAccount+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp, tx := decodeTx(t, rec)
	require.Equal(t, "Recolor the pixel at (5, 6) with RGB(7, 8, 9)", resp.Message)
	d := pixel.Discriminator(pixel.InstructionUpdatePixel)
	require.Equal(t, append(d[:], 7, 8, 9), []byte(tx.Message.Instructions[0].Data))
	require.Equal(t, []solana.PublicKey{addr}, ledger.Queried)
}

func TestPostExplicitParameters(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	s := setupServer(t, ledger, nil, 1)

	rec := do(s, "POST", hnd.PixelActionPath+"?x=10&y=199&r=255&g=0&b=128", `{"account":"`+testAccount+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp, _ := decodeTx(t, rec)
	require.Equal(t, "Color a pixel at (10, 199) with RGB(255, 0, 128)", resp.Message)
}

func TestPostValidationFailuresSkipLedger(t *testing.T) {
	cases := []struct {
		name   string
		target string
		body   string
	}{
		{"empty body", hnd.PixelActionPath, ""},
		{"malformed json", hnd.PixelActionPath, `{"account":`},
		{"missing account", hnd.PixelActionPath, `{}`},
		{"numeric account", hnd.PixelActionPath, `{"account":42}`},
		{"not base58", hnd.PixelActionPath, `{"account":"0OIl"}`},
		{"short key", hnd.PixelActionPath, `{"account":"3yZe7d"}`},
		{"red out of range", hnd.PixelActionPath + "?r=256", `{"account":"` + testAccount + `"}`},
		{"green not a number", hnd.PixelActionPath + "?g=abc", `{"account":"` + testAccount + `"}`},
		{"negative blue", hnd.PixelActionPath + "?b=-1", `{"account":"` + testAccount + `"}`},
		{"x off canvas", hnd.PixelActionPath + "?x=200", `{"account":"` + testAccount + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := testutils.NewFakeLedger()
			s := setupServer(t, ledger, nil, 0)

			rec := do(s, "POST", tc.target, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			requireActionHeaders(t, rec)
			errorMessage(t, rec)
			require.Zero(t, ledger.Calls())
		})
	}
}

func TestPostLookupFailed(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	ledger.ExistsErr = errors.New("node unavailable")
	s := setupServer(t, ledger, nil, 0)

	rec := do(s, "POST", hnd.PixelActionPath, `{"account":"`+testAccount+`"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, errorMessage(t, rec), "node unavailable")
	require.Zero(t, ledger.BlockhashCalls)
}

func TestPostBlockhashFailed(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	ledger.BlockhashErr = errors.New("blockhash unavailable")
	s := setupServer(t, ledger, nil, 0)

	rec := do(s, "POST", hnd.PixelActionPath, `{"account":"`+testAccount+`"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, errorMessage(t, rec), "blockhash unavailable")
}

func TestPostTooLarge(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	s := setupServer(t, ledger, nil, 0)

	body := `{"account":"` + testAccount + `","pad":"` + strings.Repeat("a", int(s.maxPostSize)) + `"}`

	// declared length is rejected before the body is read
	withLength := do(s, "POST", hnd.PixelActionPath, body)

	// a chunked body has no declared length and trips the read limit instead
	req := httptest.NewRequest("POST", hnd.PixelActionPath, strings.NewReader(body))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	chunked := httptest.NewRecorder()
	s.router.ServeHTTP(chunked, req)

	for _, rec := range []*httptest.ResponseRecorder{withLength, chunked} {
		require.Equal(t, http.StatusBadRequest, rec.Code)
		requireActionHeaders(t, rec)
		require.Contains(t, errorMessage(t, rec), "MalformedBody")
	}
	require.Zero(t, ledger.Calls())
}

func TestPostPublishesIssuedAction(t *testing.T) {
	mock := pub.NewMockActionPublisher()
	publication := pub.NewPublication(mock, nil, log.NewNopLogger(), &config.PublicationConfig{PublicationChannelSize: 4})
	publication.Start()

	ledger := testutils.NewFakeLedger()
	s := setupServer(t, ledger, publication, 5, 6, 7, 8, 9)

	rec := do(s, "POST", hnd.PixelActionPath, `{"account":"`+testAccount+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	// failed requests publish nothing
	rec = do(s, "POST", hnd.PixelActionPath, `{"account":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	publication.Stop()

	published := mock.Published()
	require.Len(t, published, 1)
	require.Equal(t, "create", published[0].Kind)
	require.Equal(t, testAccount, published[0].Requester)
	require.Equal(t, int32(5), published[0].X)
	require.Equal(t, int32(9), published[0].B)
}

type panickingLedger struct {
	*testutils.FakeLedger
}

func (panickingLedger) AccountExists(context.Context, solana.PublicKey) (bool, error) {
	panic("ledger exploded")
}

func TestPostPanicIsUnexpectedError(t *testing.T) {
	cfg := config.DefaultPixeldConfig()
	s, err := newServer(cfg, panickingLedger{testutils.NewFakeLedger()}, nil, testutils.NewSequenceRand(0), nil, log.NewNopLogger())
	require.NoError(t, err)
	s.bindRoutes()

	rec := do(s, "POST", hnd.PixelActionPath, `{"account":"`+testAccount+`"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	requireActionHeaders(t, rec)
	require.Contains(t, errorMessage(t, rec), "ledger exploded")
}
