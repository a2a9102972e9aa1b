package api

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/picassol/pixeld/app/config"
	"github.com/picassol/pixeld/app/pub"
	"github.com/picassol/pixeld/common/ledger"
	hnd "github.com/picassol/pixeld/plugins/api/handlers"
	"github.com/picassol/pixeld/plugins/pixel"
)

const actionVersion = "2.2.1"

type server struct {
	router *mux.Router

	// settings
	maxPostSize  int64
	blockchainID string
	descriptor   hnd.ActionDescriptor
	width        int

	// handler dependencies
	resolver    *pixel.Resolver
	txBuilder   *pixel.TxBuilder
	rnd         pixel.RandomSource
	publication *pub.Publication
	logger      log.Logger
}

// newServer wires the pixel pipeline over client. publication and metrics
// may be nil.
func newServer(
	cfg *config.PixeldConfig,
	client ledger.Client,
	publication *pub.Publication,
	rnd pixel.RandomSource,
	metrics *pixel.Metrics,
	logger log.Logger) (*server, error) {
	programID, err := solana.PublicKeyFromBase58(cfg.CanvasConfig.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid canvas program id")
	}
	addrs, err := pixel.NewAddressCache(programID, cfg.CanvasConfig.AddressCacheSize)
	if err != nil {
		return nil, err
	}

	return &server{
		router:       mux.NewRouter(),
		maxPostSize:  cfg.ServerConfig.MaxPostSize,
		blockchainID: cfg.LedgerConfig.BlockchainID(),
		descriptor:   hnd.NewPixelDescriptor(cfg.ServerConfig.BaseURL, cfg.ServerConfig.Icon),
		width:        cfg.CanvasConfig.Width,
		resolver:     pixel.NewResolver(addrs, client, metrics),
		txBuilder:    pixel.NewTxBuilder(programID, client),
		rnd:          rnd,
		publication:  publication,
		logger:       logger,
	}, nil
}
