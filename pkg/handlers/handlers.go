// Package handlers wires the HTTP routes onto their domain handlers.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/armand/immo-contracts/pkg/handlers/contracts"
	"github.com/armand/immo-contracts/pkg/handlers/disputes"
	"github.com/armand/immo-contracts/pkg/handlers/signing"
	"github.com/armand/immo-contracts/pkg/handlers/transactions"
	appmiddleware "github.com/armand/immo-contracts/pkg/middleware"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps carries everything the router needs.
type Deps struct {
	Store     storage.ApiStore
	Contracts *workflow.ContractService
	Engine    *workflow.Engine
	Disputes  *workflow.DisputeService
	JWTSecret string
	Logger    *slog.Logger
}

// NewRouter builds the chi router with all routes mounted behind
// authentication.
func NewRouter(deps Deps) chi.Router {
	contractsHandler := contracts.NewContractsHandler(deps.Store, deps.Contracts)
	signingHandler := signing.NewSigningHandler(deps.Store, deps.Engine)
	transactionsHandler := transactions.NewTransactionsHandler(deps.Store)
	disputesHandler := disputes.NewDisputesHandler(deps.Store, deps.Disputes)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(appmiddleware.NewStructuredLogger(deps.Logger))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Group(func(r chi.Router) {
		r.Use(appmiddleware.Authenticator(deps.JWTSecret))

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", contractsHandler.CreateContract)
			r.Get("/", contractsHandler.ListContracts)

			r.Route("/{contractId}", func(r chi.Router) {
				r.Get("/", contractsHandler.GetContract)
				r.Get("/versions", contractsHandler.ListVersions)
				r.Post("/send", contractsHandler.SendContract)
				r.Post("/retract", contractsHandler.RetractContract)

				r.Post("/amendments", contractsHandler.ProposeAmendment)
				r.Get("/amendments", contractsHandler.ListAmendments)
				r.Post("/amendments/{amendmentId}/respond", contractsHandler.RespondToAmendment)

				r.Post("/otp", signingHandler.SendOtp)
				r.Post("/sign", signingHandler.Sign)
				r.Get("/signatures", signingHandler.ListSignatures)

				r.Get("/transactions", transactionsHandler.ListContractTransactions)

				r.Post("/disputes", disputesHandler.CreateDispute)
				r.Get("/disputes", disputesHandler.ListDisputes)
				r.Get("/disputes/{disputeId}/mediations", disputesHandler.ListMediations)
			})
		})

		r.Route("/transactions/{transactionId}", func(r chi.Router) {
			r.Get("/", transactionsHandler.GetTransaction)
			r.Post("/pay", transactionsHandler.PayTransaction)
		})
	})

	return router
}
