package server

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"strconv"

	"agent_bazaar/internal/biz/common"
	"agent_bazaar/internal/conf"
	"agent_bazaar/internal/p2p"
	"agent_bazaar/internal/service"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/gorilla/mux"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, bazaar *service.BazaarService, network p2p.NetworkManager, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.HTTP.Network != "" {
		opts = append(opts, http.Network(c.HTTP.Network))
	}
	if c.HTTP.Addr != "" {
		opts = append(opts, http.Address(c.HTTP.Addr))
	}
	if c.HTTP.Timeout > 0 {
		opts = append(opts, http.Timeout(c.HTTP.Timeout.AsDuration()))
	}
	srv := http.NewServer(opts...)

	registerRoutes(srv, bazaar, network, logger)

	return srv
}

// registerRoutes wires the JSON API onto the server router
func registerRoutes(srv *http.Server, bazaar *service.BazaarService, network p2p.NetworkManager, logger log.Logger) {
	helper := log.NewHelper(logger)

	// Protocol governance
	srv.HandleFunc("/v1/protocol/initialize", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !requireMethod(w, r, nethttp.MethodPost) {
			return
		}
		var req service.InitializeRequest
		if !decodeBody(w, r, &req, helper) {
			return
		}
		resp, err := bazaar.Initialize(r.Context(), &req)
		writeResult(w, resp, err, helper)
	})

	srv.HandleFunc("/v1/protocol", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !requireMethod(w, r, nethttp.MethodGet) {
			return
		}
		resp, err := bazaar.GetProtocol(r.Context())
		writeResult(w, resp, err, helper)
	})

	srv.HandleFunc("/v1/protocol/authority", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !requireMethod(w, r, nethttp.MethodPost) {
			return
		}
		var req service.UpdateAuthorityRequest
		if !decodeBody(w, r, &req, helper) {
			return
		}
		resp, err := bazaar.UpdateAuthority(r.Context(), &req)
		writeResult(w, resp, err, helper)
	})

	srv.HandleFunc("/v1/protocol/fee", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !requireMethod(w, r, nethttp.MethodPost) {
			return
		}
		var req service.UpdateFeeRequest
		if !decodeBody(w, r, &req, helper) {
			return
		}
		resp, err := bazaar.UpdateFee(r.Context(), &req)
		writeResult(w, resp, err, helper)
	})

	// Agent registry
	srv.HandleFunc("/v1/agents", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodPost:
			var req service.RegisterAgentRequest
			if !decodeBody(w, r, &req, helper) {
				return
			}
			resp, err := bazaar.RegisterAgent(r.Context(), &req)
			writeResult(w, resp, err, helper)
		case nethttp.MethodGet:
			resp, err := bazaar.ListAgents(r.Context())
			writeResult(w, resp, err, helper)
		default:
			writeMethodNotAllowed(w)
		}
	})

	srv.HandleFunc("/v1/agents/{id}", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		agentID, ok := pathAgentID(w, r)
		if !ok {
			return
		}
		switch r.Method {
		case nethttp.MethodGet:
			resp, err := bazaar.GetAgent(r.Context(), agentID)
			writeResult(w, resp, err, helper)
		case nethttp.MethodPatch:
			var req service.UpdateAgentRequest
			if !decodeBody(w, r, &req, helper) {
				return
			}
			req.AgentID = agentID
			resp, err := bazaar.UpdateAgent(r.Context(), &req)
			writeResult(w, resp, err, helper)
		default:
			writeMethodNotAllowed(w)
		}
	})

	srv.HandleFunc("/v1/agents/{id}/deactivate", lifecycleHandler(bazaar.DeactivateAgent, helper))
	srv.HandleFunc("/v1/agents/{id}/reactivate", lifecycleHandler(bazaar.ReactivateAgent, helper))
	srv.HandleFunc("/v1/agents/{id}/close", lifecycleHandler(bazaar.CloseAgent, helper))

	// Reputation ledger
	srv.HandleFunc("/v1/feedback", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !requireMethod(w, r, nethttp.MethodPost) {
			return
		}
		var req service.SubmitFeedbackRequest
		if !decodeBody(w, r, &req, helper) {
			return
		}
		resp, err := bazaar.SubmitFeedback(r.Context(), &req)
		writeResult(w, resp, err, helper)
	})

	srv.HandleFunc("/v1/agents/{id}/reputation", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !requireMethod(w, r, nethttp.MethodGet) {
			return
		}
		agentID, ok := pathAgentID(w, r)
		if !ok {
			return
		}
		resp, err := bazaar.GetReputation(r.Context(), agentID)
		writeResult(w, resp, err, helper)
	})

	srv.HandleFunc("/v1/agents/{id}/feedback", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !requireMethod(w, r, nethttp.MethodGet) {
			return
		}
		agentID, ok := pathAgentID(w, r)
		if !ok {
			return
		}
		resp, err := bazaar.ListFeedback(r.Context(), agentID)
		writeResult(w, resp, err, helper)
	})

	// Health endpoint
	srv.HandleFunc("/debug/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bazaar.HealthStatus(r.Context()))
		helper.Debug("Served health status")
	})

	// P2P status endpoint
	srv.HandleFunc("/debug/p2p/status", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		if network == nil {
			json.NewEncoder(w).Encode(map[string]interface{}{"is_running": false})
			return
		}
		json.NewEncoder(w).Encode(network.GetNetworkStatus())
		helper.Debug("Served p2p status")
	})
}

// lifecycleHandler builds a POST handler for one agent lifecycle op
func lifecycleHandler(
	fn func(ctx context.Context, req *service.AgentLifecycleRequest) (*service.StatusResponse, error),
	helper *log.Helper,
) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if !requireMethod(w, r, nethttp.MethodPost) {
			return
		}
		agentID, ok := pathAgentID(w, r)
		if !ok {
			return
		}
		var req service.AgentLifecycleRequest
		if !decodeBody(w, r, &req, helper) {
			return
		}
		req.AgentID = agentID
		resp, err := fn(r.Context(), &req)
		writeResult(w, resp, err, helper)
	}
}

// pathAgentID parses the {id} route variable
func pathAgentID(w nethttp.ResponseWriter, r *nethttp.Request) (uint64, bool) {
	raw := mux.Vars(r)["id"]
	agentID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, common.NewBazaarError(common.ErrorCodeInvalidRequest, "Agent id must be a decimal integer", raw))
		return 0, false
	}
	return agentID, true
}

// requireMethod rejects requests with the wrong verb
func requireMethod(w nethttp.ResponseWriter, r *nethttp.Request, method string) bool {
	if r.Method != method {
		writeMethodNotAllowed(w)
		return false
	}
	return true
}

// decodeBody reads the JSON request body
func decodeBody(w nethttp.ResponseWriter, r *nethttp.Request, dst interface{}, helper *log.Helper) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		helper.Debugf("Bad request body: %v", err)
		writeError(w, common.WrapError(err, common.ErrorCodeInvalidRequest, "Request body is not valid JSON"))
		return false
	}
	return true
}

// writeResult writes either the success payload or the mapped error
func writeResult(w nethttp.ResponseWriter, resp interface{}, err error, helper *log.Helper) {
	if err != nil {
		helper.Debugf("Request failed: %v", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeError maps the error code onto an HTTP status and emits the
// error envelope. Foreign errors keep their code opaque and their
// message generic so internals never reach the client.
func writeError(w nethttp.ResponseWriter, err error) {
	code := common.GetErrorCode(err)
	message := err.Error()
	if !common.IsBazaarError(err) {
		message = "Internal error"
	}
	body := map[string]interface{}{
		"success": false,
		"code":    code,
		"message": message,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForCode(code))
	json.NewEncoder(w).Encode(body)
}

func writeMethodNotAllowed(w nethttp.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(nethttp.StatusMethodNotAllowed)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"code":    "METHOD_NOT_ALLOWED",
		"message": "Method not allowed",
	})
}

// statusForCode maps operation failure codes onto HTTP statuses
func statusForCode(code string) int {
	switch code {
	case common.ErrorCodeInvalidFee,
		common.ErrorCodeNameTooShort,
		common.ErrorCodeNameTooLong,
		common.ErrorCodeDescriptionTooLong,
		common.ErrorCodeURITooLong,
		common.ErrorCodeTooManyCategories,
		common.ErrorCodeCategoryTooLong,
		common.ErrorCodeInvalidRating,
		common.ErrorCodeInvalidAmount,
		common.ErrorCodeInvalidTimestamp,
		common.ErrorCodeInvalidRequest,
		common.ErrorCodeFutureTimestamp,
		common.ErrorCodeTimestampTooOld:
		return nethttp.StatusBadRequest
	case common.ErrorCodeUnauthorized,
		common.ErrorCodeSelfRating:
		return nethttp.StatusForbidden
	case common.ErrorCodeNotInitialized,
		common.ErrorCodeAgentNotFound,
		common.ErrorCodeInvalidAgent:
		return nethttp.StatusNotFound
	case common.ErrorCodeAlreadyInitialized,
		common.ErrorCodeFeedbackExists,
		common.ErrorCodeAgentAlreadyActive,
		common.ErrorCodeAgentStillActive,
		common.ErrorCodeRecentActivity,
		common.ErrorCodeTooManyAgents:
		return nethttp.StatusConflict
	case common.ErrorCodeFeedbackTooFrequent:
		return nethttp.StatusTooManyRequests
	default:
		return nethttp.StatusInternalServerError
	}
}
