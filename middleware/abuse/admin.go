package abuse

import (
	"encoding/json"
	"net/http"
	"strings"

	"sentinela-gateway/middleware/abuse/domain"
	"sentinela-gateway/middleware/abuse/infra"
)

// AdminDeps agrupa as dependências da superfície administrativa. Campos nil
// desligam os endpoints correspondentes (404).
type AdminDeps struct {
	Cache      *infra.Cache[*infra.WindowCounter]
	Stats      *infra.MemoryStatsStore
	Violations domain.ViolationTracker
	Detector   domain.Detector
	Blocks     domain.BlockRegistry
	Revocation domain.RevocationRegistry
	Limiter    *infra.WindowLimiter
}

// opResult é a resposta padrão das escritas administrativas: operações
// idempotentes reportam no-op como resultado explicado, não como erro.
type opResult struct {
	Changed bool   `json:"changed"`
	Detail  string `json:"detail,omitempty"`
}

type actorRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}

// AdminHandler monta a superfície administrativa (leituras e escritas) como
// um http.Handler independente, para ser servido em listener separado do
// tráfego de requests.
func AdminHandler(deps AdminDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /admin/stats", func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{}
		if deps.Cache != nil {
			out["cache"] = deps.Cache.Stats()
		}
		if deps.Stats != nil {
			out["decisions"] = map[string]any{
				"total":    deps.Stats.Total(),
				"byAction": deps.Stats.ByAction(),
				"byReason": deps.Stats.ByReason(),
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /admin/violations", func(w http.ResponseWriter, r *http.Request) {
		if deps.Violations == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, deps.Violations.All())
	})

	mux.HandleFunc("GET /admin/patterns", func(w http.ResponseWriter, r *http.Request) {
		if deps.Detector == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, deps.Detector.Patterns())
	})

	mux.HandleFunc("GET /admin/blocklist", func(w http.ResponseWriter, r *http.Request) {
		if deps.Blocks == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"blocked":     deps.Blocks.Blocked(),
			"allowlisted": deps.Blocks.Allowlisted(),
		})
	})

	mux.HandleFunc("GET /admin/blacklist", func(w http.ResponseWriter, r *http.Request) {
		reg, ok := deps.Revocation.(*infra.RevocationRegistry)
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, reg.Tokens())
	})

	mux.HandleFunc("GET /admin/sessions", func(w http.ResponseWriter, r *http.Request) {
		if deps.Revocation == nil {
			http.NotFound(w, r)
			return
		}
		user := strings.TrimSpace(r.URL.Query().Get("user"))
		if user == "" {
			http.Error(w, "user query param is required", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, deps.Revocation.ListSessions(user))
	})

	mux.HandleFunc("POST /admin/block", func(w http.ResponseWriter, r *http.Request) {
		req, ok := readActor(w, r, deps.Blocks != nil)
		if !ok {
			return
		}
		changed := deps.Blocks.Block(domain.Key(req.Actor), req.Reason)
		res := opResult{Changed: changed}
		if !changed {
			res.Detail = "actor already blocked or allowlisted"
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("POST /admin/unblock", func(w http.ResponseWriter, r *http.Request) {
		req, ok := readActor(w, r, deps.Blocks != nil)
		if !ok {
			return
		}
		changed := deps.Blocks.Unblock(domain.Key(req.Actor))
		res := opResult{Changed: changed}
		if !changed {
			res.Detail = "actor was not blocked"
		}
		if changed && deps.Limiter != nil {
			// zera as janelas correntes: desbloqueio manual significa
			// recomeço limpo para o ator.
			deps.Limiter.InvalidateActor(domain.Key(req.Actor))
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("POST /admin/allowlist/add", func(w http.ResponseWriter, r *http.Request) {
		req, ok := readActor(w, r, deps.Blocks != nil)
		if !ok {
			return
		}
		changed := deps.Blocks.AllowlistAdd(domain.Key(req.Actor))
		res := opResult{Changed: changed}
		if !changed {
			res.Detail = "actor already allowlisted"
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("POST /admin/allowlist/remove", func(w http.ResponseWriter, r *http.Request) {
		req, ok := readActor(w, r, deps.Blocks != nil)
		if !ok {
			return
		}
		changed := deps.Blocks.AllowlistRemove(domain.Key(req.Actor))
		res := opResult{Changed: changed}
		if !changed {
			res.Detail = "actor was not allowlisted"
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("POST /admin/revoke-session", func(w http.ResponseWriter, r *http.Request) {
		if deps.Revocation == nil {
			http.NotFound(w, r)
			return
		}
		var req struct {
			SessionID string `json:"sessionId"`
		}
		if !decodeBody(w, r, &req) || req.SessionID == "" {
			badRequest(w, "sessionId is required")
			return
		}
		changed := deps.Revocation.RevokeSession(req.SessionID)
		res := opResult{Changed: changed}
		if !changed {
			res.Detail = "session not found"
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("POST /admin/revoke-user", func(w http.ResponseWriter, r *http.Request) {
		if deps.Revocation == nil {
			http.NotFound(w, r)
			return
		}
		var req struct {
			UserID string `json:"userId"`
		}
		if !decodeBody(w, r, &req) || req.UserID == "" {
			badRequest(w, "userId is required")
			return
		}
		deps.Revocation.RevokeAllForUser(req.UserID)
		writeJSON(w, http.StatusOK, opResult{Changed: true})
	})

	return mux
}

func readActor(w http.ResponseWriter, r *http.Request, wired bool) (actorRequest, bool) {
	if !wired {
		http.NotFound(w, r)
		return actorRequest{}, false
	}
	var req actorRequest
	if !decodeBody(w, r, &req) {
		return actorRequest{}, false
	}
	if strings.TrimSpace(req.Actor) == "" {
		badRequest(w, "actor is required")
		return actorRequest{}, false
	}
	return req, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid json body")
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
