package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setIMAPPasswordReq struct {
	Password string `json:"password"`
}

// SetIMAPPassword stores the mail password in the OS keyring. The password
// itself never touches the config file or the database.
func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	var req setIMAPPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.Password == "" {
		WriteError(w, r, http.StatusBadRequest, "empty_password", "password must not be empty")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	account := secrets.IMAPKeyringAccount(cfg)
	if err := secrets.SetIMAPPassword(account, req.Password); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_error", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
