package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/wastesort/internal/store"
)

// SettingsHandler reads and writes the player and audio settings.
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler with the given store.
func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

type settingRequest struct {
	Value string `json:"value"`
}

// validators accept a setting value or explain why not. Only these keys
// can be written through the API.
var validators = map[string]func(string) error{
	store.SettingPlayer: func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New("player must not be empty")
		}
		if len(v) > 64 {
			return errors.New("player is too long")
		}
		return nil
	},
	store.SettingAudioEnabled: func(v string) error {
		if _, err := strconv.ParseBool(v); err != nil {
			return errors.New("audio_enabled must be a boolean")
		}
		return nil
	},
	store.SettingAudioVolume: func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return errors.New("audio_volume must be between 0 and 1")
		}
		return nil
	},
}

// ServeHTTP routes GET /api/settings, GET /api/settings/{key} and
// PUT /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key = strings.TrimPrefix(key, "/")

	if key == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, key)
	case http.MethodPut:
		h.put(w, r, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) list(w http.ResponseWriter) {
	settings, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}

	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SettingsHandler) get(w http.ResponseWriter, key string) {
	v, err := h.store.Settings().Get(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get setting")
		return
	}
	writeJSON(w, http.StatusOK, store.Setting{Key: key, Value: v})
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	validate, ok := validators[key]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown setting")
		return
	}

	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validate(req.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().Set(key, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}
	writeJSON(w, http.StatusOK, store.Setting{Key: key, Value: req.Value})
}
