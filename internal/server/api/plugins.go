package api

import (
	"net/http"

	"github.com/ayusman/handquiz/internal/plugin"
)

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Events      []string `json:"events"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
}

// PluginsHandler returns GET /api/plugins, listing the discovered plugins
// hooks may bind.
func PluginsHandler(m *plugin.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plugins := m.List()
		response := listPluginsResponse{Plugins: make([]pluginResponse, 0, len(plugins))}
		for _, p := range plugins {
			events := p.Manifest.Events
			if events == nil {
				events = []string{}
			}
			response.Plugins = append(response.Plugins, pluginResponse{
				Name:        p.Manifest.Name,
				Version:     p.Manifest.Version,
				Description: p.Manifest.Description,
				Events:      events,
			})
		}
		writeJSON(w, http.StatusOK, response)
	}
}
