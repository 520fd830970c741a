package httpapi

import "net/http"

func writeJSON(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

// methodMux dispatches on the HTTP method so each route declares exactly
// which verbs it serves.
func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := m[r.Method]
		if !ok {
			allowed := ""
			for verb := range m {
				if allowed != "" {
					allowed += ", "
				}
				allowed += verb
			}
			w.Header().Set("Allow", allowed)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}
