package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
	"github.com/couchcryptid/avalanche-stats/internal/session"
	"github.com/paulmach/orb"
)

const (
	maxBodyBytes    = 4 << 20
	maxBatchFeature = 10000
)

type api struct {
	deps   Deps
	logger *slog.Logger
}

// featureRequest is one tile feature as sent by the map client.
type featureRequest struct {
	ID        string    `json:"id"`
	Layer     string    `json:"layer"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	BBox      []float64 `json:"bbox,omitempty"`
}

func (f featureRequest) properties() domain.FeatureProperties {
	return domain.NewFeatureProperties(f.ID, f.Layer, f.StartDate, f.EndDate)
}

type stylesRequest struct {
	Session  string           `json:"session,omitempty"`
	Category string           `json:"category,omitempty"`
	Value    string           `json:"value,omitempty"`
	Scale    string           `json:"scale,omitempty"`
	Tint     bool             `json:"tint,omitempty"`
	Today    string           `json:"today,omitempty"`
	Features []featureRequest `json:"features"`
}

type featureStyle struct {
	ID    string       `json:"id"`
	Style domain.Style `json:"style"`
}

type stylesResponse struct {
	Generation uint64         `json:"generation"`
	Styles     []featureStyle `json:"styles"`
}

func (a *api) handleStyle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	today, err := a.today(q.Get("today"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	props := domain.NewFeatureProperties(q.Get("id"), q.Get("layer"), q.Get("start_date"), q.Get("end_date"))
	snap := a.deps.Store.Current()

	var style domain.Style
	if id := q.Get("session"); id != "" {
		sess, ok := a.deps.Sessions.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", id))
			return
		}
		style = sess.Resolve(snap, props, today)
	} else {
		f, err := parseFilter(q.Get("category"), q.Get("value"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts, err := parseOptions(q.Get("scale"), q.Get("tint"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		style = domain.Resolve(props, f, snap.Index, snap.Maxima, today, opts)
	}
	a.countStyle(style)
	writeJSON(w, http.StatusOK, style)
}

// handleStyles resolves every feature of one tile against a single snapshot. With a
// session, feature bounding boxes are recorded as label positions.
func (a *api) handleStyles(w http.ResponseWriter, r *http.Request) {
	var req stylesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Features) > maxBatchFeature {
		writeError(w, http.StatusBadRequest, fmt.Errorf("too many features: %d > %d", len(req.Features), maxBatchFeature))
		return
	}
	today, err := a.today(req.Today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var resolve func(domain.FeatureProperties) domain.Style
	var sess *session.Session
	snap := a.deps.Store.Current()

	if req.Session != "" {
		var ok bool
		sess, ok = a.deps.Sessions.Get(req.Session)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", req.Session))
			return
		}
		resolve = func(p domain.FeatureProperties) domain.Style { return sess.Resolve(snap, p, today) }
	} else {
		f, err := parseFilter(req.Category, req.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts := domain.ResolveOptions{Scale: domain.ScaleByName(req.Scale), CountryTint: req.Tint}
		resolve = func(p domain.FeatureProperties) domain.Style {
			return domain.Resolve(p, f, snap.Index, snap.Maxima, today, opts)
		}
	}

	resp := stylesResponse{Generation: snap.Generation, Styles: make([]featureStyle, 0, len(req.Features))}
	for _, feat := range req.Features {
		props := feat.properties()
		style := resolve(props)
		a.countStyle(style)
		if sess != nil {
			if b, ok := parseBBox(feat.BBox); ok {
				sess.RecordExtent(snap, props, b)
			}
		}
		resp.Styles = append(resp.Styles, featureStyle{ID: feat.ID, Style: style})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) handleSuperRegions(w http.ResponseWriter, _ *http.Request) {
	snap := a.deps.Store.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"generation":    snap.Generation,
		"loaded_at":     formatLoadedAt(snap.LoadedAt),
		"super_regions": snap.SuperRegions,
	})
}

func (a *api) handleOverlay(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = domain.DefaultFilter.Category
	}
	if err := (domain.Filter{Category: category, Value: domain.AllValue}).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fc := domain.OverlayGeoJSON(a.deps.Store.Current().SuperRegions, category)
	data, err := fc.MarshalJSON()
	if err != nil {
		a.logger.Error("marshal overlay", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("marshal overlay"))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client gone
}

func (a *api) handleMaxima(w http.ResponseWriter, _ *http.Request) {
	snap := a.deps.Store.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"generation": snap.Generation,
		"maxima":     snap.Maxima,
	})
}

func (a *api) handleLegend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ceiling := domain.DefaultLegendCeiling
	if raw := q.Get("ceiling"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid ceiling %q", raw))
			return
		}
		ceiling = n
	}
	scale := domain.ScaleByName(q.Get("scale"))
	writeJSON(w, http.StatusOK, map[string]any{
		"scale":   scale.Name,
		"ceiling": ceiling,
		"entries": domain.Legend(scale, domain.DefaultLegendSteps, ceiling),
	})
}

func (a *api) handleFilters(w http.ResponseWriter, r *http.Request) {
	if c := r.URL.Query().Get("category"); c != "" {
		category := domain.Category(c)
		if err := (domain.Filter{Category: category, Value: domain.AllValue}).Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[domain.Category][]string{category: domain.FilterOptions(category)})
		return
	}
	writeJSON(w, http.StatusOK, map[domain.Category][]string{
		domain.CategoryDanger:  domain.FilterOptions(domain.CategoryDanger),
		domain.CategoryProblem: domain.FilterOptions(domain.CategoryProblem),
	})
}

type sessionRequest struct {
	Category string `json:"category,omitempty"`
	Value    string `json:"value,omitempty"`
	Scale    string `json:"scale,omitempty"`
	Tint     bool   `json:"tint,omitempty"`
}

type sessionResponse struct {
	ID     string        `json:"id"`
	Filter domain.Filter `json:"filter"`
}

func (a *api) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	f, err := parseFilter(req.Category, req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := f.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess := a.deps.Sessions.Create(f, domain.ResolveOptions{Scale: domain.ScaleByName(req.Scale), CountryTint: req.Tint})
	a.logger.Debug("session created", "session", sess.ID(), "category", f.Category, "value", f.Value)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID(), Filter: f})
}

// handleSetSessionFilter applies a filter control change. Switching category
// without a value resets the value to AllValue.
func (a *api) handleSetSessionFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.deps.Sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", r.PathValue("id")))
		return
	}
	var req domain.Filter
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	f := sess.Filter()
	if req.Category != "" {
		f = f.WithCategory(req.Category)
	}
	if req.Value != "" {
		f.Value = req.Value
	}
	if err := f.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.SetFilter(f)
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID(), Filter: f})
}

type centersRequest struct {
	Today    string           `json:"today,omitempty"`
	Features []featureRequest `json:"features"`
}

// handleSessionCenters records feature extents and returns the markers of every
// recorded feature with a filled style.
func (a *api) handleSessionCenters(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.deps.Sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", r.PathValue("id")))
		return
	}
	var req centersRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	today, err := a.today(req.Today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap := a.deps.Store.Current()
	for _, feat := range req.Features {
		b, ok := parseBBox(feat.BBox)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("feature %q: bbox needs 4 numbers", feat.ID))
			return
		}
		sess.RecordExtent(snap, feat.properties(), b)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"generation": snap.Generation,
		"markers":    sess.Markers(snap, today),
	})
}

func (a *api) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !a.deps.Sessions.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", r.PathValue("id")))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) countStyle(s domain.Style) {
	a.deps.Metrics.StyleResolutions.WithLabelValues(string(s.Kind)).Inc()
}

// today returns raw when it is a valid date, else the current date.
func (a *api) today(raw string) (string, error) {
	if raw == "" {
		return domain.Today(a.deps.Clock), nil
	}
	if _, err := time.Parse(time.DateOnly, raw); err != nil {
		return "", fmt.Errorf("invalid today %q: want YYYY-MM-DD", raw)
	}
	return raw, nil
}

// parseFilter builds a filter, defaulting to DefaultFilter. Only the category is
// checked: an unknown value resolves to suppressed styles rather than an error.
func parseFilter(category, value string) (domain.Filter, error) {
	f := domain.DefaultFilter
	if category != "" {
		f = f.WithCategory(domain.Category(category))
	}
	if value != "" {
		f.Value = value
	}
	if err := f.Validate(); errors.Is(err, domain.ErrUnknownCategory) {
		return domain.Filter{}, err
	}
	return f, nil
}

func parseOptions(scale, tint string) (domain.ResolveOptions, error) {
	opts := domain.ResolveOptions{Scale: domain.ScaleByName(scale)}
	if tint != "" {
		v, err := strconv.ParseBool(tint)
		if err != nil {
			return opts, fmt.Errorf("invalid tint %q", tint)
		}
		opts.CountryTint = v
	}
	return opts, nil
}

// parseBBox reads [minLon, minLat, maxLon, maxLat].
func parseBBox(v []float64) (orb.Bound, bool) {
	if len(v) != 4 {
		return orb.Bound{}, false
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, true
}

func formatLoadedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client gone
}
