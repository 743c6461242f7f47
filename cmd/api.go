package main

import (
	"encoding/json"
	"net"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/solar-scout/internal/config"
	"github.com/sells-group/solar-scout/internal/model"
	"github.com/sells-group/solar-scout/internal/solar"
)

var airportCodePattern = regexp.MustCompile(`^[A-Za-z]{3,4}$`)

const maxCompareAirports = 8

// queryParams are the validated knobs shared by the building endpoints.
type queryParams struct {
	RadiusKM  float64
	MinSizeM2 float64
	Solar     solar.Params
}

// paramsEcho mirrors the effective query parameters back in responses so
// clients can see which defaults applied.
type paramsEcho struct {
	RadiusKM   float64 `json:"radius_km"`
	MinSizeM2  float64 `json:"min_size_m2"`
	UsablePct  float64 `json:"usable_pct"`
	PanelEff   float64 `json:"panel_eff"`
	ElecPrice  float64 `json:"elec_price"`
	IncludeITC bool    `json:"include_itc"`
}

func (p queryParams) echo() paramsEcho {
	return paramsEcho{
		RadiusKM:   p.RadiusKM,
		MinSizeM2:  p.MinSizeM2,
		UsablePct:  p.Solar.UsableFraction,
		PanelEff:   p.Solar.PanelDensityWM2,
		ElecPrice:  p.Solar.ElectricityPrice,
		IncludeITC: p.Solar.IncludeITC,
	}
}

type buildingWithSolar struct {
	model.BuildingRecord
	Solar solar.Estimate `json:"solar"`
}

type buildingsResponse struct {
	Airport    model.Airport       `json:"airport"`
	Parameters paramsEcho          `json:"parameters"`
	Count      int                 `json:"count"`
	Buildings  []buildingWithSolar `json:"buildings"`
	Totals     *solar.Totals       `json:"totals"`
	Error      string              `json:"error,omitempty"`
}

type airportSummary struct {
	Airport model.Airport `json:"airport"`
	Totals  *solar.Totals `json:"totals,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type grandTotals struct {
	AirportCount    int     `json:"airport_count"`
	BuildingCount   int     `json:"building_count"`
	TotalRoofAreaM2 float64 `json:"total_roof_area_m2"`
	CapacityMW      float64 `json:"capacity_mw"`
	AnnualMWh       float64 `json:"annual_mwh"`
	CO2AvoidedTons  float64 `json:"co2_avoided_tons"`
	NPV25Yr         float64 `json:"npv_25yr"`
	HomesPowered    int     `json:"homes_powered"`
}

// buildRouter assembles the HTTP API. Factored out of the serve command so
// tests can exercise the full middleware and handler stack in-process.
func buildRouter(e *env, c *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(requestLogMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: c.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if c.Server.RateLimitEnabled {
		r.Use(rateLimitMiddleware(c.Server.RateLimitRPS, c.Server.RateLimitBurst))
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"cache":  e.loader.CacheStats(),
		})
	})

	r.Get("/api/airports", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"airports": e.airports.All(),
			"count":    e.airports.Len(),
		})
	})

	r.Get("/api/capacity-factors", func(w http.ResponseWriter, req *http.Request) {
		// Static reference data; let clients hold it for a day.
		w.Header().Set("Cache-Control", "public, max-age=86400")
		writeJSON(w, http.StatusOK, map[string]any{
			"default":          solar.DefaultCapacityFactor,
			"capacity_factors": solar.CapacityFactors(),
		})
	})

	r.Get("/api/buildings/{code}", e.handleBuildings)
	r.Get("/api/compare", e.handleCompare)
	r.Get("/api/aggregate", e.handleAggregate)

	return r
}

func (e *env) handleBuildings(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !airportCodePattern.MatchString(code) {
		writeError(w, http.StatusBadRequest, "invalid airport code")
		return
	}

	airport, ok := e.airports.Get(code)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown airport code")
		return
	}

	params, err := parseQueryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	buildings, err := e.loader.GetBuildingsNear(r.Context(), airport, params.RadiusKM, params.MinSizeM2)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := buildingsResponse{
		Airport:    airport,
		Parameters: params.echo(),
		Count:      len(buildings),
		Buildings:  make([]buildingWithSolar, 0, len(buildings)),
	}

	if len(buildings) == 0 {
		resp.Error = "No buildings found"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	for _, b := range buildings {
		resp.Buildings = append(resp.Buildings, buildingWithSolar{
			BuildingRecord: b,
			Solar:          solar.Compute(b.AreaM2, airport.State, params.Solar),
		})
	}
	totals := solar.TotalsFor(buildings, airport.State, params.Solar)
	resp.Totals = &totals

	writeJSON(w, http.StatusOK, resp)
}

func (e *env) handleCompare(w http.ResponseWriter, r *http.Request) {
	codes, params, ok := e.parseMultiAirport(w, r)
	if !ok {
		return
	}

	summaries := e.summarize(r, codes, params)
	writeJSON(w, http.StatusOK, map[string]any{
		"parameters": params.echo(),
		"airports":   summaries,
	})
}

func (e *env) handleAggregate(w http.ResponseWriter, r *http.Request) {
	codes, params, ok := e.parseMultiAirport(w, r)
	if !ok {
		return
	}

	summaries := e.summarize(r, codes, params)

	sort.SliceStable(summaries, func(i, j int) bool {
		var a, b float64
		if summaries[i].Totals != nil {
			a = summaries[i].Totals.AnnualMWh
		}
		if summaries[j].Totals != nil {
			b = summaries[j].Totals.AnnualMWh
		}
		return a > b
	})

	var gt grandTotals
	for _, s := range summaries {
		if s.Totals == nil {
			continue
		}
		gt.AirportCount++
		gt.BuildingCount += s.Totals.BuildingCount
		gt.TotalRoofAreaM2 += s.Totals.TotalRoofAreaM2
		gt.CapacityMW += s.Totals.CapacityMW
		gt.AnnualMWh += s.Totals.AnnualMWh
		gt.CO2AvoidedTons += s.Totals.CO2AvoidedTons
		gt.NPV25Yr += s.Totals.NPV25Yr
	}
	gt.HomesPowered = int(gt.AnnualMWh * 1000 / solar.AvgHomeKWhYear)

	writeJSON(w, http.StatusOK, map[string]any{
		"parameters":   params.echo(),
		"airports":     summaries,
		"grand_totals": gt,
	})
}

// parseMultiAirport validates the codes list and shared query knobs for the
// compare and aggregate endpoints. On failure the response is already
// written.
func (e *env) parseMultiAirport(w http.ResponseWriter, r *http.Request) ([]string, queryParams, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("codes"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "codes parameter is required")
		return nil, queryParams{}, false
	}

	seen := make(map[string]bool)
	var codes []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		if !airportCodePattern.MatchString(c) {
			writeError(w, http.StatusBadRequest, "invalid airport code: "+c)
			return nil, queryParams{}, false
		}
		seen[c] = true
		codes = append(codes, c)
	}
	if len(codes) == 0 {
		writeError(w, http.StatusBadRequest, "codes parameter is required")
		return nil, queryParams{}, false
	}
	if len(codes) > maxCompareAirports {
		writeError(w, http.StatusBadRequest, "too many airports: maximum is 8")
		return nil, queryParams{}, false
	}
	for _, c := range codes {
		if _, ok := e.airports.Get(c); !ok {
			writeError(w, http.StatusNotFound, "unknown airport code: "+c)
			return nil, queryParams{}, false
		}
	}

	params, err := parseQueryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, queryParams{}, false
	}
	return codes, params, true
}

// summarize fans out one lookup per airport. Per-airport failures are
// reported inline rather than failing the whole request.
func (e *env) summarize(r *http.Request, codes []string, params queryParams) []airportSummary {
	summaries := make([]airportSummary, len(codes))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(4)
	var mu sync.Mutex

	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			airport, _ := e.airports.Get(code)
			buildings, err := e.loader.GetBuildingsNear(ctx, airport, params.RadiusKM, params.MinSizeM2)

			s := airportSummary{Airport: airport}
			switch {
			case err != nil:
				s.Error = err.Error()
			case len(buildings) == 0:
				s.Error = "No buildings found"
			default:
				totals := solar.TotalsFor(buildings, airport.State, params.Solar)
				s.Totals = &totals
			}

			mu.Lock()
			summaries[i] = s
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return summaries
}

// parseQueryParams validates the shared query-string knobs, rejecting
// out-of-range values rather than clamping them.
func parseQueryParams(r *http.Request) (queryParams, error) {
	q := r.URL.Query()
	p := queryParams{RadiusKM: 5, MinSizeM2: 500, Solar: solar.DefaultParams()}

	var err error
	if p.RadiusKM, err = floatParam(q.Get("radius"), "radius", 5, 1, 20); err != nil {
		return p, err
	}
	if p.MinSizeM2, err = floatParam(q.Get("min_size"), "min_size", 500, 100, 10000); err != nil {
		return p, err
	}
	if p.Solar.UsableFraction, err = floatParam(q.Get("usable_pct"), "usable_pct", p.Solar.UsableFraction, 0.3, 0.8); err != nil {
		return p, err
	}
	if p.Solar.PanelDensityWM2, err = floatParam(q.Get("panel_eff"), "panel_eff", p.Solar.PanelDensityWM2, 150, 250); err != nil {
		return p, err
	}
	if p.Solar.ElectricityPrice, err = floatParam(q.Get("elec_price"), "elec_price", p.Solar.ElectricityPrice, 0.05, 0.25); err != nil {
		return p, err
	}

	if raw := q.Get("include_itc"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return p, errInvalidParam("include_itc")
		}
		p.Solar.IncludeITC = v
	}

	return p, nil
}

type paramError string

func (e paramError) Error() string { return string(e) }

func errInvalidParam(name string) error {
	return paramError("invalid value for " + name)
}

func floatParam(raw, name string, def, min, max float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errInvalidParam(name)
	}
	if v < min || v > max {
		return 0, paramError(name + " out of range")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", ww.Header().Get("X-Request-ID")),
		)
	})
}

// rateLimitMiddleware keeps one token bucket per client IP. RealIP runs
// earlier in the chain, so RemoteAddr already reflects X-Forwarded-For when
// the service sits behind a proxy. Buckets idle for ten minutes are dropped
// whenever a new client shows up, keeping the map bounded.
func rateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var mu sync.Mutex
	clients := make(map[string]*client)

	allow := func(ip string) bool {
		mu.Lock()
		defer mu.Unlock()
		c, ok := clients[ip]
		if !ok {
			for k, v := range clients {
				if time.Since(v.lastSeen) > 10*time.Minute {
					delete(clients, k)
				}
			}
			c = &client{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		return c.limiter.Allow()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !allow(ip) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
