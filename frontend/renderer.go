package frontend

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"weatherforecast/datasource"
	"weatherforecast/logger"
	"weatherforecast/middleware"
	"weatherforecast/models"
)

// Rendered is the outcome of one fetch-and-render cycle
type Rendered struct {
	Status  int
	Body    []byte
	Entries []models.ForecastEntry
	Err     error // the fetch error, if the page shows the unavailable state
}

// Renderer fetches a forecast and renders it as an HTML page
type Renderer struct {
	source       datasource.ForecastSource
	verbose      bool
	service      string
	fetchTimeout time.Duration
	log          *logger.Logger
}

// DefaultFetchTimeout bounds a page's whole fetch, including any rate-limit wait
const DefaultFetchTimeout = 10 * time.Second

// NewRenderer creates a renderer. In verbose mode error pages carry the
// underlying error and the footer names the upstream service.
func NewRenderer(source datasource.ForecastSource, service string, verbose bool, log *logger.Logger) *Renderer {
	return &Renderer{
		source:       source,
		verbose:      verbose,
		service:      service,
		fetchTimeout: DefaultFetchTimeout,
		log:          log,
	}
}

// SetFetchTimeout changes the overall deadline for one page's fetch
func (r *Renderer) SetFetchTimeout(timeout time.Duration) {
	if timeout > 0 {
		r.fetchTimeout = timeout
	}
}

// FetchAndRender fetches the forecast and renders either the table or the
// "forecast unavailable" state. It never returns a partial page.
func (r *Renderer) FetchAndRender(ctx context.Context) Rendered {
	data := pageData{RequestID: middleware.RequestIDFromContext(ctx)}
	if r.verbose {
		data.Service = r.service
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	entries, err := r.source.FetchForecast(fetchCtx, 0)
	cancel()

	status := http.StatusOK
	if err != nil {
		kind, ok := datasource.KindOf(err)
		label := "Unknown"
		if ok {
			label = kind.String()
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			r.log.Debugf("Forecast fetch abandoned by caller (id=%s): %v", data.RequestID, err)
		} else {
			r.log.Errorf("Forecast fetch failed (kind=%s, id=%s): %v", label, data.RequestID, err)
		}

		status = http.StatusBadGateway
		if kind == datasource.KindTimeout {
			status = http.StatusGatewayTimeout
		}
		data.Unavailable = true
		data.Kind = label
		if r.verbose {
			data.Detail = err.Error()
		}
		entries = nil
	} else {
		data.Entries = make([]entryView, 0, len(entries))
		for _, e := range entries {
			data.Entries = append(data.Entries, entryView{
				Date:         e.Date.Format(models.DateLayout),
				TemperatureC: e.TemperatureC,
				TemperatureF: e.TemperatureF(),
				Summary:      e.Summary,
			})
		}
	}

	var buf bytes.Buffer
	if tmplErr := pageTemplate.Execute(&buf, data); tmplErr != nil {
		r.log.Errorf("Render failed: %v", tmplErr)
		return Rendered{
			Status: http.StatusInternalServerError,
			Body:   []byte("Forecast unavailable.\n"),
			Err:    tmplErr,
		}
	}

	return Rendered{
		Status:  status,
		Body:    buf.Bytes(),
		Entries: entries,
		Err:     err,
	}
}
